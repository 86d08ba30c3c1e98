package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/cache"
	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/pkg/cryptox"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

const (
	DefaultWebhookDedupeTTL = 5 * time.Minute
	DefaultWebhookTimeout   = 5 * time.Second

	webhookSource = "evolution"
)

const (
	EventMessagesUpsert   = "MESSAGES_UPSERT"
	EventMessagesUpdate   = "MESSAGES_UPDATE"
	EventConnectionUpdate = "CONNECTION_UPDATE"
	EventQRCodeUpdated    = "QRCODE_UPDATED"
	EventContactsUpsert   = "CONTACTS_UPSERT"
)

// WebhookOutcome is what the endpoint reports back to the gateway.
type WebhookOutcome string

const (
	WebhookProcessed WebhookOutcome = "processed"
	WebhookDuplicate WebhookOutcome = "duplicate"
	WebhookIgnored   WebhookOutcome = "ignored"
	WebhookLogged    WebhookOutcome = "logged"
)

type WebhookService struct {
	Store     store.Store
	Instances *InstanceService
	Match     *MatchService
	Seen      cache.Cache[bool]

	// Secret enables HMAC verification when set.
	Secret string

	DedupeTTL time.Duration
	Timeout   time.Duration
	Now       func() time.Time
}

type webhookEnvelope struct {
	Event    string          `json:"event"`
	Instance string          `json:"instance"`
	Data     json.RawMessage `json:"data"`
	DateTime string          `json:"date_time"`
}

// NormalizeEvent turns "messages.upsert" and "MESSAGES_UPSERT" into the latter.
func NormalizeEvent(e string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(e)), ".", "_")
}

func knownEvent(e string) bool {
	switch e {
	case EventMessagesUpsert, EventMessagesUpdate, EventConnectionUpdate, EventQRCodeUpdated, EventContactsUpsert:
		return true
	}
	return false
}

// VerifySignature checks the hex HMAC-SHA256 of body. It always passes when
// no secret is configured.
func (s *WebhookService) VerifySignature(body []byte, signature string) error {
	if s.Secret == "" {
		return nil
	}
	if !cryptox.VerifySignatureSHA256([]byte(s.Secret), body, signature) {
		return ErrInvalidSignature
	}
	return nil
}

func eventID(env webhookEnvelope, body []byte) string {
	stamp := env.DateTime
	if stamp == "" {
		stamp = cryptox.Fingerprint(body)
	}
	return env.Instance + ":" + NormalizeEvent(env.Event) + ":" + stamp
}

// Handle ingests one webhook delivery. It never fails the delivery: bad
// payloads are logged and processing failures are dead-lettered.
func (s *WebhookService) Handle(ctx context.Context, body []byte) WebhookOutcome {
	log := slogx.FromContext(ctx)

	// 1. Parse
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Warn("malformed webhook payload", slog.Any("error", err))
		return WebhookLogged
	}
	event := NormalizeEvent(env.Event)
	log = log.With(slog.String("event", event), slog.String("instance", env.Instance))

	if !knownEvent(event) {
		log.Debug("ignoring webhook event")
		return WebhookIgnored
	}

	// 2. Skip redeliveries
	id := eventID(env, body)
	if s.Seen != nil {
		ttl := s.DedupeTTL
		if ttl <= 0 {
			ttl = DefaultWebhookDedupeTTL
		}
		fresh, err := s.Seen.Add(ctx, "webhook:"+id, true, ttl)
		if err != nil {
			log.Warn("webhook dedupe check failed, processing anyway", slog.Any("error", err))
		} else if !fresh {
			log.Debug("duplicate webhook event", slog.String("event_id", id))
			return WebhookDuplicate
		}
	}

	// 3. Process within a bounded time
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.process(pctx, event, env); err != nil {
		log.Error("webhook processing failed", slog.String("event_id", id), slog.Any("error", err))
		s.deadLetter(ctx, event, body, err)
		return WebhookLogged
	}
	return WebhookProcessed
}

// Replay reprocesses a dead-lettered delivery without the duplicate check.
func (s *WebhookService) Replay(ctx context.Context, d domain.DeadLetter) error {
	var env webhookEnvelope
	if err := json.Unmarshal(d.Payload, &env); err != nil {
		return err
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return s.process(ctx, NormalizeEvent(env.Event), env)
}

func (s *WebhookService) deadLetter(ctx context.Context, event string, body []byte, cause error) {
	now := nowOr(s.Now)
	d := domain.DeadLetter{
		ID:            idx.New().String(),
		Source:        webhookSource,
		Event:         event,
		Payload:       body,
		Error:         cause.Error(),
		NextAttemptAt: now.Add(DeadLetterBackoff(0)),
	}
	if err := s.Store.DeadLetters().CreateDeadLetter(context.WithoutCancel(ctx), d); err != nil {
		slogx.FromContext(ctx).Error("failed to write dead letter", slog.Any("error", err))
	}
}

func (s *WebhookService) process(ctx context.Context, event string, env webhookEnvelope) error {
	inst, err := s.Instances.ByName(ctx, env.Instance)
	if errors.Is(err, ErrInstanceNotFound) {
		slogx.FromContext(ctx).Warn("webhook for unknown instance", slog.String("instance", env.Instance))
		return nil
	}
	if err != nil {
		return err
	}

	switch event {
	case EventMessagesUpsert:
		return s.messagesUpsert(ctx, inst, env.Data)
	case EventMessagesUpdate:
		return s.messagesUpdate(ctx, inst, env.Data)
	case EventConnectionUpdate:
		return s.connectionUpdate(ctx, inst, env.Data)
	case EventQRCodeUpdated:
		return s.qrCodeUpdated(ctx, inst, env.Data)
	case EventContactsUpsert:
		return s.contactsUpsert(ctx, inst, env.Data)
	}
	return nil
}

// decodeOneOrMany accepts a single object or an array of them.
func decodeOneOrMany[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}

// phoneFromJID extracts the number of a direct chat JID. Groups and status
// broadcasts yield "".
func phoneFromJID(jid string) string {
	if jid == "" || strings.HasSuffix(jid, "@g.us") || strings.HasPrefix(jid, "status@") || strings.HasSuffix(jid, "@broadcast") {
		return ""
	}
	user, _, _ := strings.Cut(jid, "@")
	user, _, _ = strings.Cut(user, ":")
	return NormalizePhone(user)
}

// flexTime decodes unix seconds sent either as a number or a string.
type flexTime int64

func (t *flexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", s, err)
	}
	*t = flexTime(n)
	return nil
}

type upsertPayload struct {
	Key struct {
		RemoteJID string `json:"remoteJid"`
		FromMe    bool   `json:"fromMe"`
		ID        string `json:"id"`
	} `json:"key"`
	PushName string `json:"pushName"`
	Message  struct {
		Conversation        string `json:"conversation"`
		ExtendedTextMessage struct {
			Text string `json:"text"`
		} `json:"extendedTextMessage"`
		ImageMessage *struct {
			Caption string `json:"caption"`
		} `json:"imageMessage"`
	} `json:"message"`
	MessageType      string   `json:"messageType"`
	MessageTimestamp flexTime `json:"messageTimestamp"`
}

func (p upsertPayload) text() string {
	switch {
	case p.Message.Conversation != "":
		return p.Message.Conversation
	case p.Message.ExtendedTextMessage.Text != "":
		return p.Message.ExtendedTextMessage.Text
	case p.Message.ImageMessage != nil:
		return p.Message.ImageMessage.Caption
	}
	return ""
}

func (p upsertPayload) kind() string {
	switch p.MessageType {
	case "", "conversation", "extendedTextMessage":
		return "text"
	case "imageMessage":
		return "image"
	case "audioMessage":
		return "audio"
	case "videoMessage":
		return "video"
	case "documentMessage":
		return "document"
	}
	return p.MessageType
}

func (s *WebhookService) messagesUpsert(ctx context.Context, inst domain.Instance, raw json.RawMessage) error {
	log := slogx.FromContext(ctx)

	items, err := decodeOneOrMany[upsertPayload](raw)
	if err != nil {
		return fmt.Errorf("decode messages: %w", err)
	}

	for _, it := range items {
		phone := phoneFromJID(it.Key.RemoteJID)
		if phone == "" || it.Key.ID == "" {
			continue
		}

		// 1. Contact; our own messages carry our push name, not theirs
		c := domain.Contact{ID: idx.New().String(), InstanceID: inst.ID, Phone: phone}
		if !it.Key.FromMe {
			c.Name = it.PushName
		}
		contact, err := s.Store.Contacts().UpsertContact(ctx, c)
		if err != nil {
			return fmt.Errorf("upsert contact: %w", err)
		}

		// 2. Message, deduplicated by gateway id
		ts := time.Unix(int64(it.MessageTimestamp), 0).UTC()
		if it.MessageTimestamp == 0 {
			ts = nowOr(s.Now)
		}
		externalID := it.Key.ID
		m := domain.Message{
			ID:         idx.New().String(),
			InstanceID: inst.ID,
			ContactID:  contact.ID,
			ExternalID: &externalID,
			Direction:  domain.DirectionInbound,
			Body:       it.text(),
			Type:       it.kind(),
			Status:     domain.MessageReceived,
			Timestamp:  ts,
		}
		if it.Key.FromMe {
			m.Direction = domain.DirectionOutbound
			m.Status = domain.MessageSent
		}
		if err := s.Store.Messages().CreateMessage(ctx, m); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				log.Debug("message already stored", slog.String("external_id", externalID))
				continue
			}
			return fmt.Errorf("store message: %w", err)
		}

		// 3. Link to a CRM client
		if !it.Key.FromMe && s.Match != nil {
			if _, err := s.Match.MatchContact(ctx, contact); err != nil {
				log.Warn("contact match failed", slog.String("contact_id", contact.ID), slog.Any("error", err))
			}
		}
	}
	return nil
}

type updatePayload struct {
	KeyID     string `json:"keyId"`
	MessageID string `json:"messageId"`
	Key       struct {
		ID string `json:"id"`
	} `json:"key"`
	Status json.RawMessage `json:"status"`
	Update struct {
		Status json.RawMessage `json:"status"`
	} `json:"update"`
}

func (p updatePayload) id() string {
	switch {
	case p.KeyID != "":
		return p.KeyID
	case p.Key.ID != "":
		return p.Key.ID
	}
	return p.MessageID
}

// MapGatewayStatus converts gateway ack values, by name or by number, into a
// message status. Unknown values report false.
func MapGatewayStatus(raw json.RawMessage) (domain.MessageStatus, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	switch strings.ToUpper(s) {
	case "SERVER_ACK", "2":
		return domain.MessageSent, true
	case "DELIVERY_ACK", "3":
		return domain.MessageDelivered, true
	case "READ", "PLAYED", "4", "5":
		return domain.MessageRead, true
	case "ERROR", "0":
		return domain.MessageFailed, true
	}
	return "", false
}

func (s *WebhookService) messagesUpdate(ctx context.Context, inst domain.Instance, raw json.RawMessage) error {
	items, err := decodeOneOrMany[updatePayload](raw)
	if err != nil {
		return fmt.Errorf("decode message updates: %w", err)
	}

	for _, it := range items {
		statusRaw := it.Status
		if len(statusRaw) == 0 {
			statusRaw = it.Update.Status
		}
		status, ok := MapGatewayStatus(statusRaw)
		if !ok || it.id() == "" {
			continue
		}
		err := s.Store.Messages().UpdateStatusByExternalID(ctx, inst.ID, it.id(), status)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("update message status: %w", err)
		}
	}
	return nil
}

type connectionPayload struct {
	State string `json:"state"`
	WUID  string `json:"wuid"`
}

func (s *WebhookService) connectionUpdate(ctx context.Context, inst domain.Instance, raw json.RawMessage) error {
	var p connectionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("decode connection update: %w", err)
	}

	var status domain.InstanceStatus
	switch p.State {
	case "open":
		status = domain.InstanceConnected
	case "connecting":
		status = domain.InstanceConnecting
	case "close":
		status = domain.InstanceDisconnected
	default:
		return nil
	}

	if err := s.Instances.SetStatus(ctx, inst, status); err != nil {
		return err
	}
	if status == domain.InstanceConnected {
		if err := s.Instances.SetQRCode(ctx, inst, ""); err != nil {
			return err
		}
		if phone := phoneFromJID(p.WUID); phone != "" {
			return s.Instances.SetPhone(ctx, inst, phone)
		}
	}
	return nil
}

type qrPayload struct {
	QRCode struct {
		Base64 string `json:"base64"`
		Code   string `json:"code"`
	} `json:"qrcode"`
}

func (s *WebhookService) qrCodeUpdated(ctx context.Context, inst domain.Instance, raw json.RawMessage) error {
	var p qrPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("decode qrcode: %w", err)
	}
	qr := p.QRCode.Base64
	if qr == "" {
		qr = p.QRCode.Code
	}
	if qr == "" {
		return nil
	}
	if err := s.Instances.SetQRCode(ctx, inst, qr); err != nil {
		return err
	}
	return s.Instances.SetStatus(ctx, inst, domain.InstanceConnecting)
}

type contactPayload struct {
	ID            string `json:"id"`
	RemoteJID     string `json:"remoteJid"`
	PushName      string `json:"pushName"`
	Name          string `json:"name"`
	ProfilePicURL string `json:"profilePicUrl"`
}

func (s *WebhookService) contactsUpsert(ctx context.Context, inst domain.Instance, raw json.RawMessage) error {
	items, err := decodeOneOrMany[contactPayload](raw)
	if err != nil {
		return fmt.Errorf("decode contacts: %w", err)
	}

	for _, it := range items {
		jid := it.RemoteJID
		if jid == "" {
			jid = it.ID
		}
		phone := phoneFromJID(jid)
		if phone == "" {
			continue
		}
		name := it.PushName
		if name == "" {
			name = it.Name
		}
		if _, err := s.Store.Contacts().UpsertContact(ctx, domain.Contact{
			ID:         idx.New().String(),
			InstanceID: inst.ID,
			Phone:      phone,
			Name:       name,
			AvatarURL:  it.ProfilePicURL,
		}); err != nil {
			return fmt.Errorf("upsert contact: %w", err)
		}
	}
	return nil
}
