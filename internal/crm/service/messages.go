package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

var (
	ErrEmptyMessage    = errors.New("message text is required")
	ErrContactNotFound = errors.New("contact not found")
)

const (
	DefaultMessagePage = 50
	MaxMessagePage     = 100
)

// RateLimitError tells the caller when the next send is allowed.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("send rate exceeded, retry in %s", e.RetryAfter)
}

type MessageService struct {
	Store   store.Store
	Gateway Gateway
	Limiter *SendLimiter
	Now     func() time.Time
}

// MessagePage is one chronological page. NextBefore and NextBeforeID are the
// cursor for the previous (older) page; NextBefore is nil when there is none.
type MessagePage struct {
	Messages     []domain.Message
	NextBefore   *time.Time
	NextBeforeID string
}

// List returns up to limit messages of a contact older than the cursor.
// Messages sharing the cursor's timestamp are split by id.
func (s *MessageService) List(ctx context.Context, contactID string, limit int, before time.Time, beforeID string) (MessagePage, error) {
	if _, err := s.contact(ctx, contactID); err != nil {
		return MessagePage{}, err
	}

	limit = clampLimit(limit, DefaultMessagePage, MaxMessagePage)
	msgs, err := s.Store.Messages().ListMessages(ctx, domain.MessagePage{
		ContactID: contactID,
		Before:    before,
		BeforeID:  beforeID,
		Limit:     limit,
	})
	if err != nil {
		return MessagePage{}, err
	}

	page := MessagePage{Messages: msgs}
	if len(msgs) == limit {
		oldest := msgs[len(msgs)-1]
		page.NextBefore = &oldest.Timestamp
		page.NextBeforeID = oldest.ID
	}
	slices.Reverse(page.Messages)
	if page.Messages == nil {
		page.Messages = []domain.Message{}
	}
	return page, nil
}

// Contacts lists the contacts of an instance, or of every instance when
// instanceID is empty.
func (s *MessageService) Contacts(ctx context.Context, instanceID string) ([]domain.Contact, error) {
	return s.Store.Contacts().ListContacts(ctx, instanceID)
}

func (s *MessageService) contact(ctx context.Context, id string) (domain.Contact, error) {
	c, err := s.Store.Contacts().GetContactByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Contact{}, ErrContactNotFound
	}
	return c, err
}

// Send delivers a text message to a contact through its instance. The
// message is stored before the gateway call so failures stay visible.
func (s *MessageService) Send(ctx context.Context, senderID, contactID, text string) (domain.Message, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, ErrEmptyMessage
	}
	contact, err := s.contact(ctx, contactID)
	if err != nil {
		return domain.Message{}, err
	}
	inst, err := s.Store.Instances().GetInstanceByID(ctx, contact.InstanceID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Message{}, ErrInstanceNotFound
	}
	if err != nil {
		return domain.Message{}, err
	}

	// 2. One message per second per instance
	if s.Limiter != nil {
		if wait := s.Limiter.Reserve(inst.ID); wait > 0 {
			log.Info("send rate limited", slog.String("instance_id", inst.ID), slog.Duration("retry_after", wait))
			return domain.Message{}, &RateLimitError{RetryAfter: wait}
		}
	}

	// 3. Persist as pending
	msg := domain.Message{
		ID:         idx.New().String(),
		InstanceID: inst.ID,
		ContactID:  contact.ID,
		Direction:  domain.DirectionOutbound,
		Body:       text,
		Type:       "text",
		Status:     domain.MessagePending,
		Timestamp:  nowOr(s.Now),
	}
	if senderID != "" {
		msg.SentBy = &senderID
	}
	if err := s.Store.Messages().CreateMessage(ctx, msg); err != nil {
		log.Error("failed to store outbound message", slog.Any("error", err))
		return domain.Message{}, err
	}

	// 4. Hand off to the gateway
	resp, err := s.Gateway.SendText(ctx, inst.Name, contact.Phone, text)
	if err != nil {
		log.Error("gateway send failed",
			slog.String("message_id", msg.ID),
			slog.String("instance", inst.Name),
			slog.Any("error", err),
		)
		msg.Status = domain.MessageFailed
		msg.Error = err.Error()
		if merr := s.Store.Messages().MarkMessageFailed(ctx, msg.ID, msg.Error); merr != nil {
			log.Error("failed to mark message failed", slog.String("message_id", msg.ID), slog.Any("error", merr))
		}
		return msg, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	// 5. Record the gateway id
	externalID := resp.Key.ID
	msg.Status = domain.MessageSent
	msg.ExternalID = &externalID
	if err := s.Store.Messages().MarkMessageSent(ctx, msg.ID, externalID); err != nil {
		// The webhook echo of this send can land first and claim the external id.
		log.Warn("failed to record sent message", slog.String("message_id", msg.ID), slog.Any("error", err))
	}

	log.Info("message sent", slog.String("message_id", msg.ID), slog.String("instance", inst.Name))
	return msg, nil
}
