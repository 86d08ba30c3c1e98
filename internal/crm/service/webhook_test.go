package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/cache"
	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/cryptox"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/stretchr/testify/require"
)

const inboundPayload = `{
	"event": "messages.upsert",
	"instance": "principal",
	"date_time": "2025-03-10T12:00:00.000Z",
	"data": {
		"key": {"remoteJid": "5511987654321@s.whatsapp.net", "fromMe": false, "id": "ABC123"},
		"pushName": "Maria",
		"message": {"conversation": "Oi, tudo bem?"},
		"messageType": "conversation",
		"messageTimestamp": 1741608000
	}
}`

type webhookFixture struct {
	*fixture
	inst     domain.Instance
	webhooks *service.WebhookService
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	f := newFixture(t)

	inst := domain.Instance{ID: idx.New().String(), Name: "principal", DisplayName: "Principal", Status: domain.InstanceConnecting}
	require.NoError(t, f.store.Instances().CreateInstance(context.Background(), inst))

	seen := cache.NewMemory[bool]()
	seen.Now = f.clock.Now

	return &webhookFixture{
		fixture: f,
		inst:    inst,
		webhooks: &service.WebhookService{
			Store:     f.store,
			Instances: &service.InstanceService{Store: f.store, Gateway: &fakeGateway{}, Cache: cache.NewMemory[domain.Instance]()},
			Match:     &service.MatchService{Store: f.store},
			Seen:      seen,
			Now:       f.clock.Now,
		},
	}
}

func (w *webhookFixture) messages(t *testing.T) []domain.Message {
	t.Helper()
	contacts, err := w.store.Contacts().ListContacts(context.Background(), w.inst.ID)
	require.NoError(t, err)

	var out []domain.Message
	for _, c := range contacts {
		msgs, err := w.store.Messages().ListMessages(context.Background(), domain.MessagePage{ContactID: c.ID, Limit: 100})
		require.NoError(t, err)
		out = append(out, msgs...)
	}
	return out
}

func TestWebhookInboundMessage(t *testing.T) {
	w := newWebhookFixture(t)
	ctx := context.Background()

	client, err := (&service.ClientService{Store: w.store}).Create(ctx, service.ClientInput{Name: "Maria Souza", Phone: "11 98765-4321"})
	require.NoError(t, err)

	require.Equal(t, service.WebhookProcessed, w.webhooks.Handle(ctx, []byte(inboundPayload)))

	contacts, err := w.store.Contacts().ListContacts(ctx, w.inst.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.Equal(t, "Maria", contacts[0].Name)
	require.Equal(t, "5511987654321", contacts[0].Phone)
	require.NotNil(t, contacts[0].ClientID)
	require.Equal(t, client.ID, *contacts[0].ClientID)

	msgs := w.messages(t)
	require.Len(t, msgs, 1)
	require.Equal(t, "Oi, tudo bem?", msgs[0].Body)
	require.Equal(t, domain.DirectionInbound, msgs[0].Direction)
	require.Equal(t, domain.MessageReceived, msgs[0].Status)
	require.True(t, msgs[0].Timestamp.Equal(time.Unix(1741608000, 0)))
}

func TestWebhookDeduplicatesWithinWindow(t *testing.T) {
	w := newWebhookFixture(t)
	ctx := context.Background()

	require.Equal(t, service.WebhookProcessed, w.webhooks.Handle(ctx, []byte(inboundPayload)))

	w.clock.Advance(4 * time.Minute)
	require.Equal(t, service.WebhookDuplicate, w.webhooks.Handle(ctx, []byte(inboundPayload)))

	// Past the window the event is processed again; the message itself is
	// still stored once thanks to its gateway id.
	w.clock.Advance(time.Minute + time.Second)
	require.Equal(t, service.WebhookProcessed, w.webhooks.Handle(ctx, []byte(inboundPayload)))
	require.Len(t, w.messages(t), 1)
}

func TestWebhookStatusAndConnectionEvents(t *testing.T) {
	w := newWebhookFixture(t)
	ctx := context.Background()

	outbound := `{"event":"MESSAGES_UPSERT","instance":"principal","date_time":"t1","data":[
		{"key":{"remoteJid":"5511987654321@s.whatsapp.net","fromMe":true,"id":"OUT1"},"pushName":"Loja","message":{"extendedTextMessage":{"text":"Pedido enviado"}},"messageTimestamp":"1741608100"},
		{"key":{"remoteJid":"120363000000@g.us","fromMe":false,"id":"GRP1"},"message":{"conversation":"grupo"}}
	]}`
	require.Equal(t, service.WebhookProcessed, w.webhooks.Handle(ctx, []byte(outbound)))

	msgs := w.messages(t)
	require.Len(t, msgs, 1)
	require.Equal(t, domain.DirectionOutbound, msgs[0].Direction)
	require.Equal(t, "Pedido enviado", msgs[0].Body)

	contacts, err := w.store.Contacts().ListContacts(ctx, w.inst.ID)
	require.NoError(t, err)
	require.Empty(t, contacts[0].Name)

	update := `{"event":"messages.update","instance":"principal","date_time":"t2","data":{"keyId":"OUT1","remoteJid":"5511987654321@s.whatsapp.net","fromMe":true,"status":"DELIVERY_ACK"}}`
	require.Equal(t, service.WebhookProcessed, w.webhooks.Handle(ctx, []byte(update)))
	require.Equal(t, domain.MessageDelivered, w.messages(t)[0].Status)

	read := `{"event":"messages.update","instance":"principal","date_time":"t3","data":{"key":{"id":"OUT1"},"update":{"status":4}}}`
	require.Equal(t, service.WebhookProcessed, w.webhooks.Handle(ctx, []byte(read)))
	require.Equal(t, domain.MessageRead, w.messages(t)[0].Status)

	qr := `{"event":"qrcode.updated","instance":"principal","date_time":"t4","data":{"qrcode":{"base64":"data:image/png;base64,NEW"}}}`
	require.Equal(t, service.WebhookProcessed, w.webhooks.Handle(ctx, []byte(qr)))
	inst, err := w.store.Instances().GetInstanceByID(ctx, w.inst.ID)
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,NEW", inst.QRCode)

	open := `{"event":"connection.update","instance":"principal","date_time":"t5","data":{"state":"open","wuid":"5511900001111@s.whatsapp.net"}}`
	require.Equal(t, service.WebhookProcessed, w.webhooks.Handle(ctx, []byte(open)))
	inst, err = w.store.Instances().GetInstanceByID(ctx, w.inst.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InstanceConnected, inst.Status)
	require.Equal(t, "5511900001111", inst.Phone)
	require.Empty(t, inst.QRCode)

	contactsEvt := `{"event":"contacts.upsert","instance":"principal","date_time":"t6","data":[{"remoteJid":"5511987654321@s.whatsapp.net","pushName":"Cliente VIP","profilePicUrl":"https://pps.whatsapp.net/x.jpg"}]}`
	require.Equal(t, service.WebhookProcessed, w.webhooks.Handle(ctx, []byte(contactsEvt)))
	contacts, err = w.store.Contacts().ListContacts(ctx, w.inst.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.Equal(t, "Cliente VIP", contacts[0].Name)
	require.Equal(t, "https://pps.whatsapp.net/x.jpg", contacts[0].AvatarURL)
}

func TestWebhookOddDeliveries(t *testing.T) {
	w := newWebhookFixture(t)
	ctx := context.Background()

	require.Equal(t, service.WebhookLogged, w.webhooks.Handle(ctx, []byte(`{not json`)))
	require.Equal(t, service.WebhookIgnored, w.webhooks.Handle(ctx, []byte(`{"event":"presence.update","instance":"principal"}`)))
	require.Equal(t, service.WebhookProcessed, w.webhooks.Handle(ctx, []byte(`{"event":"messages.upsert","instance":"unknown","date_time":"x","data":{}}`)))
}

func TestWebhookFailureIsDeadLettered(t *testing.T) {
	w := newWebhookFixture(t)
	ctx := context.Background()

	bad := `{"event":"messages.upsert","instance":"principal","date_time":"t9","data":{"key":{"remoteJid":"5511987654321@s.whatsapp.net","id":"X"},"messageTimestamp":"yesterday"}}`
	require.Equal(t, service.WebhookLogged, w.webhooks.Handle(ctx, []byte(bad)))

	due, err := w.store.DeadLetters().ListDueDeadLetters(ctx, w.clock.Now().Add(time.Minute), domain.DeadLetterMaxAttempts, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, service.EventMessagesUpsert, due[0].Event)
	require.JSONEq(t, bad, string(due[0].Payload))
	require.Contains(t, due[0].Error, "yesterday")
}

func TestWebhookSignature(t *testing.T) {
	body := []byte(inboundPayload)

	open := &service.WebhookService{}
	require.NoError(t, open.VerifySignature(body, ""))

	locked := &service.WebhookService{Secret: "k3y"}
	sig := cryptox.SignatureSHA256([]byte("k3y"), body)
	require.NoError(t, locked.VerifySignature(body, sig))
	require.NoError(t, locked.VerifySignature(body, "sha256="+sig))
	require.ErrorIs(t, locked.VerifySignature(body, ""), service.ErrInvalidSignature)
	require.ErrorIs(t, locked.VerifySignature(append(body, ' '), sig), service.ErrInvalidSignature)
}

func TestNormalizeEvent(t *testing.T) {
	require.Equal(t, "MESSAGES_UPSERT", service.NormalizeEvent("messages.upsert"))
	require.Equal(t, "MESSAGES_UPSERT", service.NormalizeEvent(" MESSAGES_UPSERT "))
	require.Equal(t, "CONNECTION_UPDATE", service.NormalizeEvent("connection.update"))
}
