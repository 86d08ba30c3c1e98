package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestDeadLetterBackoff(t *testing.T) {
	require.Equal(t, 30*time.Second, service.DeadLetterBackoff(0))
	require.Equal(t, time.Minute, service.DeadLetterBackoff(1))
	require.Equal(t, 8*time.Minute, service.DeadLetterBackoff(4))
	require.Equal(t, time.Hour, service.DeadLetterBackoff(7))
	require.Equal(t, time.Hour, service.DeadLetterBackoff(40))
}

func TestHousekeepingPass(t *testing.T) {
	w := newWebhookFixture(t)
	ctx := context.Background()

	// A stale invite
	g := w.seedGroup(t, "Colaborador", access.Map{access.Dashboard: {View: true}})
	invites := newInviteService(w.fixture, &fakeMailer{})
	_, err := invites.Create(ctx, "", "late@avaliatec.com.br", g.ID)
	require.NoError(t, err)

	// One replayable and one poisoned dead letter
	good := domain.DeadLetter{
		ID:            idx.New().String(),
		Source:        "evolution",
		Event:         service.EventMessagesUpsert,
		Payload:       []byte(inboundPayload),
		Error:         "database is locked",
		NextAttemptAt: w.clock.Now(),
	}
	poisoned := domain.DeadLetter{
		ID:            idx.New().String(),
		Source:        "evolution",
		Event:         service.EventMessagesUpsert,
		Payload:       []byte(`{"event":"messages.upsert","instance":"principal","data":{"key":{"remoteJid":"5511@s.whatsapp.net","id":"Y"},"messageTimestamp":"nope"}}`),
		NextAttemptAt: w.clock.Now(),
	}
	require.NoError(t, w.store.DeadLetters().CreateDeadLetter(ctx, good))
	require.NoError(t, w.store.DeadLetters().CreateDeadLetter(ctx, poisoned))

	hk := service.NewHousekeepingService(w.store, w.webhooks, w.webhooks.Match, slogx.Discard(), time.Minute)
	hk.Now = w.clock.Now

	w.clock.Advance(7*24*time.Hour + time.Minute)
	rep := hk.RunOnce(ctx)
	require.Equal(t, int64(1), rep.ExpiredInvites)
	require.Equal(t, 1, rep.ReplayedLetters)
	require.Equal(t, 1, rep.FailedLetters)
	require.Len(t, w.messages(t), 1)

	// The poisoned letter waits a full backoff step before its next try.
	due, err := w.store.DeadLetters().ListDueDeadLetters(ctx, w.clock.Now().Add(59*time.Second), domain.DeadLetterMaxAttempts, 10)
	require.NoError(t, err)
	require.Empty(t, due)

	due, err = w.store.DeadLetters().ListDueDeadLetters(ctx, w.clock.Now().Add(time.Minute), domain.DeadLetterMaxAttempts, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, poisoned.ID, due[0].ID)
	require.Equal(t, 1, due[0].Attempts)
}

func TestHousekeepingStartStop(t *testing.T) {
	f := newFixture(t)
	hk := service.NewHousekeepingService(f.store, nil, nil, slogx.Discard(), time.Hour)
	hk.Start()
	hk.Stop()
}
