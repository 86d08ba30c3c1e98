package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/store"
)

const (
	deadLetterBaseDelay = 30 * time.Second
	deadLetterMaxDelay  = time.Hour
	deadLetterBatch     = 50
	matchBatch          = 200
)

// DeadLetterBackoff is the wait before retry number attempts+1.
func DeadLetterBackoff(attempts int) time.Duration {
	d := deadLetterBaseDelay
	for range attempts {
		d *= 2
		if d >= deadLetterMaxDelay {
			return deadLetterMaxDelay
		}
	}
	return d
}

// HousekeepingService periodically expires invites, retries dead-lettered
// webhooks and links unmatched contacts to clients.
type HousekeepingService struct {
	Store    store.Store
	Webhooks *WebhookService
	Match    *MatchService
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(st store.Store, webhooks *WebhookService, match *MatchService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Store:    st,
		Webhooks: webhooks,
		Match:    match,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress pass.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// HousekeepingReport counts what one pass did.
type HousekeepingReport struct {
	ExpiredInvites  int64
	ReplayedLetters int
	FailedLetters   int
	ContactsMatched int
}

// RunOnce performs one pass. Each task is independent; a failure in one does
// not stop the others.
func (s *HousekeepingService) RunOnce(ctx context.Context) HousekeepingReport {
	var rep HousekeepingReport
	now := nowOr(s.Now)

	// Expire invites
	n, err := s.Store.Invites().ExpirePendingInvites(ctx, now)
	if err != nil {
		s.Logger.Error("failed to expire invites", "error", err)
	} else {
		rep.ExpiredInvites = n
	}

	// Retry dead letters
	if s.Webhooks != nil {
		rep.ReplayedLetters, rep.FailedLetters = s.retryDeadLetters(ctx, now)
	}

	// Link contacts
	if s.Match != nil {
		linked, err := s.Match.MatchUnlinked(ctx, matchBatch)
		if err != nil {
			s.Logger.Error("failed to match contacts", "error", err)
		}
		rep.ContactsMatched = linked
	}

	s.Logger.Debug("housekeeping pass completed",
		"expired_invites", rep.ExpiredInvites,
		"replayed_dead_letters", rep.ReplayedLetters,
		"failed_dead_letters", rep.FailedLetters,
		"contacts_matched", rep.ContactsMatched,
	)
	return rep
}

func (s *HousekeepingService) retryDeadLetters(ctx context.Context, now time.Time) (replayed, failed int) {
	due, err := s.Store.DeadLetters().ListDueDeadLetters(ctx, now, domain.DeadLetterMaxAttempts, deadLetterBatch)
	if err != nil {
		s.Logger.Error("failed to list dead letters", "error", err)
		return 0, 0
	}

	for _, d := range due {
		if err := s.Webhooks.Replay(ctx, d); err != nil {
			failed++
			next := now.Add(DeadLetterBackoff(d.Attempts + 1))
			if rerr := s.Store.DeadLetters().RecordDeadLetterFailure(ctx, d.ID, err.Error(), next); rerr != nil {
				s.Logger.Error("failed to reschedule dead letter", "dead_letter_id", d.ID, "error", rerr)
			}
			if d.Attempts+1 >= domain.DeadLetterMaxAttempts {
				s.Logger.Warn("dead letter exhausted retries", "dead_letter_id", d.ID, "event", d.Event, "error", err)
			}
			continue
		}
		replayed++
		if err := s.Store.DeadLetters().DeleteDeadLetter(ctx, d.ID); err != nil {
			s.Logger.Error("failed to delete replayed dead letter", "dead_letter_id", d.ID, "error", err)
		}
	}
	return replayed, failed
}
