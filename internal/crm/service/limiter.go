package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterSweepThreshold = 1000

// SendLimiter allows one outbound message per key per interval. Keys are
// instance ids.
type SendLimiter struct {
	Every time.Duration
	Now   func() time.Time

	mu       sync.Mutex
	limiters map[string]*sendLimiterEntry
}

type sendLimiterEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewSendLimiter allows one send per every.
func NewSendLimiter(every time.Duration) *SendLimiter {
	return &SendLimiter{Every: every, limiters: make(map[string]*sendLimiterEntry)}
}

// Reserve takes a slot for key. It returns zero when the send may proceed,
// otherwise how long the caller must wait; no slot is consumed in that case.
func (l *SendLimiter) Reserve(key string) time.Duration {
	now := nowOr(l.Now)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limiters == nil {
		l.limiters = make(map[string]*sendLimiterEntry)
	}
	e, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= limiterSweepThreshold {
			l.sweep(now)
		}
		e = &sendLimiterEntry{limiter: rate.NewLimiter(rate.Every(l.Every), 1)}
		l.limiters[key] = e
	}
	e.seen = now

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return l.Every
	}
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return delay
	}
	return 0
}

// sweep drops limiters idle long enough to be full again.
func (l *SendLimiter) sweep(now time.Time) {
	for k, e := range l.limiters {
		if now.Sub(e.seen) > l.Every {
			delete(l.limiters, k)
		}
	}
}
