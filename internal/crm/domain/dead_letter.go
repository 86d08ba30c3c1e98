package domain

import "time"

// DeadLetter is a failed asynchronous work item kept for retry.
type DeadLetter struct {
	ID            string
	Source        string
	Event         string
	Payload       []byte
	Error         string
	Attempts      int
	NextAttemptAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DeadLetterMaxAttempts bounds retries. Rows at the limit stay for inspection.
const DeadLetterMaxAttempts = 5
