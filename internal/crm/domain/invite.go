package domain

import "time"

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteExpired  InviteStatus = "expired"
)

// InviteTTL is how long an invite token stays redeemable.
const InviteTTL = 7 * 24 * time.Hour

type Invite struct {
	ID         string
	Email      string
	GroupID    string
	TokenHash  string
	ExpiresAt  time.Time
	Status     InviteStatus
	InvitedBy  *string
	AcceptedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Redeemable reports whether the invite can still be accepted at now. Pending
// rows past their expiry are not redeemable even before they are marked.
func (i Invite) Redeemable(now time.Time) bool {
	return i.Status == InvitePending && now.Before(i.ExpiresAt)
}
