package domain

import "time"

// Client is a CRM customer.
type Client struct {
	ID        string
	Name      string
	Email     string
	Phone     string // digits only
	Document  string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
