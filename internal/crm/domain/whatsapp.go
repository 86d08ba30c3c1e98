package domain

import "time"

type InstanceStatus string

const (
	InstanceCreated      InstanceStatus = "created"
	InstanceConnecting   InstanceStatus = "connecting"
	InstanceConnected    InstanceStatus = "connected"
	InstanceDisconnected InstanceStatus = "disconnected"
)

// Instance is a WhatsApp connection managed through the gateway. Name is the
// gateway-side instance name.
type Instance struct {
	ID          string
	Name        string
	DisplayName string
	Status      InstanceStatus
	QRCode      string
	Phone       string
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Contact struct {
	ID         string
	InstanceID string
	Phone      string
	Name       string
	AvatarURL  string
	ClientID   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type MessageDirection string

const (
	DirectionInbound  MessageDirection = "in"
	DirectionOutbound MessageDirection = "out"
)

type MessageStatus string

const (
	MessagePending   MessageStatus = "pending"
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
	MessageFailed    MessageStatus = "failed"
	MessageReceived  MessageStatus = "received"
)

type Message struct {
	ID         string
	InstanceID string
	ContactID  string
	ExternalID *string
	Direction  MessageDirection
	Body       string
	Type       string
	Status     MessageStatus
	Error      string
	SentBy     *string
	Timestamp  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MessagePage is a cursor page query. Before is exclusive; zero means newest.
// MessagePage selects messages strictly older than (Before, BeforeID). An
// empty BeforeID compares on the timestamp alone.
type MessagePage struct {
	ContactID string
	Before    time.Time
	BeforeID  string
	Limit     int
}
