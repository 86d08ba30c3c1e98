package crmsdk

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/matheuspina/avaliatec/pkg/access"
)

// ============================================================================
// Errors
// ============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`

	// UserCount is set on GROUP_HAS_USERS.
	UserCount *int `json:"user_count,omitempty"`

	// RetryAfterMS is set on RATE_LIMITED.
	RetryAfterMS *int64 `json:"retry_after_ms,omitempty"`
}

// Nullable distinguishes an absent JSON field from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Null returns a Nullable explicitly set to null.
func Null[T any]() Nullable[T] { return Nullable[T]{Set: true} }

// Some returns a Nullable set to v.
func Some[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Value: &v} }

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// ============================================================================
// Users and groups
// ============================================================================

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	GroupID      *string    `json:"group_id"`
	Status       string     `json:"status"`
	LastAccessAt *time.Time `json:"last_access_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type UserListResponse struct {
	Users   []User `json:"users"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// UpdateUserRequest changes a user. Absent fields stay as they are; an
// explicit null group_id unassigns the user.
type UpdateUserRequest struct {
	Name    *string          `json:"name,omitempty"`
	GroupID Nullable[string] `json:"group_id,omitzero"`
	Status  *string          `json:"status,omitempty"`
}

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"is_default"`
	IsAdmin     bool      `json:"is_admin"`
	UserCount   int       `json:"user_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type GroupListResponse struct {
	Groups []Group `json:"groups"`
}

type GroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default,omitempty"`
}

// PermissionEntry is one row of a permission matrix. Section is the raw
// section key so unknown keys reach the server and are reported there.
type PermissionEntry struct {
	Section string `json:"section"`
	access.Permission
}

type PermissionsRequest struct {
	Permissions []PermissionEntry `json:"permissions"`
}

type PermissionsResponse struct {
	GroupID     string     `json:"group_id"`
	Permissions access.Map `json:"permissions"`
}

// MeResponse is the current user's profile with their resolved permissions.
type MeResponse struct {
	User        User             `json:"user"`
	Group       *Group           `json:"group"`
	IsAdmin     bool             `json:"is_admin"`
	Permissions access.Map       `json:"permissions"`
	Navigation  []access.NavItem `json:"navigation"`
}

// ============================================================================
// Invites and bootstrap
// ============================================================================

type Invite struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	GroupID    string     `json:"group_id"`
	Status     string     `json:"status"`
	ExpiresAt  time.Time  `json:"expires_at"`
	InvitedBy  *string    `json:"invited_by,omitempty"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type InviteListResponse struct {
	Invites []Invite `json:"invites"`
}

type CreateInviteRequest struct {
	Email   string `json:"email"`
	GroupID string `json:"group_id,omitempty"`
}

type CreateInviteResponse struct {
	Invite    Invite `json:"invite"`
	AcceptURL string `json:"accept_url"`
	EmailSent bool   `json:"email_sent"`
}

type ValidateInviteResponse struct {
	Valid     bool      `json:"valid"`
	Email     string    `json:"email"`
	GroupName string    `json:"group_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AcceptInviteRequest struct {
	Token string `json:"token"`
}

type BootstrapRequest struct {
	AuthID string `json:"auth_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type BootstrapResponse struct {
	User         User  `json:"user"`
	AdminGroup   Group `json:"admin_group"`
	DefaultGroup Group `json:"default_group"`
}

// ============================================================================
// CRM clients
// ============================================================================

type CRMClient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Document  string    `json:"document,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ClientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Document string `json:"document,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type ClientListResponse struct {
	Clients []CRMClient `json:"clients"`
	Total   int      `json:"total"`
}

// ============================================================================
// WhatsApp
// ============================================================================

type Instance struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Status      string    `json:"status"`
	QRCode      string    `json:"qr_code,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type InstanceListResponse struct {
	Instances []Instance `json:"instances"`
}

type CreateInstanceRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
}

type Contact struct {
	ID         string  `json:"id"`
	InstanceID string  `json:"instance_id"`
	Phone      string  `json:"phone"`
	Name       string  `json:"name,omitempty"`
	AvatarURL  string  `json:"avatar_url,omitempty"`
	ClientID   *string `json:"client_id"`
}

type ContactListResponse struct {
	Contacts []Contact `json:"contacts"`
}

type Message struct {
	ID         string    `json:"id"`
	InstanceID string    `json:"instance_id"`
	ContactID  string    `json:"contact_id"`
	ExternalID *string   `json:"external_id,omitempty"`
	Direction  string    `json:"direction"`
	Body       string    `json:"body"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	SentBy     *string   `json:"sent_by,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// MessageListResponse is one chronological page. NextBefore, when set, is
// the cursor of the next older page, paired with NextBeforeID.
type MessageListResponse struct {
	Messages     []Message  `json:"messages"`
	NextBefore   *time.Time `json:"next_before"`
	NextBeforeID string     `json:"next_before_id,omitempty"`
}

// MessageCursor positions ListMessages before a given message.
type MessageCursor struct {
	Before   time.Time
	BeforeID string
}

// Next returns the cursor of the next older page, or nil on the last page.
func (r *MessageListResponse) Next() *MessageCursor {
	if r == nil || r.NextBefore == nil {
		return nil
	}
	return &MessageCursor{Before: *r.NextBefore, BeforeID: r.NextBeforeID}
}

type SendMessageRequest struct {
	ContactID string `json:"contact_id"`
	Text      string `json:"text"`
}

type WebhookResponse struct {
	Status string `json:"status"`
}

// ============================================================================
// Health
// ============================================================================

type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// ============================================================================
// Realtime
// ============================================================================

// Event is a realtime frame pushed over /v1/realtime.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const EventPermissionsChanged = "permissions_changed"
