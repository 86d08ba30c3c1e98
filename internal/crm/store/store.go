package store

import (
	"context"
	"errors"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. It exposes sub-repositories so a
// transaction-scoped Store offers exactly the same surface as the root one,
// and nested transactions are refused instead of silently flattened.
type Store interface {
	Users() Users
	Groups() Groups
	Permissions() Permissions
	Invites() Invites
	Clients() Clients
	Instances() Instances
	Contacts() Contacts
	Messages() Messages
	DeadLetters() DeadLetters

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByAuthID maps an external identity onto the application user.
	GetUserByAuthID(ctx context.Context, authID string) (domain.User, error)

	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. Duplicate auth id or email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns one page of users matching f plus the total match count.
	ListUsers(ctx context.Context, f domain.UserFilter) ([]domain.User, int, error)

	// UpdateUser writes name, avatar, group and status, and bumps updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	TouchLastAccess(ctx context.Context, userID string, at time.Time) error

	// ListUserIDsByGroup returns every user id assigned to the group.
	ListUserIDsByGroup(ctx context.Context, groupID string) ([]string, error)

	CountUsersByGroup(ctx context.Context, groupID string) (int, error)
	CountActiveUsersByGroup(ctx context.Context, groupID string) (int, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Groups interface {
	GetGroupByID(ctx context.Context, id string) (domain.Group, error)
	GetGroupByName(ctx context.Context, name string) (domain.Group, error)

	// GetDefaultGroup returns the group new invites fall back to.
	GetDefaultGroup(ctx context.Context) (domain.Group, error)

	// ListGroups returns every group with its member count, ordered by name.
	ListGroups(ctx context.Context) ([]domain.GroupSummary, error)

	// CreateGroup inserts a group. A duplicate name yields ErrAlreadyExists.
	CreateGroup(ctx context.Context, g domain.Group) error

	// UpdateGroup writes name, description and the default flag.
	UpdateGroup(ctx context.Context, g domain.Group) error

	// ClearDefault unsets is_default on every group except keepID.
	ClearDefault(ctx context.Context, keepID string) error

	DeleteGroup(ctx context.Context, id string) error
}

type Permissions interface {
	ListPermissionsByGroup(ctx context.Context, groupID string) ([]domain.PermissionEntry, error)

	// ReplaceForGroup deletes every row of the group then inserts entries.
	// Callers run it inside WithTx so a failed insert keeps the prior rows.
	ReplaceForGroup(ctx context.Context, groupID string, entries []domain.PermissionEntry) error
}

type Invites interface {
	// CreateInvite writes a new invite. A second pending invite for the same
	// email yields ErrAlreadyExists.
	CreateInvite(ctx context.Context, inv domain.Invite) error

	GetInviteByID(ctx context.Context, id string) (domain.Invite, error)
	GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error)
	GetPendingInviteByEmail(ctx context.Context, email string) (domain.Invite, error)

	// ListInvites returns every invite, newest first.
	ListInvites(ctx context.Context) ([]domain.Invite, error)

	// MarkInviteAccepted flips a pending invite to accepted. A non-pending
	// invite yields ErrNotFound so concurrent redemptions cannot both win.
	MarkInviteAccepted(ctx context.Context, id string, at time.Time) error

	MarkInviteExpired(ctx context.Context, id string) error

	// ExpirePendingInvites marks every pending invite past its expiry and
	// returns how many rows changed.
	ExpirePendingInvites(ctx context.Context, now time.Time) (int64, error)

	DeleteInvite(ctx context.Context, id string) error
}

type Clients interface {
	CreateClient(ctx context.Context, c domain.Client) error
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns clients whose name, email or document contains search.
	ListClients(ctx context.Context, search string, limit, offset int) ([]domain.Client, int, error)

	UpdateClient(ctx context.Context, c domain.Client) error
	DeleteClient(ctx context.Context, id string) error

	// FindClientByPhones returns the oldest client whose phone equals any candidate.
	FindClientByPhones(ctx context.Context, phones []string) (domain.Client, error)
}

type Instances interface {
	CreateInstance(ctx context.Context, inst domain.Instance) error
	GetInstanceByID(ctx context.Context, id string) (domain.Instance, error)
	GetInstanceByName(ctx context.Context, name string) (domain.Instance, error)
	ListInstances(ctx context.Context) ([]domain.Instance, error)

	UpdateInstanceStatus(ctx context.Context, id string, status domain.InstanceStatus) error
	UpdateInstanceQRCode(ctx context.Context, id string, qr string) error
	UpdateInstancePhone(ctx context.Context, id string, phone string) error

	// DeleteInstance cascades to contacts and messages.
	DeleteInstance(ctx context.Context, id string) error
}

type Contacts interface {
	// UpsertContact inserts or refreshes the contact keyed by (instance, phone)
	// and returns the stored row. Empty name or avatar never overwrite.
	UpsertContact(ctx context.Context, c domain.Contact) (domain.Contact, error)

	GetContactByID(ctx context.Context, id string) (domain.Contact, error)
	ListContacts(ctx context.Context, instanceID string) ([]domain.Contact, error)

	// ListUnlinkedContacts returns up to limit contacts without a client.
	ListUnlinkedContacts(ctx context.Context, limit int) ([]domain.Contact, error)

	LinkClient(ctx context.Context, contactID, clientID string) error
}

type Messages interface {
	// CreateMessage inserts a message. A repeated (instance, external id)
	// yields ErrAlreadyExists.
	CreateMessage(ctx context.Context, m domain.Message) error

	GetMessageByID(ctx context.Context, id string) (domain.Message, error)

	// ListMessages returns one page newest first.
	ListMessages(ctx context.Context, p domain.MessagePage) ([]domain.Message, error)

	MarkMessageSent(ctx context.Context, id, externalID string) error
	MarkMessageFailed(ctx context.Context, id, errText string) error

	// UpdateStatusByExternalID yields ErrNotFound when no row matches.
	UpdateStatusByExternalID(ctx context.Context, instanceID, externalID string, status domain.MessageStatus) error
}

type DeadLetters interface {
	CreateDeadLetter(ctx context.Context, d domain.DeadLetter) error

	// ListDueDeadLetters returns rows due at now with attempts left.
	ListDueDeadLetters(ctx context.Context, now time.Time, maxAttempts, limit int) ([]domain.DeadLetter, error)

	// RecordDeadLetterFailure bumps attempts and reschedules.
	RecordDeadLetterFailure(ctx context.Context, id, errText string, next time.Time) error

	DeleteDeadLetter(ctx context.Context, id string) error
}
