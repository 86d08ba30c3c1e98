package sqlite

import (
	"context"
	"database/sql"

	"github.com/matheuspina/avaliatec/internal/crm/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the outer DB stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users             { return &usersRepo{db: t.tx} }
func (t *txStore) Groups() store.Groups           { return &groupsRepo{db: t.tx} }
func (t *txStore) Permissions() store.Permissions { return &permissionsRepo{db: t.tx} }
func (t *txStore) Invites() store.Invites         { return &invitesRepo{db: t.tx} }
func (t *txStore) Clients() store.Clients         { return &clientsRepo{db: t.tx} }
func (t *txStore) Instances() store.Instances     { return &instancesRepo{db: t.tx} }
func (t *txStore) Contacts() store.Contacts       { return &contactsRepo{db: t.tx} }
func (t *txStore) Messages() store.Messages       { return &messagesRepo{db: t.tx} }
func (t *txStore) DeadLetters() store.DeadLetters { return &deadLettersRepo{db: t.tx} }

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }
