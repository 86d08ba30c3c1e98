package sqlite

import (
	"context"
	"database/sql"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
)

type contactsRepo struct {
	db dbtx
}

const contactColumns = `id, instance_id, phone, name, avatar_url, client_id, created_at, updated_at`

func scanContact(s scanner) (domain.Contact, error) {
	var (
		c        domain.Contact
		clientID sql.NullString
	)
	if err := s.Scan(&c.ID, &c.InstanceID, &c.Phone, &c.Name, &c.AvatarURL, &clientID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Contact{}, err
	}
	c.ClientID = mapNullStringPtr(clientID)
	return c, nil
}

func (r *contactsRepo) UpsertContact(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO whatsapp_contacts (id, instance_id, phone, name, avatar_url)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (instance_id, phone) DO UPDATE SET
			name       = CASE WHEN excluded.name <> '' THEN excluded.name ELSE whatsapp_contacts.name END,
			avatar_url = CASE WHEN excluded.avatar_url <> '' THEN excluded.avatar_url ELSE whatsapp_contacts.avatar_url END,
			updated_at = CURRENT_TIMESTAMP
		RETURNING `+contactColumns,
		c.ID, c.InstanceID, c.Phone, c.Name, c.AvatarURL,
	)
	out, err := scanContact(row)
	if err != nil {
		return domain.Contact{}, mapConstraint(err)
	}
	return out, nil
}

func (r *contactsRepo) GetContactByID(ctx context.Context, id string) (domain.Contact, error) {
	c, err := scanContact(r.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM whatsapp_contacts WHERE id = ?`, id))
	if err != nil {
		return domain.Contact{}, mapNotFound(err)
	}
	return c, nil
}

func (r *contactsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *contactsRepo) ListContacts(ctx context.Context, instanceID string) ([]domain.Contact, error) {
	if instanceID == "" {
		return r.list(ctx, `SELECT `+contactColumns+` FROM whatsapp_contacts ORDER BY updated_at DESC, id`)
	}
	return r.list(ctx,
		`SELECT `+contactColumns+` FROM whatsapp_contacts WHERE instance_id = ? ORDER BY updated_at DESC, id`,
		instanceID)
}

func (r *contactsRepo) ListUnlinkedContacts(ctx context.Context, limit int) ([]domain.Contact, error) {
	return r.list(ctx,
		`SELECT `+contactColumns+` FROM whatsapp_contacts WHERE client_id IS NULL ORDER BY created_at, id LIMIT ?`,
		limit)
}

func (r *contactsRepo) LinkClient(ctx context.Context, contactID, clientID string) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE whatsapp_contacts SET client_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		clientID, contactID))
}
