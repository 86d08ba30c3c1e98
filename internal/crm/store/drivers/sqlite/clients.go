package sqlite

import (
	"context"
	"strings"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/store"
)

type clientsRepo struct {
	db dbtx
}

const clientColumns = `id, name, email, phone, document, notes, created_at, updated_at`

func scanClient(s scanner) (domain.Client, error) {
	var c domain.Client
	err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Document, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, email, phone, document, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Phone, c.Document, c.Notes,
	)
	return mapConstraint(err)
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id))
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context, search string, limit, offset int) ([]domain.Client, int, error) {
	clause := ""
	var args []any
	if search != "" {
		clause = ` WHERE name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR document LIKE ? ESCAPE '\'`
		p := likePattern(search)
		args = []any{p, p, p}
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients`+clause+` ORDER BY name LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *clientsRepo) UpdateClient(ctx context.Context, c domain.Client) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, email = ?, phone = ?, document = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.Name, c.Email, c.Phone, c.Document, c.Notes, c.ID,
	))
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id))
}

func (r *clientsRepo) FindClientByPhones(ctx context.Context, phones []string) (domain.Client, error) {
	if len(phones) == 0 {
		return domain.Client{}, store.ErrNotFound
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(phones)), ",")
	args := make([]any, len(phones))
	for i, p := range phones {
		args[i] = p
	}

	c, err := scanClient(r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE phone IN (`+placeholders+`) ORDER BY created_at, id LIMIT 1`,
		args...,
	))
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}
