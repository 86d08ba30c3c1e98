package sqlite

import (
	"context"
	"database/sql"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
)

type messagesRepo struct {
	db dbtx
}

const messageColumns = `id, instance_id, contact_id, external_id, direction, body, type, status, error, sent_by, timestamp, created_at, updated_at`

func scanMessage(s scanner) (domain.Message, error) {
	var (
		m          domain.Message
		externalID sql.NullString
		direction  string
		status     string
		sentBy     sql.NullString
	)
	if err := s.Scan(&m.ID, &m.InstanceID, &m.ContactID, &externalID, &direction, &m.Body, &m.Type, &status, &m.Error, &sentBy, &m.Timestamp, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return domain.Message{}, err
	}
	m.ExternalID = mapNullStringPtr(externalID)
	m.Direction = domain.MessageDirection(direction)
	m.Status = domain.MessageStatus(status)
	m.SentBy = mapNullStringPtr(sentBy)
	m.Timestamp = m.Timestamp.UTC()
	return m, nil
}

func (r *messagesRepo) CreateMessage(ctx context.Context, m domain.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO whatsapp_messages
			(id, instance_id, contact_id, external_id, direction, body, type, status, error, sent_by, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.InstanceID, m.ContactID, mapOptionalString(m.ExternalID), string(m.Direction),
		m.Body, m.Type, string(m.Status), m.Error, mapOptionalString(m.SentBy), utc(m.Timestamp),
	)
	return mapConstraint(err)
}

func (r *messagesRepo) GetMessageByID(ctx context.Context, id string) (domain.Message, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM whatsapp_messages WHERE id = ?`, id))
	if err != nil {
		return domain.Message{}, mapNotFound(err)
	}
	return m, nil
}

func (r *messagesRepo) ListMessages(ctx context.Context, p domain.MessagePage) ([]domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM whatsapp_messages WHERE contact_id = ?`
	args := []any{p.ContactID}
	switch {
	case !p.Before.IsZero() && p.BeforeID != "":
		query += ` AND (timestamp < ? OR (timestamp = ? AND id < ?))`
		args = append(args, utc(p.Before), utc(p.Before), p.BeforeID)
	case !p.Before.IsZero():
		query += ` AND timestamp < ?`
		args = append(args, utc(p.Before))
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, p.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *messagesRepo) MarkMessageSent(ctx context.Context, id, externalID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE whatsapp_messages
		SET status = 'sent', external_id = ?, error = '', updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, externalID, id)
	return requireAffected(res, mapConstraint(err))
}

func (r *messagesRepo) MarkMessageFailed(ctx context.Context, id, errText string) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE whatsapp_messages
		SET status = 'failed', error = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, errText, id))
}

func (r *messagesRepo) UpdateStatusByExternalID(ctx context.Context, instanceID, externalID string, status domain.MessageStatus) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE whatsapp_messages SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE instance_id = ? AND external_id = ?`, string(status), instanceID, externalID))
}
