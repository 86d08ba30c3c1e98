package sqlite

import (
	"context"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
)

type deadLettersRepo struct {
	db dbtx
}

func (r *deadLettersRepo) CreateDeadLetter(ctx context.Context, d domain.DeadLetter) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dead_letters (id, source, event, payload, error, attempts, next_attempt_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Source, d.Event, d.Payload, d.Error, d.Attempts, utc(d.NextAttemptAt),
	)
	return mapConstraint(err)
}

func (r *deadLettersRepo) ListDueDeadLetters(ctx context.Context, now time.Time, maxAttempts, limit int) ([]domain.DeadLetter, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, event, payload, error, attempts, next_attempt_at, created_at, updated_at
		FROM dead_letters
		WHERE next_attempt_at <= ? AND attempts < ?
		ORDER BY next_attempt_at, id
		LIMIT ?`, utc(now), maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DeadLetter
	for rows.Next() {
		var d domain.DeadLetter
		if err := rows.Scan(&d.ID, &d.Source, &d.Event, &d.Payload, &d.Error, &d.Attempts, &d.NextAttemptAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.NextAttemptAt = d.NextAttemptAt.UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *deadLettersRepo) RecordDeadLetterFailure(ctx context.Context, id, errText string, next time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE dead_letters
		SET attempts = attempts + 1, error = ?, next_attempt_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, errText, utc(next), id))
}

func (r *deadLettersRepo) DeleteDeadLetter(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM dead_letters WHERE id = ?`, id))
}
