package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
)

type invitesRepo struct {
	db dbtx
}

const inviteColumns = `id, email, group_id, token_hash, expires_at, status, invited_by, accepted_at, created_at, updated_at`

func scanInvite(s scanner) (domain.Invite, error) {
	var (
		inv        domain.Invite
		status     string
		invitedBy  sql.NullString
		acceptedAt sql.NullTime
	)
	if err := s.Scan(&inv.ID, &inv.Email, &inv.GroupID, &inv.TokenHash, &inv.ExpiresAt, &status, &invitedBy, &acceptedAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return domain.Invite{}, err
	}
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	inv.Status = domain.InviteStatus(status)
	inv.InvitedBy = mapNullStringPtr(invitedBy)
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	return inv, nil
}

func (r *invitesRepo) getOne(ctx context.Context, where string, arg any) (domain.Invite, error) {
	inv, err := scanInvite(r.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE `+where, arg))
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invites (id, email, group_id, token_hash, expires_at, status, invited_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.GroupID, inv.TokenHash, utc(inv.ExpiresAt), string(inv.Status), mapOptionalString(inv.InvitedBy),
	)
	return mapConstraint(err)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.Invite, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *invitesRepo) GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	return r.getOne(ctx, `token_hash = ?`, hash)
}

func (r *invitesRepo) GetPendingInviteByEmail(ctx context.Context, email string) (domain.Invite, error) {
	return r.getOne(ctx, `status = 'pending' AND email = ?`, email)
}

func (r *invitesRepo) ListInvites(ctx context.Context) ([]domain.Invite, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+inviteColumns+` FROM invites ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitesRepo) MarkInviteAccepted(ctx context.Context, id string, at time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE invites SET status = 'accepted', accepted_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'pending'`, utc(at), id))
}

func (r *invitesRepo) MarkInviteExpired(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE invites SET status = 'expired', updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'pending'`, id))
}

func (r *invitesRepo) ExpirePendingInvites(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invites SET status = 'expired', updated_at = CURRENT_TIMESTAMP
		WHERE status = 'pending' AND expires_at <= ?`, utc(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *invitesRepo) DeleteInvite(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM invites WHERE id = ?`, id))
}
