package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, auth_id, email, name, avatar_url, group_id, status, last_access_at, created_at, updated_at`

func scanUser(s scanner) (domain.User, error) {
	var (
		u          domain.User
		groupID    sql.NullString
		status     string
		lastAccess sql.NullTime
	)
	if err := s.Scan(&u.ID, &u.AuthID, &u.Email, &u.Name, &u.AvatarURL, &groupID, &status, &lastAccess, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	u.GroupID = mapNullStringPtr(groupID)
	u.Status = domain.UserStatus(status)
	u.LastAccessAt = mapNullTimePtr(lastAccess)
	return u, nil
}

func (r *usersRepo) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *usersRepo) GetUserByAuthID(ctx context.Context, authID string) (domain.User, error) {
	return r.getOne(ctx, `auth_id = ?`, authID)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `email = ?`, email)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, auth_id, email, name, avatar_url, group_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.AuthID, u.Email, u.Name, u.AvatarURL, mapOptionalString(u.GroupID), string(u.Status),
	)
	return mapConstraint(err)
}

func (r *usersRepo) ListUsers(ctx context.Context, f domain.UserFilter) ([]domain.User, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Search != "" {
		where = append(where, `(name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\')`)
		p := likePattern(f.Search)
		args = append(args, p, p)
	}
	if f.GroupID != "" {
		where = append(where, `group_id = ?`)
		args = append(args, f.GroupID)
	}
	if f.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, string(f.Status))
	}

	clause := ""
	if len(where) > 0 {
		clause = ` WHERE ` + strings.Join(where, ` AND `)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users`+clause+` ORDER BY name, email LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, avatar_url = ?, group_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		u.Name, u.AvatarURL, mapOptionalString(u.GroupID), string(u.Status), u.ID,
	))
}

func (r *usersRepo) TouchLastAccess(ctx context.Context, userID string, at time.Time) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE users SET last_access_at = ? WHERE id = ?`, utc(at), userID))
}

func (r *usersRepo) ListUserIDsByGroup(ctx context.Context, groupID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users WHERE group_id = ?`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *usersRepo) CountUsersByGroup(ctx context.Context, groupID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE group_id = ?`, groupID).Scan(&n)
	return n, err
}

func (r *usersRepo) CountActiveUsersByGroup(ctx context.Context, groupID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE group_id = ? AND status = 'active'`, groupID).Scan(&n)
	return n, err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists)
	return !exists, err
}
