package sqlite

import (
	"context"
	"database/sql"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
)

type groupsRepo struct {
	db dbtx
}

const groupColumns = `g.id, g.name, g.description, g.is_default, g.created_by, g.created_at, g.updated_at`

func scanGroup(s scanner, extra ...any) (domain.Group, error) {
	var (
		g         domain.Group
		createdBy sql.NullString
	)
	dest := append([]any{&g.ID, &g.Name, &g.Description, &g.IsDefault, &createdBy, &g.CreatedAt, &g.UpdatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return domain.Group{}, err
	}
	g.CreatedBy = mapNullStringPtr(createdBy)
	return g, nil
}

func (r *groupsRepo) getOne(ctx context.Context, where string, args ...any) (domain.Group, error) {
	g, err := scanGroup(r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups g WHERE `+where, args...))
	if err != nil {
		return domain.Group{}, mapNotFound(err)
	}
	return g, nil
}

func (r *groupsRepo) GetGroupByID(ctx context.Context, id string) (domain.Group, error) {
	return r.getOne(ctx, `g.id = ?`, id)
}

func (r *groupsRepo) GetGroupByName(ctx context.Context, name string) (domain.Group, error) {
	return r.getOne(ctx, `g.name = ?`, name)
}

func (r *groupsRepo) GetDefaultGroup(ctx context.Context) (domain.Group, error) {
	return r.getOne(ctx, `g.is_default = 1 ORDER BY g.created_at LIMIT 1`)
}

func (r *groupsRepo) ListGroups(ctx context.Context) ([]domain.GroupSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+groupColumns+`, COUNT(u.id)
		FROM groups g
		LEFT JOIN users u ON u.group_id = g.id
		GROUP BY g.id
		ORDER BY g.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GroupSummary
	for rows.Next() {
		var count int
		g, err := scanGroup(rows, &count)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.GroupSummary{Group: g, UserCount: count})
	}
	return out, rows.Err()
}

func (r *groupsRepo) CreateGroup(ctx context.Context, g domain.Group) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO groups (id, name, description, is_default, created_by)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Description, g.IsDefault, mapOptionalString(g.CreatedBy),
	)
	return mapConstraint(err)
}

func (r *groupsRepo) UpdateGroup(ctx context.Context, g domain.Group) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE groups
		SET name = ?, description = ?, is_default = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		g.Name, g.Description, g.IsDefault, g.ID,
	)
	return requireAffected(res, mapConstraint(err))
}

func (r *groupsRepo) ClearDefault(ctx context.Context, keepID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE groups SET is_default = 0, updated_at = CURRENT_TIMESTAMP
		WHERE is_default = 1 AND id <> ?`, keepID)
	return err
}

func (r *groupsRepo) DeleteGroup(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id))
}
