package sqlite

import (
	"context"
	"fmt"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/pkg/access"
)

type permissionsRepo struct {
	db dbtx
}

func (r *permissionsRepo) ListPermissionsByGroup(ctx context.Context, groupID string) ([]domain.PermissionEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT section, can_view, can_create, can_edit, can_delete
		FROM group_permissions WHERE group_id = ?`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PermissionEntry
	for rows.Next() {
		var (
			key string
			p   access.Permission
		)
		if err := rows.Scan(&key, &p.View, &p.Create, &p.Edit, &p.Delete); err != nil {
			return nil, err
		}
		section, err := access.ParseSection(key)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", groupID, err)
		}
		out = append(out, domain.PermissionEntry{GroupID: groupID, Section: section, Permission: p})
	}
	return out, rows.Err()
}

func (r *permissionsRepo) ReplaceForGroup(ctx context.Context, groupID string, entries []domain.PermissionEntry) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM group_permissions WHERE group_id = ?`, groupID); err != nil {
		return err
	}

	for _, e := range entries {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO group_permissions (group_id, section, can_view, can_create, can_edit, can_delete)
			VALUES (?, ?, ?, ?, ?, ?)`,
			groupID, e.Section.Key(), e.Permission.View, e.Permission.Create, e.Permission.Edit, e.Permission.Delete,
		); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}
