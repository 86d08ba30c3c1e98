package sqlite

import (
	"context"
	"database/sql"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
)

type instancesRepo struct {
	db dbtx
}

const instanceColumns = `id, name, display_name, status, qr_code, phone, created_by, created_at, updated_at`

func scanInstance(s scanner) (domain.Instance, error) {
	var (
		inst      domain.Instance
		status    string
		createdBy sql.NullString
	)
	if err := s.Scan(&inst.ID, &inst.Name, &inst.DisplayName, &status, &inst.QRCode, &inst.Phone, &createdBy, &inst.CreatedAt, &inst.UpdatedAt); err != nil {
		return domain.Instance{}, err
	}
	inst.Status = domain.InstanceStatus(status)
	inst.CreatedBy = mapNullStringPtr(createdBy)
	return inst, nil
}

func (r *instancesRepo) CreateInstance(ctx context.Context, inst domain.Instance) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO whatsapp_instances (id, name, display_name, status, qr_code, phone, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inst.ID, inst.Name, inst.DisplayName, string(inst.Status), inst.QRCode, inst.Phone, mapOptionalString(inst.CreatedBy),
	)
	return mapConstraint(err)
}

func (r *instancesRepo) getOne(ctx context.Context, where string, arg any) (domain.Instance, error) {
	inst, err := scanInstance(r.db.QueryRowContext(ctx, `SELECT `+instanceColumns+` FROM whatsapp_instances WHERE `+where, arg))
	if err != nil {
		return domain.Instance{}, mapNotFound(err)
	}
	return inst, nil
}

func (r *instancesRepo) GetInstanceByID(ctx context.Context, id string) (domain.Instance, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *instancesRepo) GetInstanceByName(ctx context.Context, name string) (domain.Instance, error) {
	return r.getOne(ctx, `name = ?`, name)
}

func (r *instancesRepo) ListInstances(ctx context.Context) ([]domain.Instance, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+instanceColumns+` FROM whatsapp_instances ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (r *instancesRepo) UpdateInstanceStatus(ctx context.Context, id string, status domain.InstanceStatus) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE whatsapp_instances SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), id))
}

func (r *instancesRepo) UpdateInstanceQRCode(ctx context.Context, id string, qr string) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE whatsapp_instances SET qr_code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		qr, id))
}

func (r *instancesRepo) UpdateInstancePhone(ctx context.Context, id string, phone string) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE whatsapp_instances SET phone = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		phone, id))
}

func (r *instancesRepo) DeleteInstance(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM whatsapp_instances WHERE id = ?`, id))
}
