package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

var (
	ErrBootstrapDisabled     = errors.New("bootstrap is disabled")
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrInvalidBootstrap      = errors.New("auth_id, email and name are required")
)

// DefaultGroupName is the group new invites land in after bootstrap.
const DefaultGroupName = "Colaborador"

type BootstrapService struct {
	Store store.Store
	Token string
}

// BootstrapData describes the first administrator.
type BootstrapData struct {
	AuthID string
	Email  string
	Name   string
}

// BootstrapResult lists what was created.
type BootstrapResult struct {
	Admin        domain.User
	AdminGroup   domain.Group
	DefaultGroup domain.Group
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap seeds the Administrador and Colaborador groups plus the first
// admin user. It only runs on an empty system.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req BootstrapData) (BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	// 1. Only when configured
	if s.Token == "" {
		return BootstrapResult{}, ErrBootstrapDisabled
	}

	// 2. Validate provided token
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return BootstrapResult{}, ErrBootstrapUnauthorized
	}

	// 3. Check if already bootstrapped
	if done, err := s.IsBootstrapped(ctx); err != nil {
		return BootstrapResult{}, err
	} else if done {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return BootstrapResult{}, ErrBootstrapAlready
	}

	email, err := normalizeEmail(req.Email)
	if err != nil || strings.TrimSpace(req.AuthID) == "" || strings.TrimSpace(req.Name) == "" {
		return BootstrapResult{}, ErrInvalidBootstrap
	}

	adminID := idx.New().String()
	res := BootstrapResult{
		AdminGroup: domain.Group{
			ID:          idx.New().String(),
			Name:        domain.AdminGroupName,
			Description: "Acesso total ao sistema",
		},
		DefaultGroup: domain.Group{
			ID:          idx.New().String(),
			Name:        DefaultGroupName,
			Description: "Grupo padrão para novos usuários",
			IsDefault:   true,
		},
	}
	res.Admin = domain.User{
		ID:      adminID,
		AuthID:  strings.TrimSpace(req.AuthID),
		Email:   email,
		Name:    strings.TrimSpace(req.Name),
		GroupID: &res.AdminGroup.ID,
		Status:  domain.UserActive,
	}

	// 4. Create groups, permissions and admin in a transaction
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		adminGroup, defaultGroup := res.AdminGroup, res.DefaultGroup

		if err := tx.Groups().CreateGroup(ctx, adminGroup); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrBootstrapAlready
			}
			return err
		}
		if err := tx.Groups().CreateGroup(ctx, defaultGroup); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrBootstrapAlready
			}
			return err
		}

		full := make([]domain.PermissionEntry, 0, len(access.Sections()))
		for _, sec := range access.Sections() {
			full = append(full, domain.PermissionEntry{
				GroupID:    adminGroup.ID,
				Section:    sec,
				Permission: access.FullPermission(),
			})
		}
		if err := tx.Permissions().ReplaceForGroup(ctx, adminGroup.ID, full); err != nil {
			return err
		}
		if err := tx.Permissions().ReplaceForGroup(ctx, defaultGroup.ID, []domain.PermissionEntry{{
			GroupID:    defaultGroup.ID,
			Section:    access.Dashboard,
			Permission: access.Permission{View: true},
		}}); err != nil {
			return err
		}

		return tx.Users().CreateUser(ctx, res.Admin)
	})
	if err != nil {
		if !isDomainError(err) {
			l.Error("bootstrap failed", slog.Any("error", err))
		}
		return BootstrapResult{}, err
	}

	l.Info("system bootstrapped",
		slog.String("admin_user_id", res.Admin.ID),
		slog.String("admin_group_id", res.AdminGroup.ID),
	)
	return res, nil
}
