package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserInactive    = errors.New("user is inactive")
	ErrGroupNotFound   = errors.New("group not found")
	ErrLastAdmin       = errors.New("cannot remove the last active administrator")
	ErrInvalidStatus   = errors.New("invalid user status")
	ErrInvalidUserName = errors.New("user name must not be empty")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type UserService struct {
	Store       store.Store
	Permissions *PermissionService
	Now         func() time.Time
}

// Profile is the current user's view of themselves.
type Profile struct {
	User        domain.User
	Group       *domain.Group
	Permissions access.Map
}

// UserUpdate carries the fields an admin may change. Nil leaves a field as is.
// SetGroup distinguishes "unassign" (GroupID nil) from "unchanged".
type UserUpdate struct {
	Name     *string
	SetGroup bool
	GroupID  *string
	Status   *domain.UserStatus
}

// Current maps an external identity onto an active application user.
func (s *UserService) Current(ctx context.Context, authID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByAuthID(ctx, authID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	if !u.Active() {
		return u, ErrUserInactive
	}
	return u, nil
}

// Me returns the user with its group and resolved permissions, and records
// the access.
func (s *UserService) Me(ctx context.Context, userID string) (Profile, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Profile{}, ErrUserNotFound
	}
	if err != nil {
		return Profile{}, err
	}

	now := nowOr(s.Now)
	if err := s.Store.Users().TouchLastAccess(ctx, u.ID, now); err != nil {
		log.Warn("failed to record last access", slog.String("user_id", u.ID), slog.Any("error", err))
	} else {
		u.LastAccessAt = &now
	}

	p := Profile{User: u, Permissions: s.Permissions.Resolve(ctx, u.ID)}
	if u.GroupID != nil {
		g, err := s.Store.Groups().GetGroupByID(ctx, *u.GroupID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return Profile{}, err
		}
		if err == nil {
			p.Group = &g
		}
	}
	return p, nil
}

// List returns a page of users and the total count.
func (s *UserService) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	f.Limit = clampLimit(f.Limit, DefaultPageSize, MaxPageSize)
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.TrimSpace(f.Search)
	return s.Store.Users().ListUsers(ctx, f)
}

// Update applies an admin edit to a user. Moving or deactivating the only
// active Administrador member is refused.
func (s *UserService) Update(ctx context.Context, actorID, id string, in UserUpdate) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	if in.Status != nil && !in.Status.Valid() {
		return domain.User{}, ErrInvalidStatus
	}
	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.User{}, ErrInvalidUserName
		}
	}

	var (
		updated     domain.User
		accessMoved bool
	)

	// 2. Apply the change in one transaction so the admin count cannot race
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		next := u
		if in.Name != nil {
			next.Name = name
		}
		if in.Status != nil {
			next.Status = *in.Status
		}
		if in.SetGroup {
			next.GroupID = in.GroupID
			if in.GroupID != nil {
				if _, err := tx.Groups().GetGroupByID(ctx, *in.GroupID); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return ErrGroupNotFound
					}
					return err
				}
			}
		}

		// 3. Last-admin protection
		if err := checkLastAdmin(ctx, tx, u, next); err != nil {
			return err
		}

		if err := tx.Users().UpdateUser(ctx, next); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		accessMoved = !sameGroup(u.GroupID, next.GroupID) || u.Status != next.Status
		updated = next
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			log.Error("failed to update user", slog.String("user_id", id), slog.Any("error", err))
		}
		return domain.User{}, err
	}

	// 4. Drop cached permissions after commit
	if accessMoved {
		s.Permissions.Invalidate(ctx, updated.ID)
	}

	log.Info("user updated",
		slog.String("user_id", updated.ID),
		slog.String("actor_id", actorID),
		slog.String("status", string(updated.Status)),
	)
	return updated, nil
}

func checkLastAdmin(ctx context.Context, tx store.Tx, before, after domain.User) error {
	if before.GroupID == nil || !before.Active() {
		return nil
	}
	g, err := tx.Groups().GetGroupByID(ctx, *before.GroupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if !g.IsAdmin() {
		return nil
	}

	stillAdmin := after.Active() && sameGroup(before.GroupID, after.GroupID)
	if stillAdmin {
		return nil
	}

	n, err := tx.Users().CountActiveUsersByGroup(ctx, g.ID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func sameGroup(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func clampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
