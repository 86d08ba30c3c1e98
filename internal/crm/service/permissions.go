package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/cache"
	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

const DefaultPermissionCacheTTL = 5 * time.Minute

const (
	permissionKeyPrefix  = "perm:"
	generationKeyPrefix  = "permgen:"
	generationMinimumTTL = 24 * time.Hour
)

// PermissionService resolves a user's effective permission map from their
// group's rows. Resolution failures yield an empty map, never an error.
//
// When Generations is set, cached maps are keyed by the user's current
// generation and Invalidate moves the generation forward, so a map loaded
// before an invalidation can never be read after it.
type PermissionService struct {
	Store       store.Store
	Cache       cache.Cache[access.Map]
	Generations cache.Cache[string]
	TTL         time.Duration
	Notifier    Notifier
}

func permissionKey(userID, gen string) string {
	if gen == "" {
		return permissionKeyPrefix + userID
	}
	return permissionKeyPrefix + userID + ":" + gen
}

func generationKey(userID string) string { return generationKeyPrefix + userID }

// generation returns the user's current generation, "" when none was issued.
func (s *PermissionService) generation(ctx context.Context, userID string) (string, error) {
	if s.Generations == nil {
		return "", nil
	}
	gen, _, err := s.Generations.Get(ctx, generationKey(userID))
	return gen, err
}

// Outlives every map cached under an older generation.
func (s *PermissionService) generationTTL() time.Duration {
	return max(generationMinimumTTL, 2*s.ttl())
}

func (s *PermissionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultPermissionCacheTTL
	}
	return s.TTL
}

func (s *PermissionService) notifier() Notifier {
	if s.Notifier == nil {
		return nopNotifier{}
	}
	return s.Notifier
}

// Resolve returns the permission map for userID with every section present.
func (s *PermissionService) Resolve(ctx context.Context, userID string) access.Map {
	log := slogx.FromContext(ctx)

	gen, err := s.generation(ctx, userID)
	if err != nil {
		log.Warn("permission generation read failed", slog.String("user_id", userID), slog.Any("error", err))
		m, err := s.load(ctx, userID)
		if err != nil {
			log.Error("failed to resolve permissions, denying", slog.String("user_id", userID), slog.Any("error", err))
			return access.Empty()
		}
		return m
	}

	if s.Cache != nil {
		m, ok, err := s.Cache.Get(ctx, permissionKey(userID, gen))
		if err != nil {
			log.Warn("permission cache read failed", slog.String("user_id", userID), slog.Any("error", err))
		} else if ok {
			return m
		}
	}

	m, err := s.load(ctx, userID)
	if err != nil {
		log.Error("failed to resolve permissions, denying",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return access.Empty()
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, permissionKey(userID, gen), m, s.ttl()); err != nil {
			log.Warn("permission cache write failed", slog.String("user_id", userID), slog.Any("error", err))
		}
	}
	return m
}

func (s *PermissionService) load(ctx context.Context, userID string) (access.Map, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.GroupID == nil {
		return access.Empty(), nil
	}

	entries, err := s.Store.Permissions().ListPermissionsByGroup(ctx, *user.GroupID)
	if err != nil {
		return nil, err
	}
	return mapFromEntries(entries), nil
}

func mapFromEntries(entries []domain.PermissionEntry) access.Map {
	m := access.Empty()
	for _, e := range entries {
		if e.Section.Valid() {
			m[e.Section] = e.Permission
		}
	}
	return m
}

// Has is a convenience for a single check.
func (s *PermissionService) Has(ctx context.Context, userID string, section access.Section, action access.Action) bool {
	return s.Resolve(ctx, userID).Has(section, action)
}

// IsAdmin reports whether the user belongs to the Administrador group.
func (s *PermissionService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.GroupID == nil {
		return false, nil
	}
	g, err := s.Store.Groups().GetGroupByID(ctx, *user.GroupID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return g.IsAdmin(), nil
}

// Invalidate drops the cached maps of the given users and tells their open
// sessions to reload.
func (s *PermissionService) Invalidate(ctx context.Context, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	log := slogx.FromContext(ctx)

	if s.Generations != nil {
		gen := idx.New().String()
		for _, id := range userIDs {
			if err := s.Generations.Set(ctx, generationKey(id), gen, s.generationTTL()); err != nil {
				log.Error("permission generation bump failed", slog.String("user_id", id), slog.Any("error", err))
			}
		}
	}

	if s.Cache != nil {
		keys := make([]string, 0, len(userIDs))
		for _, id := range userIDs {
			keys = append(keys, permissionKey(id, ""))
		}
		if err := s.Cache.Delete(ctx, keys...); err != nil {
			log.Error("permission cache invalidation failed",
				slog.Int("users", len(userIDs)),
				slog.Any("error", err),
			)
		}
	}
	s.notifier().PermissionsChanged(ctx, userIDs...)
}

// InvalidateGroup invalidates every member of the group.
func (s *PermissionService) InvalidateGroup(ctx context.Context, groupID string) {
	ids, err := s.Store.Users().ListUserIDsByGroup(ctx, groupID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list group members for invalidation",
			slog.String("group_id", groupID),
			slog.Any("error", err),
		)
		return
	}
	s.Invalidate(ctx, ids...)
}
