package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

var (
	ErrInvalidNameLength  = errors.New("group name must be between 3 and 50 characters")
	ErrNameExists         = errors.New("name already in use")
	ErrProtectedGroup     = errors.New("the administrator group cannot be renamed or deleted")
	ErrGroupHasUsers      = errors.New("group still has users assigned")
	ErrInvalidSection     = errors.New("invalid section")
	ErrNoSectionsSelected = errors.New("at least one section must be viewable")
)

// GroupHasUsersError carries the member count that blocked a delete.
type GroupHasUsersError struct {
	Count int
}

func (e *GroupHasUsersError) Error() string {
	return fmt.Sprintf("group still has %d users assigned", e.Count)
}

func (e *GroupHasUsersError) Is(target error) bool { return target == ErrGroupHasUsers }

type GroupService struct {
	Store       store.Store
	Permissions *PermissionService
}

// GroupInput is the editable part of a group.
type GroupInput struct {
	Name        string
	Description string
	IsDefault   bool
}

// PermissionInput is one row of a permission save request. Section is the
// raw key so unknown sections can be reported.
type PermissionInput struct {
	SectionKey string
	access.Permission
}

func (s *GroupService) List(ctx context.Context) ([]domain.GroupSummary, error) {
	return s.Store.Groups().ListGroups(ctx)
}

func (s *GroupService) Get(ctx context.Context, id string) (domain.Group, error) {
	g, err := s.Store.Groups().GetGroupByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Group{}, ErrGroupNotFound
	}
	return g, err
}

func normalizeGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < domain.GroupNameMin || n > domain.GroupNameMax {
		return "", ErrInvalidNameLength
	}
	return name, nil
}

func (s *GroupService) Create(ctx context.Context, actorID string, in GroupInput) (domain.Group, error) {
	log := slogx.FromContext(ctx)

	name, err := normalizeGroupName(in.Name)
	if err != nil {
		return domain.Group{}, err
	}

	g := domain.Group{
		ID:          idx.New().String(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		IsDefault:   in.IsDefault,
	}
	if actorID != "" {
		g.CreatedBy = &actorID
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Groups().CreateGroup(ctx, g); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrNameExists
			}
			return err
		}
		if g.IsDefault {
			return tx.Groups().ClearDefault(ctx, g.ID)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNameExists) {
			log.Error("failed to create group", slog.String("name", name), slog.Any("error", err))
		}
		return domain.Group{}, err
	}

	log.Info("group created", slog.String("group_id", g.ID), slog.String("name", g.Name))
	return g, nil
}

func (s *GroupService) Update(ctx context.Context, id string, in GroupInput) (domain.Group, error) {
	log := slogx.FromContext(ctx)

	name, err := normalizeGroupName(in.Name)
	if err != nil {
		return domain.Group{}, err
	}

	var updated domain.Group
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		g, err := tx.Groups().GetGroupByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		}
		if err != nil {
			return err
		}
		if g.IsAdmin() && name != g.Name {
			return ErrProtectedGroup
		}

		g.Name = name
		g.Description = strings.TrimSpace(in.Description)
		g.IsDefault = in.IsDefault

		if err := tx.Groups().UpdateGroup(ctx, g); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrNameExists
			}
			return err
		}
		if g.IsDefault {
			if err := tx.Groups().ClearDefault(ctx, g.ID); err != nil {
				return err
			}
		}
		updated = g
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			log.Error("failed to update group", slog.String("group_id", id), slog.Any("error", err))
		}
		return domain.Group{}, err
	}

	log.Info("group updated", slog.String("group_id", id))
	return updated, nil
}

// Delete removes a group that no user references.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		g, err := tx.Groups().GetGroupByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		}
		if err != nil {
			return err
		}
		if g.IsAdmin() {
			return ErrProtectedGroup
		}

		n, err := tx.Users().CountUsersByGroup(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &GroupHasUsersError{Count: n}
		}
		return tx.Groups().DeleteGroup(ctx, id)
	})
	if err != nil {
		if !isDomainError(err) {
			log.Error("failed to delete group", slog.String("group_id", id), slog.Any("error", err))
		}
		return err
	}

	log.Info("group deleted", slog.String("group_id", id))
	return nil
}

// PermissionMatrix returns the full matrix of the group, one entry per section.
func (s *GroupService) PermissionMatrix(ctx context.Context, id string) (access.Map, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.Store.Permissions().ListPermissionsByGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapFromEntries(entries), nil
}

// SavePermissions replaces the group's matrix. Write flags promote view, rows
// left without view are dropped, and an empty result is refused with the
// previous rows kept.
func (s *GroupService) SavePermissions(ctx context.Context, id string, in []PermissionInput) (access.Map, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate and normalise
	bySection := make(map[access.Section]access.Permission, len(in))
	order := make([]access.Section, 0, len(in))
	for _, row := range in {
		sec, err := access.ParseSection(row.SectionKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSection, row.SectionKey)
		}
		p := row.Permission.Normalize()
		if !p.View {
			continue
		}
		if _, seen := bySection[sec]; !seen {
			order = append(order, sec)
		}
		bySection[sec] = p
	}
	if len(bySection) == 0 {
		return nil, ErrNoSectionsSelected
	}

	entries := make([]domain.PermissionEntry, 0, len(order))
	for _, sec := range order {
		entries = append(entries, domain.PermissionEntry{GroupID: id, Section: sec, Permission: bySection[sec]})
	}

	// 2. Replace atomically
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Groups().GetGroupByID(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrGroupNotFound
			}
			return err
		}
		return tx.Permissions().ReplaceForGroup(ctx, id, entries)
	})
	if err != nil {
		if !isDomainError(err) {
			log.Error("failed to save group permissions", slog.String("group_id", id), slog.Any("error", err))
		}
		return nil, err
	}

	// 3. Members reload on their next request
	s.Permissions.InvalidateGroup(ctx, id)

	log.Info("group permissions saved", slog.String("group_id", id), slog.Int("sections", len(entries)))
	return mapFromEntries(entries), nil
}
