package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidClient  = errors.New("client name is required")
)

type ClientService struct {
	Store store.Store
	Match *MatchService
}

type ClientInput struct {
	Name     string
	Email    string
	Phone    string
	Document string
	Notes    string
}

func (in ClientInput) apply(c *domain.Client) error {
	c.Name = strings.TrimSpace(in.Name)
	if c.Name == "" {
		return ErrInvalidClient
	}
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = NormalizePhone(in.Phone)
	c.Document = strings.TrimSpace(in.Document)
	c.Notes = in.Notes
	return nil
}

func (s *ClientService) List(ctx context.Context, search string, limit, offset int) ([]domain.Client, int, error) {
	if offset < 0 {
		offset = 0
	}
	return s.Store.Clients().ListClients(ctx, strings.TrimSpace(search), clampLimit(limit, DefaultPageSize, MaxPageSize), offset)
}

func (s *ClientService) Get(ctx context.Context, id string) (domain.Client, error) {
	c, err := s.Store.Clients().GetClientByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Client{}, ErrClientNotFound
	}
	return c, err
}

func (s *ClientService) Create(ctx context.Context, in ClientInput) (domain.Client, error) {
	c := domain.Client{ID: idx.New().String()}
	if err := in.apply(&c); err != nil {
		return domain.Client{}, err
	}
	if err := s.Store.Clients().CreateClient(ctx, c); err != nil {
		slogx.FromContext(ctx).Error("failed to create client", slog.Any("error", err))
		return domain.Client{}, err
	}
	slogx.FromContext(ctx).Info("client created", slog.String("client_id", c.ID))
	s.rematch(ctx, c)
	return c, nil
}

func (s *ClientService) Update(ctx context.Context, id string, in ClientInput) (domain.Client, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return domain.Client{}, err
	}
	if err := in.apply(&c); err != nil {
		return domain.Client{}, err
	}
	if err := s.Store.Clients().UpdateClient(ctx, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrClientNotFound
		}
		return domain.Client{}, err
	}
	s.rematch(ctx, c)
	return c, nil
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	err := s.Store.Clients().DeleteClient(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrClientNotFound
	}
	if err == nil {
		slogx.FromContext(ctx).Info("client deleted", slog.String("client_id", id))
	}
	return err
}

// rematch gives unlinked contacts a chance to pick up a new phone number.
func (s *ClientService) rematch(ctx context.Context, c domain.Client) {
	if s.Match == nil || c.Phone == "" {
		return
	}
	if _, err := s.Match.MatchUnlinked(ctx, 500); err != nil {
		slogx.FromContext(ctx).Warn("client rematch failed", slog.String("client_id", c.ID), slog.Any("error", err))
	}
}
