package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/pkg/cryptox"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvitePending    = errors.New("a pending invite already exists for this email")
	ErrInviteNotFound   = errors.New("invite not found")
	ErrInviteNotPending = errors.New("invite is no longer pending")
	ErrInvalidInvite    = errors.New("invite is invalid or expired")
	ErrEmailMismatch    = errors.New("invite was issued to a different email")
	ErrUserExists       = errors.New("a user with this email is linked to another identity")
)

// InviteMail is what the mailer needs to notify an invitee.
type InviteMail struct {
	Email     string
	GroupName string
	AcceptURL string
	ExpiresAt time.Time
}

// Mailer delivers invite notifications.
type Mailer interface {
	SendInvite(ctx context.Context, m InviteMail) error
}

// LogMailer writes invites to the log instead of sending them.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendInvite(_ context.Context, msg InviteMail) error {
	m.Logger.Info("invite email",
		slog.String("email", msg.Email),
		slog.String("group", msg.GroupName),
		slog.String("accept_url", msg.AcceptURL),
		slog.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}

// Identity is the authenticated external identity redeeming an invite.
type Identity struct {
	AuthID    string
	Email     string
	Name      string
	AvatarURL string
}

// CreatedInvite is returned once, right after creation. Token is the only
// copy of the raw token.
type CreatedInvite struct {
	Invite    domain.Invite
	Token     string
	AcceptURL string
	EmailSent bool
}

// InvitePreview is what an unauthenticated visitor may learn about a token.
type InvitePreview struct {
	Email     string
	GroupName string
	ExpiresAt time.Time
}

type InviteService struct {
	Store       store.Store
	Permissions *PermissionService
	Mailer      Mailer
	AppBaseURL  string
	Now         func() time.Time
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", ErrInvalidEmail
	}
	return raw, nil
}

func (s *InviteService) acceptURL(token string) string {
	return strings.TrimRight(s.AppBaseURL, "/") + "/convite?token=" + url.QueryEscape(token)
}

// Create issues an invite for email into groupID, or the default group when
// groupID is empty.
func (s *InviteService) Create(ctx context.Context, actorID, email, groupID string) (CreatedInvite, error) {
	log := slogx.FromContext(ctx)
	now := nowOr(s.Now)

	// 1. Validate email
	email, err := normalizeEmail(email)
	if err != nil {
		return CreatedInvite{}, err
	}

	// 2. One pending invite per email; stale ones are expired first
	pending, err := s.Store.Invites().GetPendingInviteByEmail(ctx, email)
	switch {
	case err == nil && pending.Redeemable(now):
		return CreatedInvite{}, ErrInvitePending
	case err == nil:
		if err := s.Store.Invites().MarkInviteExpired(ctx, pending.ID); err != nil {
			return CreatedInvite{}, err
		}
	case !errors.Is(err, store.ErrNotFound):
		return CreatedInvite{}, err
	}

	// 3. Resolve target group
	var group domain.Group
	if groupID == "" {
		group, err = s.Store.Groups().GetDefaultGroup(ctx)
	} else {
		group, err = s.Store.Groups().GetGroupByID(ctx, groupID)
	}
	if errors.Is(err, store.ErrNotFound) {
		return CreatedInvite{}, ErrGroupNotFound
	}
	if err != nil {
		return CreatedInvite{}, err
	}

	// 4. Generate the token and keep only its fingerprint
	token, tokenHash, err := cryptox.NewSecretToken()
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return CreatedInvite{}, err
	}

	inv := domain.Invite{
		ID:        idx.New().String(),
		Email:     email,
		GroupID:   group.ID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(domain.InviteTTL),
		Status:    domain.InvitePending,
	}
	if actorID != "" {
		inv.InvitedBy = &actorID
	}

	if err := s.Store.Invites().CreateInvite(ctx, inv); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return CreatedInvite{}, ErrInvitePending
		}
		log.Error("failed to create invite", slog.String("email", email), slog.Any("error", err))
		return CreatedInvite{}, err
	}

	// 5. Notify; a delivery failure keeps the invite
	out := CreatedInvite{Invite: inv, Token: token, AcceptURL: s.acceptURL(token), EmailSent: true}
	if s.Mailer != nil {
		err = s.Mailer.SendInvite(ctx, InviteMail{
			Email:     email,
			GroupName: group.Name,
			AcceptURL: out.AcceptURL,
			ExpiresAt: inv.ExpiresAt,
		})
		if err != nil {
			log.Warn("invite email failed", slog.String("invite_id", inv.ID), slog.Any("error", err))
			out.EmailSent = false
		}
	} else {
		out.EmailSent = false
	}

	log.Info("invite created",
		slog.String("invite_id", inv.ID),
		slog.String("group_id", group.ID),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return out, nil
}

func (s *InviteService) List(ctx context.Context) ([]domain.Invite, error) {
	return s.Store.Invites().ListInvites(ctx)
}

// Cancel deletes a pending invite.
func (s *InviteService) Cancel(ctx context.Context, id string) error {
	inv, err := s.Store.Invites().GetInviteByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInviteNotFound
	}
	if err != nil {
		return err
	}
	if inv.Status != domain.InvitePending {
		return ErrInviteNotPending
	}
	if err := s.Store.Invites().DeleteInvite(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	slogx.FromContext(ctx).Info("invite cancelled", slog.String("invite_id", id))
	return nil
}

// lookup returns the redeemable invite for token, lazily expiring a stale one.
func (s *InviteService) lookup(ctx context.Context, token string) (domain.Invite, error) {
	if token == "" {
		return domain.Invite{}, ErrInvalidInvite
	}
	inv, err := s.Store.Invites().GetInviteByTokenHash(ctx, cryptox.Fingerprint([]byte(token)))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Invite{}, ErrInvalidInvite
	}
	if err != nil {
		return domain.Invite{}, err
	}

	if inv.Redeemable(nowOr(s.Now)) {
		return inv, nil
	}
	if inv.Status == domain.InvitePending {
		if err := s.Store.Invites().MarkInviteExpired(ctx, inv.ID); err != nil {
			slogx.FromContext(ctx).Warn("failed to mark invite expired",
				slog.String("invite_id", inv.ID),
				slog.Any("error", err),
			)
		}
	}
	return domain.Invite{}, ErrInvalidInvite
}

// Validate checks a token without consuming it.
func (s *InviteService) Validate(ctx context.Context, token string) (InvitePreview, error) {
	inv, err := s.lookup(ctx, token)
	if err != nil {
		return InvitePreview{}, err
	}
	g, err := s.Store.Groups().GetGroupByID(ctx, inv.GroupID)
	if err != nil {
		return InvitePreview{}, fmt.Errorf("load invite group: %w", err)
	}
	return InvitePreview{Email: inv.Email, GroupName: g.Name, ExpiresAt: inv.ExpiresAt}, nil
}

// Accept redeems token for the identity, creating the application user or
// moving it into the invite's group.
func (s *InviteService) Accept(ctx context.Context, id Identity, token string) (domain.User, error) {
	log := slogx.FromContext(ctx)
	now := nowOr(s.Now)

	// 1. Token must be redeemable
	inv, err := s.lookup(ctx, token)
	if err != nil {
		return domain.User{}, err
	}

	// 2. Identity must own the invited address
	if !strings.EqualFold(strings.TrimSpace(id.Email), inv.Email) {
		log.Warn("invite accepted by a different email", slog.String("invite_id", inv.ID))
		return domain.User{}, ErrEmailMismatch
	}

	// 3. Consume the invite and link the user atomically
	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invites().MarkInviteAccepted(ctx, inv.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidInvite
			}
			return err
		}

		groupID := inv.GroupID
		existing, err := tx.Users().GetUserByAuthID(ctx, id.AuthID)
		switch {
		case err == nil:
			next := existing
			next.GroupID = &groupID
			next.Status = domain.UserActive
			if err := checkLastAdmin(ctx, tx, existing, next); err != nil {
				return err
			}
			if err := tx.Users().UpdateUser(ctx, next); err != nil {
				return err
			}
			user = next
			return nil
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		if _, err := tx.Users().GetUserByEmail(ctx, inv.Email); err == nil {
			return ErrUserExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		name := strings.TrimSpace(id.Name)
		if name == "" {
			name = inv.Email[:strings.IndexByte(inv.Email, '@')]
		}
		user = domain.User{
			ID:        idx.New().String(),
			AuthID:    id.AuthID,
			Email:     inv.Email,
			Name:      name,
			AvatarURL: id.AvatarURL,
			GroupID:   &groupID,
			Status:    domain.UserActive,
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUserExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			log.Error("failed to accept invite", slog.String("invite_id", inv.ID), slog.Any("error", err))
		}
		return domain.User{}, err
	}

	// 4. The user's access changed
	s.Permissions.Invalidate(ctx, user.ID)

	log.Info("invite accepted",
		slog.String("invite_id", inv.ID),
		slog.String("user_id", user.ID),
		slog.String("group_id", inv.GroupID),
	)
	return user, nil
}
