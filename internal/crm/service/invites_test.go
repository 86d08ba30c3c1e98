package service_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	err  error
	sent []service.InviteMail
}

func (m *fakeMailer) SendInvite(_ context.Context, msg service.InviteMail) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newInviteService(f *fixture, mailer service.Mailer) *service.InviteService {
	return &service.InviteService{
		Store:       f.store,
		Permissions: f.perms,
		Mailer:      mailer,
		AppBaseURL:  "https://app.avaliatec.com.br/",
		Now:         f.clock.Now,
	}
}

func tokenFrom(t *testing.T, acceptURL string) string {
	t.Helper()
	u, err := url.Parse(acceptURL)
	require.NoError(t, err)
	require.Equal(t, "/convite", u.Path)
	return u.Query().Get("token")
}

func TestInviteLifecycle(t *testing.T) {
	f := newFixture(t)
	mailer := &fakeMailer{}
	svc := newInviteService(f, mailer)
	ctx := context.Background()

	admins := f.seedGroup(t, domain.AdminGroupName, access.Full())
	admin := f.seedUser(t, "admin@avaliatec.com.br", &admins.ID)
	team := f.seedGroup(t, "Atendimento", access.Map{access.Atendimento: {View: true}})

	created, err := svc.Create(ctx, admin.ID, "  Nova.Pessoa@Avaliatec.com.br ", team.ID)
	require.NoError(t, err)
	require.True(t, created.EmailSent)
	require.Equal(t, "nova.pessoa@avaliatec.com.br", created.Invite.Email)
	require.True(t, f.clock.Now().Add(7*24*time.Hour).Equal(created.Invite.ExpiresAt))
	require.NotEqual(t, created.Token, created.Invite.TokenHash)
	require.Len(t, mailer.sent, 1)
	require.Equal(t, created.Token, tokenFrom(t, mailer.sent[0].AcceptURL))
	require.True(t, strings.HasPrefix(created.AcceptURL, "https://app.avaliatec.com.br/convite?"))

	preview, err := svc.Validate(ctx, created.Token)
	require.NoError(t, err)
	require.Equal(t, "Atendimento", preview.GroupName)

	id := service.Identity{AuthID: "auth|nova", Email: "NOVA.PESSOA@avaliatec.com.br", Name: "Nova Pessoa"}
	user, err := svc.Accept(ctx, id, created.Token)
	require.NoError(t, err)
	require.Equal(t, team.ID, *user.GroupID)
	require.Equal(t, domain.UserActive, user.Status)
	require.Equal(t, "nova.pessoa@avaliatec.com.br", user.Email)
	require.Contains(t, f.notifier.notified(), user.ID)
	require.True(t, f.perms.Has(ctx, user.ID, access.Atendimento, access.ActionView))

	// A consumed token is dead.
	_, err = svc.Accept(ctx, id, created.Token)
	require.ErrorIs(t, err, service.ErrInvalidInvite)
	_, err = svc.Validate(ctx, created.Token)
	require.ErrorIs(t, err, service.ErrInvalidInvite)
}

func TestInviteExpiresAfterSevenDays(t *testing.T) {
	f := newFixture(t)
	svc := newInviteService(f, &fakeMailer{})
	ctx := context.Background()

	g := f.seedGroup(t, "Colaborador", access.Map{access.Dashboard: {View: true}})

	created, err := svc.Create(ctx, "", "late@avaliatec.com.br", g.ID)
	require.NoError(t, err)

	f.clock.Advance(7*24*time.Hour + time.Second)

	_, err = svc.Accept(ctx, service.Identity{AuthID: "auth|late", Email: "late@avaliatec.com.br"}, created.Token)
	require.ErrorIs(t, err, service.ErrInvalidInvite)

	stored, err := f.store.Invites().GetInviteByID(ctx, created.Invite.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InviteExpired, stored.Status)

	// The address is free for a fresh invite.
	_, err = svc.Create(ctx, "", "late@avaliatec.com.br", g.ID)
	require.NoError(t, err)
}

func TestInviteCreateRules(t *testing.T) {
	f := newFixture(t)
	svc := newInviteService(f, &fakeMailer{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "bia@avaliatec.com.br", "")
	require.ErrorIs(t, err, service.ErrGroupNotFound)

	def := f.seedGroup(t, "Colaborador", nil)
	require.NoError(t, f.store.Groups().UpdateGroup(ctx, domain.Group{ID: def.ID, Name: def.Name, IsDefault: true}))

	created, err := svc.Create(ctx, "", "bia@avaliatec.com.br", "")
	require.NoError(t, err)
	require.Equal(t, def.ID, created.Invite.GroupID)

	_, err = svc.Create(ctx, "", "BIA@avaliatec.com.br", "")
	require.ErrorIs(t, err, service.ErrInvitePending)

	_, err = svc.Create(ctx, "", "not-an-email", "")
	require.ErrorIs(t, err, service.ErrInvalidEmail)

	_, err = svc.Create(ctx, "", "x@avaliatec.com.br", "missing")
	require.ErrorIs(t, err, service.ErrGroupNotFound)
}

func TestInviteMailFailureKeepsInvite(t *testing.T) {
	f := newFixture(t)
	svc := newInviteService(f, &fakeMailer{err: errors.New("smtp down")})
	ctx := context.Background()

	g := f.seedGroup(t, "Colaborador", nil)
	created, err := svc.Create(ctx, "", "bia@avaliatec.com.br", g.ID)
	require.NoError(t, err)
	require.False(t, created.EmailSent)

	_, err = svc.Validate(ctx, created.Token)
	require.NoError(t, err)
}

func TestInviteAcceptRules(t *testing.T) {
	f := newFixture(t)
	svc := newInviteService(f, &fakeMailer{})
	ctx := context.Background()

	g := f.seedGroup(t, "Colaborador", nil)
	created, err := svc.Create(ctx, "", "bia@avaliatec.com.br", g.ID)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, service.Identity{AuthID: "auth|eve", Email: "eve@avaliatec.com.br"}, created.Token)
	require.ErrorIs(t, err, service.ErrEmailMismatch)

	// The email already belongs to another identity.
	f.seedUser(t, "bia@avaliatec.com.br", nil)
	_, err = svc.Accept(ctx, service.Identity{AuthID: "auth|other", Email: "bia@avaliatec.com.br"}, created.Token)
	require.ErrorIs(t, err, service.ErrUserExists)

	// The failed transaction left the invite pending.
	stored, err := f.store.Invites().GetInviteByID(ctx, created.Invite.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitePending, stored.Status)

	// The owning identity moves into the group and is reactivated.
	user, err := svc.Accept(ctx, service.Identity{AuthID: "auth|bia@avaliatec.com.br", Email: "bia@avaliatec.com.br"}, created.Token)
	require.NoError(t, err)
	require.Equal(t, g.ID, *user.GroupID)

	_, err = svc.Accept(ctx, service.Identity{AuthID: "x", Email: "x@y.z"}, "garbage")
	require.ErrorIs(t, err, service.ErrInvalidInvite)
}

func TestAcceptKeepsLastAdministrator(t *testing.T) {
	f := newFixture(t)
	svc := newInviteService(f, &fakeMailer{})
	ctx := context.Background()

	admins := f.seedGroup(t, domain.AdminGroupName, access.Full())
	admin := f.seedUser(t, "admin@avaliatec.com.br", &admins.ID)
	team := f.seedGroup(t, "Atendimento", access.Map{access.Atendimento: {View: true}})

	created, err := svc.Create(ctx, admin.ID, admin.Email, team.ID)
	require.NoError(t, err)

	id := service.Identity{AuthID: admin.AuthID, Email: admin.Email}
	_, err = svc.Accept(ctx, id, created.Token)
	require.ErrorIs(t, err, service.ErrLastAdmin)

	stored, err := f.store.Users().GetUserByID(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, admins.ID, *stored.GroupID)

	n, err := f.store.Users().CountActiveUsersByGroup(ctx, admins.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	inv, err := f.store.Invites().GetInviteByID(ctx, created.Invite.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitePending, inv.Status)

	// With a second administrator the move is allowed.
	f.seedUser(t, "outro.admin@avaliatec.com.br", &admins.ID)
	user, err := svc.Accept(ctx, id, created.Token)
	require.NoError(t, err)
	require.Equal(t, team.ID, *user.GroupID)
}

func TestPendingInviteWinsOverMissingGroup(t *testing.T) {
	f := newFixture(t)
	svc := newInviteService(f, &fakeMailer{})
	ctx := context.Background()

	def := f.seedGroup(t, "Colaborador", nil)
	require.NoError(t, f.store.Groups().UpdateGroup(ctx, domain.Group{ID: def.ID, Name: def.Name, IsDefault: true}))

	_, err := svc.Create(ctx, "", "bia@avaliatec.com.br", "")
	require.NoError(t, err)

	require.NoError(t, f.store.Groups().UpdateGroup(ctx, domain.Group{ID: def.ID, Name: def.Name}))

	_, err = svc.Create(ctx, "", "bia@avaliatec.com.br", "")
	require.ErrorIs(t, err, service.ErrInvitePending)

	_, err = svc.Create(ctx, "", "outra@avaliatec.com.br", "")
	require.ErrorIs(t, err, service.ErrGroupNotFound)
}

func TestCancelInvite(t *testing.T) {
	f := newFixture(t)
	svc := newInviteService(f, &fakeMailer{})
	ctx := context.Background()

	g := f.seedGroup(t, "Colaborador", nil)
	created, err := svc.Create(ctx, "", "bia@avaliatec.com.br", g.ID)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, service.Identity{AuthID: "auth|bia", Email: "bia@avaliatec.com.br"}, created.Token)
	require.NoError(t, err)
	require.ErrorIs(t, svc.Cancel(ctx, created.Invite.ID), service.ErrInviteNotPending)

	other, err := svc.Create(ctx, "", "caio@avaliatec.com.br", g.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, other.Invite.ID))
	require.ErrorIs(t, svc.Cancel(ctx, other.Invite.ID), service.ErrInviteNotFound)

	invites, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, invites, 1)
}
