package service_test

import (
	"context"
	"testing"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/stretchr/testify/require"
)

func newUserService(f *fixture) *service.UserService {
	return &service.UserService{Store: f.store, Permissions: f.perms, Now: f.clock.Now}
}

func TestLastAdminCannotLeave(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()

	admins := f.seedGroup(t, domain.AdminGroupName, access.Full())
	others := f.seedGroup(t, "Colaborador", access.Map{access.Dashboard: {View: true}})
	only := f.seedUser(t, "admin@avaliatec.com.br", &admins.ID)

	inactive := domain.UserInactive
	_, err := svc.Update(ctx, only.ID, only.ID, service.UserUpdate{Status: &inactive})
	require.ErrorIs(t, err, service.ErrLastAdmin)

	_, err = svc.Update(ctx, only.ID, only.ID, service.UserUpdate{SetGroup: true, GroupID: &others.ID})
	require.ErrorIs(t, err, service.ErrLastAdmin)

	_, err = svc.Update(ctx, only.ID, only.ID, service.UserUpdate{SetGroup: true})
	require.ErrorIs(t, err, service.ErrLastAdmin)

	// Renaming keeps the admin in place.
	renamed, err := svc.Update(ctx, only.ID, only.ID, service.UserUpdate{Name: ptr("Dona Admin")})
	require.NoError(t, err)
	require.Equal(t, "Dona Admin", renamed.Name)

	second := f.seedUser(t, "admin2@avaliatec.com.br", &admins.ID)
	moved, err := svc.Update(ctx, second.ID, only.ID, service.UserUpdate{SetGroup: true, GroupID: &others.ID})
	require.NoError(t, err)
	require.Equal(t, others.ID, *moved.GroupID)
}

func TestUpdateUserInvalidatesPermissions(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()

	viewers := f.seedGroup(t, "Leitores", access.Map{access.Clientes: {View: true}})
	editors := f.seedGroup(t, "Editores", access.Map{access.Clientes: {View: true, Edit: true}})
	u := f.seedUser(t, "bia@avaliatec.com.br", &viewers.ID)

	require.False(t, f.perms.Has(ctx, u.ID, access.Clientes, access.ActionEdit))

	_, err := svc.Update(ctx, "", u.ID, service.UserUpdate{SetGroup: true, GroupID: &editors.ID})
	require.NoError(t, err)
	require.True(t, f.perms.Has(ctx, u.ID, access.Clientes, access.ActionEdit))
	require.Equal(t, []string{u.ID}, f.notifier.notified())
}

func TestUpdateUserValidation(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()

	u := f.seedUser(t, "bia@avaliatec.com.br", nil)

	_, err := svc.Update(ctx, "", u.ID, service.UserUpdate{SetGroup: true, GroupID: ptr("nope")})
	require.ErrorIs(t, err, service.ErrGroupNotFound)

	bogus := domain.UserStatus("banned")
	_, err = svc.Update(ctx, "", u.ID, service.UserUpdate{Status: &bogus})
	require.ErrorIs(t, err, service.ErrInvalidStatus)

	_, err = svc.Update(ctx, "", u.ID, service.UserUpdate{Name: ptr("  ")})
	require.ErrorIs(t, err, service.ErrInvalidUserName)

	_, err = svc.Update(ctx, "", "missing", service.UserUpdate{Name: ptr("x")})
	require.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestCurrentAndMe(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()

	g := f.seedGroup(t, "Comercial", access.Map{access.Clientes: {View: true}})
	u := f.seedUser(t, "bia@avaliatec.com.br", &g.ID)

	cur, err := svc.Current(ctx, u.AuthID)
	require.NoError(t, err)
	require.Equal(t, u.ID, cur.ID)

	_, err = svc.Current(ctx, "auth|nobody")
	require.ErrorIs(t, err, service.ErrUserNotFound)

	me, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, me.Group)
	require.Equal(t, "Comercial", me.Group.Name)
	require.True(t, me.Permissions.Has(access.Clientes, access.ActionView))
	require.NotNil(t, me.User.LastAccessAt)
	require.True(t, me.User.LastAccessAt.Equal(f.clock.Now()))

	stored, err := f.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastAccessAt)

	inactive := domain.UserInactive
	_, err = svc.Update(ctx, "", u.ID, service.UserUpdate{Status: &inactive})
	require.NoError(t, err)
	_, err = svc.Current(ctx, u.AuthID)
	require.ErrorIs(t, err, service.ErrUserInactive)
}

func TestListUsersClampsPage(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()

	for _, e := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		f.seedUser(t, e, nil)
	}

	users, total, err := svc.List(ctx, domain.UserFilter{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, users, 2)

	_, _, err = svc.List(ctx, domain.UserFilter{Status: "banned"})
	require.ErrorIs(t, err, service.ErrInvalidStatus)
}
