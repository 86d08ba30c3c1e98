package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/stretchr/testify/require"
)

func newGroupService(f *fixture) *service.GroupService {
	return &service.GroupService{Store: f.store, Permissions: f.perms}
}

func TestCreateGroupNameRules(t *testing.T) {
	f := newFixture(t)
	svc := newGroupService(f)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"too short", "ab", service.ErrInvalidNameLength},
		{"blank after trim", "   ", service.ErrInvalidNameLength},
		{"too long", strings.Repeat("é", 51), service.ErrInvalidNameLength},
		{"at the limit", strings.Repeat("é", 50), nil},
		{"valid", "Gerentes", nil},
		{"accented counts runes", "Coordenação", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := svc.Create(ctx, "", service.GroupInput{Name: tt.in})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.in, g.Name)
		})
	}
}

func TestCreateGroupTrimsAndRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	svc := newGroupService(f)
	ctx := context.Background()

	g, err := svc.Create(ctx, "", service.GroupInput{Name: "  Gerentes  "})
	require.NoError(t, err)
	require.Equal(t, "Gerentes", g.Name)

	_, err = svc.Create(ctx, "", service.GroupInput{Name: "Gerentes"})
	require.ErrorIs(t, err, service.ErrNameExists)
}

func TestDefaultGroupIsExclusive(t *testing.T) {
	f := newFixture(t)
	svc := newGroupService(f)
	ctx := context.Background()

	first, err := svc.Create(ctx, "", service.GroupInput{Name: "Primeiro", IsDefault: true})
	require.NoError(t, err)
	second, err := svc.Create(ctx, "", service.GroupInput{Name: "Segundo", IsDefault: true})
	require.NoError(t, err)

	def, err := f.store.Groups().GetDefaultGroup(ctx)
	require.NoError(t, err)
	require.Equal(t, second.ID, def.ID)

	reloaded, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsDefault)
}

func TestDeleteGroupWithUsersReportsCount(t *testing.T) {
	f := newFixture(t)
	svc := newGroupService(f)
	ctx := context.Background()

	g := f.seedGroup(t, "Comercial", nil)
	f.seedUser(t, "a@avaliatec.com.br", &g.ID)
	f.seedUser(t, "b@avaliatec.com.br", &g.ID)
	f.seedUser(t, "c@avaliatec.com.br", &g.ID)

	err := svc.Delete(ctx, g.ID)
	require.ErrorIs(t, err, service.ErrGroupHasUsers)

	var hasUsers *service.GroupHasUsersError
	require.True(t, errors.As(err, &hasUsers))
	require.Equal(t, 3, hasUsers.Count)

	empty := f.seedGroup(t, "Vazio", nil)
	require.NoError(t, svc.Delete(ctx, empty.ID))
	require.ErrorIs(t, svc.Delete(ctx, empty.ID), service.ErrGroupNotFound)
}

func TestAdminGroupIsProtected(t *testing.T) {
	f := newFixture(t)
	svc := newGroupService(f)
	ctx := context.Background()

	admins := f.seedGroup(t, domain.AdminGroupName, access.Full())

	require.ErrorIs(t, svc.Delete(ctx, admins.ID), service.ErrProtectedGroup)

	_, err := svc.Update(ctx, admins.ID, service.GroupInput{Name: "Chefes"})
	require.ErrorIs(t, err, service.ErrProtectedGroup)

	updated, err := svc.Update(ctx, admins.ID, service.GroupInput{Name: domain.AdminGroupName, Description: "Tudo"})
	require.NoError(t, err)
	require.Equal(t, "Tudo", updated.Description)
}

func TestSavePermissionsNormalisesAndInvalidatesMembers(t *testing.T) {
	f := newFixture(t)
	svc := newGroupService(f)
	ctx := context.Background()

	g := f.seedGroup(t, "Atendimento", access.Map{access.Dashboard: {View: true}})
	u := f.seedUser(t, "ana@avaliatec.com.br", &g.ID)
	require.False(t, f.perms.Has(ctx, u.ID, access.Atendimento, access.ActionView))

	saved, err := svc.SavePermissions(ctx, g.ID, []service.PermissionInput{
		{SectionKey: "atendimento", Permission: access.Permission{Create: true, Edit: true}},
		{SectionKey: "clientes", Permission: access.Permission{}},
		{SectionKey: "dashboard", Permission: access.Permission{View: true}},
	})
	require.NoError(t, err)
	require.Equal(t, access.Permission{View: true, Create: true, Edit: true}, saved[access.Atendimento])
	require.False(t, saved[access.Clientes].Any())

	rows, err := f.store.Permissions().ListPermissionsByGroup(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Contains(t, f.notifier.notified(), u.ID)
	require.True(t, f.perms.Has(ctx, u.ID, access.Atendimento, access.ActionEdit))
	require.False(t, f.perms.Has(ctx, u.ID, access.Atendimento, access.ActionDelete))
}

func TestSavePermissionsRejectsAndKeepsPriorRows(t *testing.T) {
	f := newFixture(t)
	svc := newGroupService(f)
	ctx := context.Background()

	g := f.seedGroup(t, "Atendimento", access.Map{access.Atendimento: {View: true}})

	_, err := svc.SavePermissions(ctx, g.ID, []service.PermissionInput{
		{SectionKey: "clientes", Permission: access.Permission{}},
	})
	require.ErrorIs(t, err, service.ErrNoSectionsSelected)

	_, err = svc.SavePermissions(ctx, g.ID, []service.PermissionInput{
		{SectionKey: "financeiro", Permission: access.Permission{View: true}},
	})
	require.ErrorIs(t, err, service.ErrInvalidSection)

	m, err := svc.PermissionMatrix(ctx, g.ID)
	require.NoError(t, err)
	require.True(t, m.Has(access.Atendimento, access.ActionView))
	require.Len(t, m, len(access.Sections()))

	_, err = svc.SavePermissions(ctx, "missing", []service.PermissionInput{
		{SectionKey: "dashboard", Permission: access.Permission{View: true}},
	})
	require.ErrorIs(t, err, service.ErrGroupNotFound)
}
