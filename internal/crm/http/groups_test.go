package http_test

import (
	"net/http"
	"testing"

	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/stretchr/testify/require"
)

func TestGroupLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.seedAdmin(t)
	tok := env.tokenFor(t, admin)

	rec := env.do(t, http.MethodPost, "/v1/groups", tok, crmsdk.GroupRequest{Name: "  Comercial  ", Description: "Vendas"})
	requireStatus(t, rec, http.StatusCreated)
	created := decode[crmsdk.Group](t, rec)
	require.Equal(t, "Comercial", created.Name)

	requireError(t, env.do(t, http.MethodPost, "/v1/groups", tok, crmsdk.GroupRequest{Name: "Comercial"}), http.StatusConflict, "NAME_EXISTS")
	requireError(t, env.do(t, http.MethodPost, "/v1/groups", tok, crmsdk.GroupRequest{Name: "ab"}), http.StatusBadRequest, "INVALID_NAME_LENGTH")

	rec = env.do(t, http.MethodPut, "/v1/groups/"+created.ID, tok, crmsdk.GroupRequest{Name: "Comercial SP", IsDefault: true})
	requireStatus(t, rec, http.StatusOK)
	require.True(t, decode[crmsdk.Group](t, rec).IsDefault)

	rec = env.do(t, http.MethodGet, "/v1/groups", tok, nil)
	requireStatus(t, rec, http.StatusOK)
	list := decode[crmsdk.GroupListResponse](t, rec)
	require.Len(t, list.Groups, 2)
	for _, g := range list.Groups {
		if g.IsAdmin {
			require.Equal(t, 1, g.UserCount)
		}
	}

	requireStatus(t, env.do(t, http.MethodDelete, "/v1/groups/"+created.ID, tok, nil), http.StatusNoContent)
	requireError(t, env.do(t, http.MethodDelete, "/v1/groups/"+created.ID, tok, nil), http.StatusNotFound, "GROUP_NOT_FOUND")
}

func TestDeleteGroupWithUsers(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.seedAdmin(t)
	g := env.seedGroup(t, "Financeiro", access.Map{access.Dashboard: {View: true}})
	env.seedUser(t, "a@avaliatec.test", &g.ID)
	env.seedUser(t, "b@avaliatec.test", &g.ID)

	body := requireError(t, env.do(t, http.MethodDelete, "/v1/groups/"+g.ID, env.tokenFor(t, admin), nil), http.StatusConflict, "GROUP_HAS_USERS")
	require.EqualValues(t, 2, body["user_count"])
}

func TestAdministratorGroupIsProtected(t *testing.T) {
	env := newTestEnv(t)
	adminGroup, admin := env.seedAdmin(t)
	tok := env.tokenFor(t, admin)

	requireError(t, env.do(t, http.MethodPut, "/v1/groups/"+adminGroup.ID, tok, crmsdk.GroupRequest{Name: "Chefes"}), http.StatusForbidden, "PROTECTED_GROUP")
	requireError(t, env.do(t, http.MethodDelete, "/v1/groups/"+adminGroup.ID, tok, nil), http.StatusForbidden, "PROTECTED_GROUP")
}

func TestSaveGroupPermissions(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.seedAdmin(t)
	tok := env.tokenFor(t, admin)
	g := env.seedGroup(t, "Projetos", access.Map{access.Dashboard: {View: true}})
	path := "/v1/groups/" + g.ID + "/permissions"

	rec := env.do(t, http.MethodPut, path, tok, crmsdk.PermissionsRequest{Permissions: []crmsdk.PermissionEntry{
		{Section: "projetos", Permission: access.Permission{Edit: true}},
		{Section: "kanban", Permission: access.Permission{}},
	}})
	requireStatus(t, rec, http.StatusOK)
	saved := decode[crmsdk.PermissionsResponse](t, rec)
	require.True(t, saved.Permissions.Has(access.Projetos, access.ActionView), "edit promotes view")
	require.True(t, saved.Permissions.Has(access.Projetos, access.ActionEdit))
	require.False(t, saved.Permissions.Has(access.Kanban, access.ActionView))
	require.False(t, saved.Permissions.Has(access.Dashboard, access.ActionView), "replaced, not merged")

	requireError(t, env.do(t, http.MethodPut, path, tok, crmsdk.PermissionsRequest{Permissions: []crmsdk.PermissionEntry{
		{Section: "kanban"},
	}}), http.StatusBadRequest, "NO_SECTIONS_SELECTED")

	requireError(t, env.do(t, http.MethodPut, path, tok, crmsdk.PermissionsRequest{Permissions: []crmsdk.PermissionEntry{
		{Section: "financeiro", Permission: access.Permission{View: true}},
	}}), http.StatusBadRequest, "INVALID_SECTION")

	// Refused saves leave the previous rows in place
	rec = env.do(t, http.MethodGet, path, tok, nil)
	requireStatus(t, rec, http.StatusOK)
	current := decode[crmsdk.PermissionsResponse](t, rec)
	require.True(t, current.Permissions.Has(access.Projetos, access.ActionEdit))
	require.Len(t, current.Permissions, len(access.Sections()))

	requireStatus(t, env.do(t, http.MethodPut, path, tok, `{"permissions":`), http.StatusBadRequest)
}

func TestSavePermissionsInvalidatesMembers(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.seedAdmin(t)
	g := env.seedGroup(t, "Atendimento", access.Map{access.Dashboard: {View: true}})
	u := env.seedUser(t, "agente@avaliatec.test", &g.ID)
	userTok := env.tokenFor(t, u)

	// Warm the cache with the old map
	requireError(t, env.do(t, http.MethodGet, "/v1/clients", userTok, nil), http.StatusForbidden, "FORBIDDEN")

	rec := env.do(t, http.MethodPut, "/v1/groups/"+g.ID+"/permissions", env.tokenFor(t, admin), crmsdk.PermissionsRequest{
		Permissions: []crmsdk.PermissionEntry{{Section: "clientes", Permission: access.Permission{View: true}}},
	})
	requireStatus(t, rec, http.StatusOK)

	requireStatus(t, env.do(t, http.MethodGet, "/v1/clients", userTok, nil), http.StatusOK)
}
