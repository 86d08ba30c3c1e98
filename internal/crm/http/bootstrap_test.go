package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/stretchr/testify/require"
)

func bootstrapRequest(t *testing.T, env *testEnv, token string, body crmsdk.BootstrapRequest) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/bootstrap", bytes.NewReader(b))
	if token != "" {
		req.Header.Set("X-Bootstrap-Token", token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestBootstrap(t *testing.T) {
	env := newTestEnv(t)
	body := crmsdk.BootstrapRequest{AuthID: "auth|root", Email: "root@avaliatec.test", Name: "Root"}

	requireError(t, bootstrapRequest(t, env, "", body), http.StatusUnauthorized, "UNAUTHORIZED")
	requireError(t, bootstrapRequest(t, env, "wrong", body), http.StatusUnauthorized, "UNAUTHORIZED")

	rec := bootstrapRequest(t, env, testBootstrap, body)
	requireStatus(t, rec, http.StatusCreated)
	res := decode[crmsdk.BootstrapResponse](t, rec)
	require.True(t, res.AdminGroup.IsAdmin)
	require.Equal(t, "Colaborador", res.DefaultGroup.Name)
	require.True(t, res.DefaultGroup.IsDefault)
	require.Equal(t, res.AdminGroup.ID, *res.User.GroupID)

	requireError(t, bootstrapRequest(t, env, testBootstrap, body), http.StatusConflict, "ALREADY_BOOTSTRAPPED")

	// The first administrator can use the system straight away
	rec = env.do(t, http.MethodGet, "/v1/users/me", env.token(t, "auth|root", "root@avaliatec.test"), nil)
	requireStatus(t, rec, http.StatusOK)
	me := decode[crmsdk.MeResponse](t, rec)
	require.True(t, me.IsAdmin)
	require.Len(t, me.Navigation, len(access.Sections()))
}

func TestBootstrapDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.router.BootstrapService.Token = ""

	rec := bootstrapRequest(t, env, "anything", crmsdk.BootstrapRequest{AuthID: "a", Email: "a@b.test", Name: "A"})
	requireError(t, rec, http.StatusNotFound, "BOOTSTRAP_DISABLED")
}
