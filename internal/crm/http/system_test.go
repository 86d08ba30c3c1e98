package http_test

import (
	"net/http"
	"testing"

	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/livez", "", nil)
	requireStatus(t, rec, http.StatusOK)
	live := decode[crmsdk.HealthResponse](t, rec)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)
	require.Nil(t, live.Checks)

	rec = env.do(t, http.MethodGet, "/readyz", "", nil)
	requireStatus(t, rec, http.StatusOK)
	ready := decode[crmsdk.HealthResponse](t, rec)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Cache)
}

func TestReadyzReportsDatabaseFailure(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Close())

	rec := env.do(t, http.MethodGet, "/readyz", "", nil)
	requireStatus(t, rec, http.StatusServiceUnavailable)
	ready := decode[crmsdk.HealthResponse](t, rec)
	require.Equal(t, "degraded", ready.Status)
	require.Contains(t, ready.Checks.Database, "error")
}

func TestSwaggerIsServed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/swagger/doc.json", "", nil)
	requireStatus(t, rec, http.StatusOK)
	require.Contains(t, rec.Body.String(), "/v1/groups/{id}/permissions")
}
