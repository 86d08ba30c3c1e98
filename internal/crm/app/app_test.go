package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/matheuspina/avaliatec/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testSecret    = "app-test-secret-with-enough-bytes"
	testIssuer    = "https://auth.test"
	testBootstrap = "boot-token"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		JWTSecret:            testSecret,
		Issuer:               testIssuer,
		Audience:             []string{"authenticated"},
		BootstrapToken:       testBootstrap,
		DatabaseFile:         filepath.Join(t.TempDir(), "crm.db"),
		CacheBackend:         "memory",
		PermissionCacheTTL:   time.Minute,
		AppBaseURL:           "http://app.test",
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		Port:                 0,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func signToken(t *testing.T, authID, email string) string {
	t.Helper()
	signer, err := jwtx.NewSignerHS256([]byte(testSecret))
	require.NoError(t, err)
	tok, err := signer.Sign(jwtx.NewClaims(authID, email, testIssuer, []string{"authenticated"}, time.Hour, time.Now()))
	require.NoError(t, err)
	return tok
}

// exerciseApp runs the bootstrap, permission and invite flow against a
// running application.
func exerciseApp(t *testing.T, baseURL string) {
	t.Helper()
	ctx := context.Background()

	public := crmsdk.NewClient(baseURL, nil)
	boot, err := public.Bootstrap(ctx, testBootstrap, crmsdk.BootstrapRequest{
		AuthID: "auth|root",
		Email:  "root@avaliatec.test",
		Name:   "Root",
	})
	require.NoError(t, err)
	require.True(t, boot.AdminGroup.IsAdmin)

	admin := crmsdk.NewClient(baseURL, crmsdk.StaticToken(signToken(t, "auth|root", "root@avaliatec.test")))
	me, err := admin.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.IsAdmin)

	g, err := admin.CreateGroup(ctx, crmsdk.GroupRequest{Name: "Atendimento"})
	require.NoError(t, err)
	_, err = admin.UpdateGroupPermissions(ctx, g.ID, []crmsdk.PermissionEntry{
		{Section: "atendimento", Permission: access.Permission{Create: true}},
	})
	require.NoError(t, err)

	inv, err := admin.CreateInvite(ctx, crmsdk.CreateInviteRequest{Email: "ana@avaliatec.test", GroupID: g.ID})
	require.NoError(t, err)
	require.NotEmpty(t, inv.AcceptURL)

	agent := crmsdk.NewClient(baseURL, crmsdk.StaticToken(signToken(t, "auth|ana", "ana@avaliatec.test")))
	token := tokenFromAcceptURL(t, inv.AcceptURL)
	_, err = agent.AcceptInvite(ctx, token)
	require.NoError(t, err)

	pc := crmsdk.NewPermissionContext(agent)
	require.NoError(t, pc.Load(ctx))
	require.Equal(t, crmsdk.StateReady, pc.State())
	require.True(t, pc.HasPermission(access.Atendimento, access.ActionView))
	require.False(t, pc.HasPermission(access.Clientes, access.ActionView))
}

func tokenFromAcceptURL(t *testing.T, raw string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, raw, nil)
	require.NoError(t, err)
	token := req.URL.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTSecret = ""
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestApplicationWithMemoryCache(t *testing.T) {
	application, err := New(testConfig(t))
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	exerciseApp(t, srv.URL)

	require.NoError(t, application.Shutdown())
}

func TestApplicationWithRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("redis container test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.CacheBackend = "redis"
	cfg.RedisAddr = fmt.Sprintf("%s:%s", host, port.Port())

	application, err := New(cfg)
	require.NoError(t, err)
	application.start()

	srv := httptest.NewServer(application.Handler())
	defer srv.Close()

	exerciseApp(t, srv.URL)

	require.NoError(t, application.Shutdown())
}
