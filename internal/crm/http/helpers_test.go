package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/cache"
	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/evolution"
	crmhttp "github.com/matheuspina/avaliatec/internal/crm/http"
	"github.com/matheuspina/avaliatec/internal/crm/realtime"
	"github.com/matheuspina/avaliatec/internal/crm/saga"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/internal/crm/store/drivers/sqlite"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/matheuspina/avaliatec/pkg/jwtx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer        = "https://auth.test"
	testBootstrap     = "bootstrap-secret"
	testWebhookSecret = "webhook-secret"
)

var testAudience = []string{"authenticated"}

// stubGateway answers every gateway call successfully.
type stubGateway struct {
	sent atomic.Int32
}

func (g *stubGateway) CreateInstance(_ context.Context, name string) (*evolution.CreateInstanceResponse, error) {
	resp := &evolution.CreateInstanceResponse{}
	resp.Instance.InstanceName = name
	return resp, nil
}

func (g *stubGateway) SetWebhook(context.Context, string, string) error { return nil }

func (g *stubGateway) Connect(context.Context, string) (*evolution.QRCode, error) {
	return &evolution.QRCode{Base64: "data:image/png;base64,QR"}, nil
}

func (g *stubGateway) Logout(context.Context, string) error         { return nil }
func (g *stubGateway) DeleteInstance(context.Context, string) error { return nil }

func (g *stubGateway) SendText(_ context.Context, _, number, _ string) (*evolution.SendTextResponse, error) {
	n := g.sent.Add(1)
	return &evolution.SendTextResponse{
		Key:    evolution.MessageKey{RemoteJID: number + "@s.whatsapp.net", FromMe: true, ID: "EXT" + string(rune('A'+n-1))},
		Status: "PENDING",
	}, nil
}

type testEnv struct {
	store  *sqlite.Store
	signer *jwtx.HS256Signer
	hub    *realtime.Hub
	router *crmhttp.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	secret := []byte("test-signing-secret-with-32-bytes!")
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(secret, testIssuer, testAudience)
	require.NoError(t, err)

	logger := slogx.Discard()
	hub := realtime.NewHub(logger, nil, nil)

	perms := &service.PermissionService{
		Store:       st,
		Cache:       cache.NewMemory[access.Map](),
		Generations: cache.NewMemory[string](),
		Notifier:    hub,
	}
	match := &service.MatchService{Store: st}
	gw := &stubGateway{}
	instances := &service.InstanceService{
		Store:      st,
		Gateway:    gw,
		Cache:      cache.NewMemory[domain.Instance](),
		Saga:       saga.Runner{MaxAttempts: 1},
		WebhookURL: "http://api.test/v1/webhooks/evolution",
	}

	cacheHealth := cache.NewMemory[bool]()
	r := crmhttp.NewRouter(verifier, "test", st, cacheHealth, logger)
	r.PermissionService = perms
	r.UserService = &service.UserService{Store: st, Permissions: perms}
	r.GroupService = &service.GroupService{Store: st, Permissions: perms}
	r.InviteService = &service.InviteService{
		Store:       st,
		Permissions: perms,
		Mailer:      service.LogMailer{Logger: logger},
		AppBaseURL:  "http://app.test",
	}
	r.BootstrapService = &service.BootstrapService{Store: st, Token: testBootstrap}
	r.ClientService = &service.ClientService{Store: st, Match: match}
	r.InstanceService = instances
	r.MessageService = &service.MessageService{Store: st, Gateway: gw, Limiter: service.NewSendLimiter(time.Second)}
	r.WebhookService = &service.WebhookService{
		Store:     st,
		Instances: instances,
		Match:     match,
		Seen:      cacheHealth,
		Secret:    testWebhookSecret,
	}
	r.Hub = hub
	r.ApplyRoutes()

	return &testEnv{store: st, signer: signer, hub: hub, router: r}
}

func (e *testEnv) token(t *testing.T, authID, email string) string {
	t.Helper()
	claims := jwtx.NewClaims(authID, email, testIssuer, testAudience, time.Hour, time.Now())
	tok, err := e.signer.Sign(claims)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) tokenFor(t *testing.T, u domain.User) string {
	return e.token(t, u.AuthID, u.Email)
}

func (e *testEnv) seedGroup(t *testing.T, name string, perms access.Map) domain.Group {
	t.Helper()
	ctx := context.Background()

	g := domain.Group{ID: idx.New().String(), Name: name}
	require.NoError(t, e.store.Groups().CreateGroup(ctx, g))

	var entries []domain.PermissionEntry
	for _, sec := range access.Sections() {
		if p, ok := perms[sec]; ok && p.View {
			entries = append(entries, domain.PermissionEntry{GroupID: g.ID, Section: sec, Permission: p})
		}
	}
	if len(entries) > 0 {
		require.NoError(t, e.store.Permissions().ReplaceForGroup(ctx, g.ID, entries))
	}
	return g
}

func (e *testEnv) seedUser(t *testing.T, email string, groupID *string) domain.User {
	t.Helper()
	u := domain.User{
		ID:      idx.New().String(),
		AuthID:  "auth|" + email,
		Email:   email,
		Name:    email,
		GroupID: groupID,
		Status:  domain.UserActive,
	}
	require.NoError(t, e.store.Users().CreateUser(context.Background(), u))
	return u
}

// seedAdmin creates the administrator group and one member.
func (e *testEnv) seedAdmin(t *testing.T) (domain.Group, domain.User) {
	t.Helper()
	g := e.seedGroup(t, domain.AdminGroupName, access.Full())
	return g, e.seedUser(t, "admin@avaliatec.test", &g.ID)
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) map[string]any {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	require.Equal(t, code, body["code"])
	require.NotEmpty(t, body["error"])
	return body
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}

var _ http.Handler = (*crmhttp.Router)(nil)
