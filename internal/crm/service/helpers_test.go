package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/cache"
	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/evolution"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/internal/crm/store/drivers/sqlite"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu    sync.Mutex
	users []string
}

func (n *recordingNotifier) PermissionsChanged(_ context.Context, ids ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, ids...)
}

func (n *recordingNotifier) notified() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.users...)
}

type fixture struct {
	store    *sqlite.Store
	clock    *clock
	notifier *recordingNotifier
	permMemo *cache.Memory[access.Map]
	genMemo  *cache.Memory[string]
	perms    *service.PermissionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	f := &fixture{
		store:    st,
		clock:    newClock(),
		notifier: &recordingNotifier{},
		permMemo: cache.NewMemory[access.Map](),
		genMemo:  cache.NewMemory[string](),
	}
	f.permMemo.Now = f.clock.Now
	f.genMemo.Now = f.clock.Now
	f.perms = &service.PermissionService{
		Store:       st,
		Cache:       f.permMemo,
		Generations: f.genMemo,
		TTL:         5 * time.Minute,
		Notifier:    f.notifier,
	}
	return f
}

func (f *fixture) seedGroup(t *testing.T, name string, perms access.Map) domain.Group {
	t.Helper()
	ctx := context.Background()

	g := domain.Group{ID: idx.New().String(), Name: name}
	require.NoError(t, f.store.Groups().CreateGroup(ctx, g))

	var entries []domain.PermissionEntry
	for _, sec := range access.Sections() {
		if p, ok := perms[sec]; ok && p.View {
			entries = append(entries, domain.PermissionEntry{GroupID: g.ID, Section: sec, Permission: p})
		}
	}
	if len(entries) > 0 {
		require.NoError(t, f.store.Permissions().ReplaceForGroup(ctx, g.ID, entries))
	}
	return g
}

func (f *fixture) seedUser(t *testing.T, email string, groupID *string) domain.User {
	t.Helper()
	u := domain.User{
		ID:      idx.New().String(),
		AuthID:  "auth|" + email,
		Email:   email,
		Name:    email,
		GroupID: groupID,
		Status:  domain.UserActive,
	}
	require.NoError(t, f.store.Users().CreateUser(context.Background(), u))
	return u
}

func ptr[T any](v T) *T { return &v }

// fakeGateway records calls and fails on demand.
type fakeGateway struct {
	mu sync.Mutex

	calls []string
	sent  []string

	createErr  error
	webhookErr error
	connectErr error
	logoutErr  error
	deleteErr  error
	sendErr    error
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) CreateInstance(_ context.Context, name string) (*evolution.CreateInstanceResponse, error) {
	g.record("create:" + name)
	if g.createErr != nil {
		return nil, g.createErr
	}
	resp := &evolution.CreateInstanceResponse{}
	resp.Instance.InstanceName = name
	resp.QRCode.Base64 = "data:image/png;base64,QR"
	return resp, nil
}

func (g *fakeGateway) SetWebhook(_ context.Context, name, _ string) error {
	g.record("webhook:" + name)
	return g.webhookErr
}

func (g *fakeGateway) Connect(_ context.Context, name string) (*evolution.QRCode, error) {
	g.record("connect:" + name)
	if g.connectErr != nil {
		return nil, g.connectErr
	}
	return &evolution.QRCode{Base64: "data:image/png;base64,CONNECT"}, nil
}

func (g *fakeGateway) Logout(_ context.Context, name string) error {
	g.record("logout:" + name)
	return g.logoutErr
}

func (g *fakeGateway) DeleteInstance(_ context.Context, name string) error {
	g.record("delete:" + name)
	return g.deleteErr
}

func (g *fakeGateway) SendText(_ context.Context, instance, number, text string) (*evolution.SendTextResponse, error) {
	g.record("send:" + instance + ":" + number)
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	g.mu.Lock()
	g.sent = append(g.sent, text)
	n := len(g.sent)
	g.mu.Unlock()

	resp := &evolution.SendTextResponse{Status: "PENDING"}
	resp.Key.ID = "EXT" + string(rune('A'+n-1))
	resp.Key.FromMe = true
	return resp, nil
}
