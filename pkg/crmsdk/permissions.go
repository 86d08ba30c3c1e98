package crmsdk

import (
	"context"
	"sync"

	"github.com/matheuspina/avaliatec/pkg/access"
)

// State is the lifecycle of a PermissionContext.
type State int

const (
	// StateLoading means permissions are being fetched.
	StateLoading State = iota
	// StateReady means the user has a group and at least one granted section.
	StateReady
	// StateReadyEmpty means loading finished without usable permissions:
	// the request failed or the user has no group.
	StateReadyEmpty
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateReadyEmpty:
		return "ready-empty"
	}
	return "unknown"
}

// PermissionContext holds the current user's resolved permissions for UI
// decisions. It never blocks a call; the server enforces every request.
//
// A PermissionContext is safe for concurrent use.
type PermissionContext struct {
	client *Client

	// OnChange, when set, is called after every completed load.
	OnChange func(State)

	mu    sync.RWMutex
	state State
	me    *MeResponse
	perms access.Map
}

// NewPermissionContext returns a context in StateLoading. Call Load to
// populate it.
func NewPermissionContext(client *Client) *PermissionContext {
	return &PermissionContext{
		client: client,
		state:  StateLoading,
		perms:  access.Empty(),
	}
}

// Load fetches the current user and their permissions. On failure the
// context moves to StateReadyEmpty and denies everything.
func (p *PermissionContext) Load(ctx context.Context) error {
	p.mu.Lock()
	p.state = StateLoading
	p.mu.Unlock()

	me, err := p.client.Me(ctx)

	p.mu.Lock()
	switch {
	case err != nil:
		p.me = nil
		p.perms = access.Empty()
		p.state = StateReadyEmpty
	case me.Group == nil || !anyGranted(me.Permissions):
		p.me = me
		p.perms = access.Empty()
		p.state = StateReadyEmpty
	default:
		p.me = me
		p.perms = me.Permissions.Clone()
		p.state = StateReady
	}
	state := p.state
	p.mu.Unlock()

	if p.OnChange != nil {
		p.OnChange(state)
	}
	return err
}

// Refresh reloads permissions, for example after an administrator changed
// the user's group.
func (p *PermissionContext) Refresh(ctx context.Context) error {
	return p.Load(ctx)
}

// State returns the current lifecycle state.
func (p *PermissionContext) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// HasPermission reports whether the user may perform action on section.
// It is false for every pair until the context is Ready.
func (p *PermissionContext) HasPermission(section access.Section, action access.Action) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state != StateReady {
		return false
	}
	return p.perms.Has(section, action)
}

// IsAdmin reports whether the user belongs to the administrators group.
func (p *PermissionContext) IsAdmin() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.me != nil && p.me.IsAdmin
}

// User returns the current user, or nil when none is loaded.
func (p *PermissionContext) User() *User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.me == nil {
		return nil
	}
	u := p.me.User
	return &u
}

// Permissions returns a copy of the resolved permission map.
func (p *PermissionContext) Permissions() access.Map {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.perms.Clone()
}

// Navigation returns the navigation items the user can view.
func (p *PermissionContext) Navigation() []access.NavItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state != StateReady {
		return []access.NavItem{}
	}
	return access.VisibleNavigation(p.perms)
}

func anyGranted(m access.Map) bool {
	for _, perm := range m {
		if perm.Any() {
			return true
		}
	}
	return false
}
