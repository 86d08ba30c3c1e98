package access

import "net/http"

// Action is one of the four CRUD operations a permission can grant.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// ActionForMethod maps an HTTP verb onto the action it requires. Unknown
// verbs require delete, the most restrictive action.
func ActionForMethod(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionView
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionEdit
	default:
		return ActionDelete
	}
}

// Permission holds the CRUD flags for one section.
type Permission struct {
	View   bool `json:"view"`
	Create bool `json:"create"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// Normalize applies the auto-promotion rule: any write flag implies view.
func (p Permission) Normalize() Permission {
	if p.Create || p.Edit || p.Delete {
		p.View = true
	}
	return p
}

// Allows reports whether the permission grants the action.
func (p Permission) Allows(a Action) bool {
	switch a {
	case ActionView:
		return p.View
	case ActionCreate:
		return p.Create
	case ActionEdit:
		return p.Edit
	case ActionDelete:
		return p.Delete
	}
	return false
}

// Any reports whether at least one flag is set.
func (p Permission) Any() bool {
	return p.View || p.Create || p.Edit || p.Delete
}

// FullPermission grants every action.
func FullPermission() Permission {
	return Permission{View: true, Create: true, Edit: true, Delete: true}
}

// Map is a resolved permission set keyed by section. A missing section means
// no access.
type Map map[Section]Permission

// Empty returns a map with every section present and denied.
func Empty() Map {
	m := make(Map, len(sectionKeys)-1)
	for _, s := range Sections() {
		m[s] = Permission{}
	}
	return m
}

// Full returns a map with every section fully granted.
func Full() Map {
	m := make(Map, len(sectionKeys)-1)
	for _, s := range Sections() {
		m[s] = FullPermission()
	}
	return m
}

// Has reports whether the map grants action on section.
func (m Map) Has(s Section, a Action) bool {
	p, ok := m[s]
	if !ok {
		return false
	}
	return p.Allows(a)
}

// Clone returns an independent copy of the map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
