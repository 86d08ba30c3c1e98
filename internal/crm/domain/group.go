package domain

import (
	"time"

	"github.com/matheuspina/avaliatec/pkg/access"
)

// AdminGroupName is the distinguished group whose members manage groups,
// permissions, users and invites.
const AdminGroupName = "Administrador"

const (
	GroupNameMin = 3
	GroupNameMax = 50
)

type Group struct {
	ID          string
	Name        string
	Description string
	IsDefault   bool
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (g Group) IsAdmin() bool { return g.Name == AdminGroupName }

// GroupSummary is a group plus the number of users assigned to it.
type GroupSummary struct {
	Group
	UserCount int
}

// PermissionEntry is one persisted row of a group's permission matrix. Rows
// only exist for sections the group can view.
type PermissionEntry struct {
	GroupID    string
	Section    access.Section
	Permission access.Permission
}
