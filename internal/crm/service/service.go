// Package service holds the CRM business rules. Services are plain structs
// with exported dependencies; handlers and background workers call them.
package service

import (
	"context"
	"time"
)

// Notifier receives permission change events for connected sessions.
type Notifier interface {
	PermissionsChanged(ctx context.Context, userIDs ...string)
}

type nopNotifier struct{}

func (nopNotifier) PermissionsChanged(context.Context, ...string) {}

func nowOr(fn func() time.Time) time.Time {
	if fn != nil {
		return fn().UTC()
	}
	return time.Now().UTC()
}
