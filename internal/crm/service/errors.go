package service

import "errors"

// domainErrors are the expected outcomes of bad input or state. Anything else
// is an infrastructure failure worth an error log.
var domainErrors = []error{
	ErrUserNotFound, ErrUserInactive, ErrGroupNotFound, ErrLastAdmin, ErrInvalidStatus, ErrInvalidUserName,
	ErrInvalidNameLength, ErrNameExists, ErrProtectedGroup, ErrGroupHasUsers, ErrInvalidSection, ErrNoSectionsSelected,
	ErrInvalidEmail, ErrInvitePending, ErrInviteNotFound, ErrInviteNotPending, ErrInvalidInvite, ErrEmailMismatch, ErrUserExists,
	ErrBootstrapDisabled, ErrBootstrapAlready, ErrBootstrapUnauthorized, ErrInvalidBootstrap,
	ErrClientNotFound, ErrInvalidClient,
	ErrInvalidInstanceName, ErrInstanceNotFound,
	ErrEmptyMessage, ErrContactNotFound,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
