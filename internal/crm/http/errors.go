package http

import (
	"errors"
	"net/http"

	"github.com/matheuspina/avaliatec/internal/crm/evolution"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/httpx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: the first matching entry wins.
var errorMappings = []errorMapping{
	{service.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{service.ErrUserInactive, http.StatusForbidden, "USER_INACTIVE"},
	{service.ErrGroupNotFound, http.StatusNotFound, "GROUP_NOT_FOUND"},
	{service.ErrLastAdmin, http.StatusConflict, "LAST_ADMIN"},
	{service.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{service.ErrInvalidUserName, http.StatusBadRequest, "INVALID_NAME"},

	{service.ErrInvalidNameLength, http.StatusBadRequest, "INVALID_NAME_LENGTH"},
	{service.ErrNameExists, http.StatusConflict, "NAME_EXISTS"},
	{service.ErrProtectedGroup, http.StatusForbidden, "PROTECTED_GROUP"},
	{service.ErrInvalidSection, http.StatusBadRequest, "INVALID_SECTION"},
	{service.ErrNoSectionsSelected, http.StatusBadRequest, "NO_SECTIONS_SELECTED"},

	{service.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL"},
	{service.ErrInvitePending, http.StatusConflict, "INVITE_PENDING"},
	{service.ErrInviteNotFound, http.StatusNotFound, "INVITE_NOT_FOUND"},
	{service.ErrInviteNotPending, http.StatusConflict, "INVITE_NOT_PENDING"},
	{service.ErrInvalidInvite, http.StatusBadRequest, "INVALID_INVITE"},
	{service.ErrEmailMismatch, http.StatusForbidden, "EMAIL_MISMATCH"},
	{service.ErrUserExists, http.StatusConflict, "USER_EXISTS"},

	{service.ErrBootstrapDisabled, http.StatusNotFound, "BOOTSTRAP_DISABLED"},
	{service.ErrBootstrapAlready, http.StatusConflict, "ALREADY_BOOTSTRAPPED"},
	{service.ErrBootstrapUnauthorized, http.StatusUnauthorized, httpx.CodeUnauthorized},
	{service.ErrInvalidBootstrap, http.StatusBadRequest, httpx.CodeBadRequest},

	{service.ErrClientNotFound, http.StatusNotFound, "CLIENT_NOT_FOUND"},
	{service.ErrInvalidClient, http.StatusBadRequest, "INVALID_CLIENT"},

	{service.ErrInvalidInstanceName, http.StatusBadRequest, "INVALID_INSTANCE_NAME"},
	{service.ErrInstanceNotFound, http.StatusNotFound, "INSTANCE_NOT_FOUND"},
	{service.ErrEmptyMessage, http.StatusBadRequest, "EMPTY_MESSAGE"},
	{service.ErrContactNotFound, http.StatusNotFound, "CONTACT_NOT_FOUND"},
	{service.ErrInvalidSignature, http.StatusUnauthorized, "INVALID_SIGNATURE"},

	{service.ErrGatewayUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	{evolution.ErrUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
}

// writeServiceError maps a service error onto the {error, code} body.
// Anything unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var hasUsers *service.GroupHasUsersError
	if errors.As(err, &hasUsers) {
		httpx.WriteErrorWith(w, http.StatusConflict, "GROUP_HAS_USERS", service.ErrGroupHasUsers.Error(), map[string]any{
			"user_count": hasUsers.Count,
		})
		return
	}

	var limited *service.RateLimitError
	if errors.As(err, &limited) {
		httpx.WriteRateLimited(w, "Too many messages, slow down", limited.RetryAfter)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			httpx.WriteError(w, m.status, m.code, m.target.Error())
			return
		}
	}

	var apiErr *evolution.APIError
	if errors.As(err, &apiErr) {
		slogx.FromContext(r.Context()).Warn("whatsapp gateway rejected request",
			"status", apiErr.Status,
			"error", err,
		)
		httpx.WriteError(w, http.StatusBadGateway, "GATEWAY_ERROR", "The WhatsApp gateway rejected the request")
		return
	}

	slogx.FromContext(r.Context()).Error("request failed", "error", err)
	httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "An internal error occurred")
}

func writeBadJSON(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusBadRequest, httpx.CodeBadRequest, "Request body must be valid JSON")
}
