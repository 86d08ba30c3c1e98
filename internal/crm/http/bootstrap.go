package http

import (
	"net/http"
	"strings"

	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/matheuspina/avaliatec/pkg/httpx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the one-time setup endpoint.
//
//	@Summary		Bootstrap the system
//	@Description	Creates the administrator group with full permissions, the default Colaborador group and the first administrator.
//	@Description	Only available when a bootstrap token is configured and only once.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token"
//	@Param			request				body		crmsdk.BootstrapRequest		true	"First administrator"
//	@Success		201					{object}	crmsdk.BootstrapResponse
//	@Failure		400					{object}	crmsdk.ErrorResponse
//	@Failure		401					{object}	crmsdk.ErrorResponse	"Missing or invalid bootstrap token"
//	@Failure		404					{object}	crmsdk.ErrorResponse	"BOOTSTRAP_DISABLED"
//	@Failure		409					{object}	crmsdk.ErrorResponse	"ALREADY_BOOTSTRAPPED"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())
	l.Info("bootstrap requested")

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		httpx.WriteError(w, http.StatusNotFound, "BOOTSTRAP_DISABLED", service.ErrBootstrapDisabled.Error())
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Bootstrap token is required in X-Bootstrap-Token header")
		return
	}

	// 3. Parse request body
	var req crmsdk.BootstrapRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	// 4. Perform bootstrap
	res, err := h.BootstrapService.Bootstrap(r.Context(), token, service.BootstrapData{
		AuthID: strings.TrimSpace(req.AuthID),
		Email:  strings.TrimSpace(req.Email),
		Name:   strings.TrimSpace(req.Name),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	l.Info("system bootstrapped", "admin_user_id", res.Admin.ID)
	httpx.WriteJSON(w, http.StatusCreated, crmsdk.BootstrapResponse{
		User:         toUser(res.Admin),
		AdminGroup:   toGroup(res.AdminGroup, 1),
		DefaultGroup: toGroup(res.DefaultGroup, 0),
	})
}
