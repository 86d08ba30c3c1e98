package http

import (
	"net/http"
	"strings"

	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/matheuspina/avaliatec/pkg/httpx"
)

type InvitesHandler struct {
	InviteService *service.InviteService
}

// HandleCreate handles POST /v1/invites
//
//	@Summary		Invite a user
//	@Description	Issues a 7 day invite for an email into a group (the default group when group_id is omitted).
//	@Description	A notification failure does not roll back the invite; email_sent reports it.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		crmsdk.CreateInviteRequest	true	"Invite"
//	@Success		201		{object}	crmsdk.CreateInviteResponse
//	@Failure		400		{object}	crmsdk.ErrorResponse	"INVALID_EMAIL"
//	@Failure		404		{object}	crmsdk.ErrorResponse	"GROUP_NOT_FOUND"
//	@Failure		409		{object}	crmsdk.ErrorResponse	"INVITE_PENDING"
//	@Router			/v1/invites [post].
func (h *InvitesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.CreateInviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	actor, _ := UserFromContext(r.Context())
	created, err := h.InviteService.Create(r.Context(), actor.ID, req.Email, strings.TrimSpace(req.GroupID))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, crmsdk.CreateInviteResponse{
		Invite:    toInvite(created.Invite),
		AcceptURL: created.AcceptURL,
		EmailSent: created.EmailSent,
	})
}

// HandleList handles GET /v1/invites
//
//	@Summary		List invites
//	@Tags			Invites
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	crmsdk.InviteListResponse
//	@Router			/v1/invites [get].
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	invites, err := h.InviteService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, crmsdk.InviteListResponse{Invites: mapSlice(invites, toInvite)})
}

// HandleCancel handles DELETE /v1/invites/{id}
//
//	@Summary		Cancel invite
//	@Description	Only pending invites can be cancelled.
//	@Tags			Invites
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Invite ID"
//	@Success		204	"Invite cancelled"
//	@Failure		404	{object}	crmsdk.ErrorResponse	"INVITE_NOT_FOUND"
//	@Failure		409	{object}	crmsdk.ErrorResponse	"INVITE_NOT_PENDING"
//	@Router			/v1/invites/{id} [delete].
func (h *InvitesHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.InviteService.Cancel(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleValidate handles GET /v1/invites/validate
//
//	@Summary		Validate invite token
//	@Description	Public. Reports the invited email and group name without consuming the token.
//	@Tags			Invites
//	@Produce		json
//	@Param			token	query		string	true	"Invite token"
//	@Success		200		{object}	crmsdk.ValidateInviteResponse
//	@Failure		400		{object}	crmsdk.ErrorResponse	"INVALID_INVITE"
//	@Router			/v1/invites/validate [get].
func (h *InvitesHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_INVITE", service.ErrInvalidInvite.Error())
		return
	}

	p, err := h.InviteService.Validate(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, crmsdk.ValidateInviteResponse{
		Valid:     true,
		Email:     p.Email,
		GroupName: p.GroupName,
		ExpiresAt: p.ExpiresAt,
	})
}

// HandleAccept handles POST /v1/invites/accept
//
//	@Summary		Accept invite
//	@Description	Redeems a token for the authenticated identity. The identity email must match the invite.
//	@Description	No application user is required beforehand; one is created if absent.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		crmsdk.AcceptInviteRequest	true	"Token"
//	@Success		200		{object}	crmsdk.User
//	@Failure		400		{object}	crmsdk.ErrorResponse	"INVALID_INVITE"
//	@Failure		403		{object}	crmsdk.ErrorResponse	"EMAIL_MISMATCH"
//	@Failure		409		{object}	crmsdk.ErrorResponse	"USER_EXISTS"
//	@Router			/v1/invites/accept [post].
func (h *InvitesHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.AcceptInviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	if req.Token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_INVITE", service.ErrInvalidInvite.Error())
		return
	}

	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
		return
	}

	u, err := h.InviteService.Accept(r.Context(), service.Identity{
		AuthID:    claims.Subject,
		Email:     claims.Email,
		Name:      claims.DisplayName(),
		AvatarURL: claims.UserMetadata.AvatarURL,
	}, req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}
