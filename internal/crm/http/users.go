package http

import (
	"net/http"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/matheuspina/avaliatec/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleMe handles GET /v1/users/me
//
//	@Summary		Current user
//	@Description	Returns the caller's profile, group, resolved permission map and visible navigation. Records the access time.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	crmsdk.MeResponse
//	@Failure		401	{object}	crmsdk.ErrorResponse	"UNAUTHORIZED"
//	@Failure		403	{object}	crmsdk.ErrorResponse	"USER_INACTIVE"
//	@Failure		404	{object}	crmsdk.ErrorResponse	"USER_NOT_FOUND"
//	@Router			/v1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())

	p, err := h.UserService.Me(r.Context(), u.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := crmsdk.MeResponse{
		User:        toUser(p.User),
		Permissions: p.Permissions,
		Navigation:  access.VisibleNavigation(p.Permissions),
	}
	if p.Group != nil {
		g := toGroup(*p.Group, 0)
		resp.Group = &g
		resp.IsAdmin = p.Group.IsAdmin()
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleList handles GET /v1/users
//
//	@Summary		List users
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			search		query		string	false	"Name or email fragment"
//	@Param			group_id	query		string	false	"Group ID"
//	@Param			status		query		string	false	"active or inactive"
//	@Param			page		query		int		false	"Page, from 1"
//	@Param			per_page	query		int		false	"Page size, max 100"
//	@Success		200			{object}	crmsdk.UserListResponse
//	@Failure		400			{object}	crmsdk.ErrorResponse	"INVALID_STATUS"
//	@Failure		403			{object}	crmsdk.ErrorResponse	"FORBIDDEN"
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := max(httpx.QueryInt(r, "page", 1), 1)
	perPage := min(max(httpx.QueryInt(r, "per_page", service.DefaultPageSize), 1), service.MaxPageSize)

	users, total, err := h.UserService.List(r.Context(), domain.UserFilter{
		Search:  q.Get("search"),
		GroupID: q.Get("group_id"),
		Status:  domain.UserStatus(q.Get("status")),
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, crmsdk.UserListResponse{
		Users:   mapSlice(users, toUser),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// HandleUpdate handles PUT /v1/users/{id}
//
//	@Summary		Update user
//	@Description	Changes name, status or group. An explicit null group_id unassigns the user.
//	@Description	The last active administrator cannot be deactivated or moved out of the administrator group.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		crmsdk.UpdateUserRequest	true	"Changes"
//	@Success		200		{object}	crmsdk.User
//	@Failure		400		{object}	crmsdk.ErrorResponse
//	@Failure		404		{object}	crmsdk.ErrorResponse	"USER_NOT_FOUND or GROUP_NOT_FOUND"
//	@Failure		409		{object}	crmsdk.ErrorResponse	"LAST_ADMIN"
//	@Router			/v1/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	in := service.UserUpdate{
		Name:     req.Name,
		SetGroup: req.GroupID.Set,
		GroupID:  req.GroupID.Value,
	}
	if req.Status != nil {
		st := domain.UserStatus(*req.Status)
		in.Status = &st
	}

	actor, _ := UserFromContext(r.Context())
	u, err := h.UserService.Update(r.Context(), actor.ID, r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}
