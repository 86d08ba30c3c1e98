package http

import (
	"net/http"

	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/matheuspina/avaliatec/pkg/httpx"
)

// GroupsHandler serves group administration. Every route is admin only.
type GroupsHandler struct {
	GroupService *service.GroupService
}

// HandleList handles GET /v1/groups
//
//	@Summary		List groups
//	@Description	Returns every group with its member count, sorted by name.
//	@Tags			Groups
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	crmsdk.GroupListResponse
//	@Failure		401	{object}	crmsdk.ErrorResponse
//	@Failure		403	{object}	crmsdk.ErrorResponse	"ADMIN_REQUIRED"
//	@Router			/v1/groups [get].
func (h *GroupsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.GroupService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]crmsdk.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroup(g.Group, g.UserCount))
	}
	httpx.WriteJSON(w, http.StatusOK, crmsdk.GroupListResponse{Groups: out})
}

// HandleCreate handles POST /v1/groups
//
//	@Summary		Create group
//	@Tags			Groups
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		crmsdk.GroupRequest	true	"Group"
//	@Success		201		{object}	crmsdk.Group
//	@Failure		400		{object}	crmsdk.ErrorResponse	"INVALID_NAME_LENGTH"
//	@Failure		409		{object}	crmsdk.ErrorResponse	"NAME_EXISTS"
//	@Router			/v1/groups [post].
func (h *GroupsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.GroupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	actor, _ := UserFromContext(r.Context())
	g, err := h.GroupService.Create(r.Context(), actor.ID, service.GroupInput{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toGroup(g, 0))
}

// HandleUpdate handles PUT /v1/groups/{id}
//
//	@Summary		Update group
//	@Description	Renames a group or changes its description and default flag. The administrator group cannot be renamed.
//	@Tags			Groups
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Group ID"
//	@Param			request	body		crmsdk.GroupRequest	true	"Group"
//	@Success		200		{object}	crmsdk.Group
//	@Failure		400		{object}	crmsdk.ErrorResponse
//	@Failure		403		{object}	crmsdk.ErrorResponse	"PROTECTED_GROUP"
//	@Failure		404		{object}	crmsdk.ErrorResponse	"GROUP_NOT_FOUND"
//	@Failure		409		{object}	crmsdk.ErrorResponse	"NAME_EXISTS"
//	@Router			/v1/groups/{id} [put].
func (h *GroupsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.GroupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	g, err := h.GroupService.Update(r.Context(), r.PathValue("id"), service.GroupInput{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toGroup(g, 0))
}

// HandleDelete handles DELETE /v1/groups/{id}
//
//	@Summary		Delete group
//	@Description	Fails with GROUP_HAS_USERS and the member count while users still reference the group.
//	@Tags			Groups
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Group ID"
//	@Success		204	"Group deleted"
//	@Failure		403	{object}	crmsdk.ErrorResponse	"PROTECTED_GROUP"
//	@Failure		404	{object}	crmsdk.ErrorResponse	"GROUP_NOT_FOUND"
//	@Failure		409	{object}	crmsdk.ErrorResponse	"GROUP_HAS_USERS"
//	@Router			/v1/groups/{id} [delete].
func (h *GroupsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.GroupService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetPermissions handles GET /v1/groups/{id}/permissions
//
//	@Summary		Get group permissions
//	@Description	Returns the permission matrix of a group with every section present.
//	@Tags			Groups
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Group ID"
//	@Success		200	{object}	crmsdk.PermissionsResponse
//	@Failure		404	{object}	crmsdk.ErrorResponse	"GROUP_NOT_FOUND"
//	@Router			/v1/groups/{id}/permissions [get].
func (h *GroupsHandler) HandleGetPermissions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	m, err := h.GroupService.PermissionMatrix(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, crmsdk.PermissionsResponse{GroupID: id, Permissions: m})
}

// HandleSavePermissions handles PUT /v1/groups/{id}/permissions
//
//	@Summary		Replace group permissions
//	@Description	Write flags imply view. Rows without view are dropped and at least one section must remain.
//	@Description	Members of the group are notified to reload their permissions.
//	@Tags			Groups
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Group ID"
//	@Param			request	body		crmsdk.PermissionsRequest	true	"Permission matrix"
//	@Success		200		{object}	crmsdk.PermissionsResponse
//	@Failure		400		{object}	crmsdk.ErrorResponse	"INVALID_SECTION or NO_SECTIONS_SELECTED"
//	@Failure		404		{object}	crmsdk.ErrorResponse	"GROUP_NOT_FOUND"
//	@Router			/v1/groups/{id}/permissions [put].
func (h *GroupsHandler) HandleSavePermissions(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.PermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	in := make([]service.PermissionInput, 0, len(req.Permissions))
	for _, p := range req.Permissions {
		in = append(in, service.PermissionInput{SectionKey: p.Section, Permission: p.Permission})
	}

	id := r.PathValue("id")
	m, err := h.GroupService.SavePermissions(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, crmsdk.PermissionsResponse{GroupID: id, Permissions: m})
}
