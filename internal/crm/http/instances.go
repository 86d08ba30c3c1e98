package http

import (
	"net/http"

	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/matheuspina/avaliatec/pkg/httpx"
)

// InstancesHandler manages WhatsApp gateway instances (section atendimento).
type InstancesHandler struct {
	InstanceService *service.InstanceService
}

// HandleList handles GET /v1/whatsapp/instances
//
//	@Summary		List WhatsApp instances
//	@Tags			WhatsApp
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	crmsdk.InstanceListResponse
//	@Failure		403	{object}	crmsdk.ErrorResponse	"FORBIDDEN"
//	@Router			/v1/whatsapp/instances [get].
func (h *InstancesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	instances, err := h.InstanceService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, crmsdk.InstanceListResponse{Instances: mapSlice(instances, toInstance)})
}

// HandleCreate handles POST /v1/whatsapp/instances
//
//	@Summary		Create WhatsApp instance
//	@Description	Creates the gateway instance, registers the webhook and persists it. Completed steps are undone when a later one fails.
//	@Tags			WhatsApp
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		crmsdk.CreateInstanceRequest	true	"Instance"
//	@Success		201		{object}	crmsdk.Instance
//	@Failure		400		{object}	crmsdk.ErrorResponse	"INVALID_INSTANCE_NAME"
//	@Failure		409		{object}	crmsdk.ErrorResponse	"NAME_EXISTS"
//	@Failure		502		{object}	crmsdk.ErrorResponse	"GATEWAY_ERROR"
//	@Failure		503		{object}	crmsdk.ErrorResponse	"SERVICE_UNAVAILABLE"
//	@Router			/v1/whatsapp/instances [post].
func (h *InstancesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.CreateInstanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	actor, _ := UserFromContext(r.Context())
	inst, err := h.InstanceService.Create(r.Context(), actor.ID, service.InstanceInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInstance(inst))
}

// HandleConnect handles POST /v1/whatsapp/instances/{id}/connect
//
//	@Summary		Connect instance
//	@Description	Starts pairing and returns the instance with its QR code.
//	@Tags			WhatsApp
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Instance ID"
//	@Success		200	{object}	crmsdk.Instance
//	@Failure		404	{object}	crmsdk.ErrorResponse	"INSTANCE_NOT_FOUND"
//	@Failure		503	{object}	crmsdk.ErrorResponse	"SERVICE_UNAVAILABLE"
//	@Router			/v1/whatsapp/instances/{id}/connect [post].
func (h *InstancesHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	inst, err := h.InstanceService.Connect(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInstance(inst))
}

// HandleDisconnect handles POST /v1/whatsapp/instances/{id}/disconnect
//
//	@Summary		Disconnect instance
//	@Tags			WhatsApp
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Instance ID"
//	@Success		200	{object}	crmsdk.Instance
//	@Failure		404	{object}	crmsdk.ErrorResponse	"INSTANCE_NOT_FOUND"
//	@Router			/v1/whatsapp/instances/{id}/disconnect [post].
func (h *InstancesHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	inst, err := h.InstanceService.Disconnect(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInstance(inst))
}

// HandleDelete handles DELETE /v1/whatsapp/instances/{id}
//
//	@Summary		Delete instance
//	@Description	The gateway instance is removed best effort; the local record is always deleted.
//	@Tags			WhatsApp
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Instance ID"
//	@Success		204	"Instance deleted"
//	@Failure		404	{object}	crmsdk.ErrorResponse	"INSTANCE_NOT_FOUND"
//	@Router			/v1/whatsapp/instances/{id} [delete].
func (h *InstancesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.InstanceService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
