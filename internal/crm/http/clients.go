package http

import (
	"net/http"

	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/matheuspina/avaliatec/pkg/httpx"
)

// ClientsHandler serves the CRM client registry (section clientes).
type ClientsHandler struct {
	ClientService *service.ClientService
}

func clientInput(req crmsdk.ClientRequest) service.ClientInput {
	return service.ClientInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Document: req.Document,
		Notes:    req.Notes,
	}
}

// HandleList handles GET /v1/clients
//
//	@Summary		List clients
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			search		query		string	false	"Name, email, phone or document fragment"
//	@Param			page		query		int		false	"Page, from 1"
//	@Param			per_page	query		int		false	"Page size, max 100"
//	@Success		200			{object}	crmsdk.ClientListResponse
//	@Failure		403			{object}	crmsdk.ErrorResponse	"FORBIDDEN"
//	@Router			/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := max(httpx.QueryInt(r, "page", 1), 1)
	perPage := min(max(httpx.QueryInt(r, "per_page", service.DefaultPageSize), 1), service.MaxPageSize)

	clients, total, err := h.ClientService.List(r.Context(), r.URL.Query().Get("search"), perPage, (page-1)*perPage)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, crmsdk.ClientListResponse{
		Clients: mapSlice(clients, toClient),
		Total:   total,
	})
}

// HandleGet handles GET /v1/clients/{id}
//
//	@Summary		Get client
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Client ID"
//	@Success		200	{object}	crmsdk.CRMClient
//	@Failure		404	{object}	crmsdk.ErrorResponse	"CLIENT_NOT_FOUND"
//	@Router			/v1/clients/{id} [get].
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.ClientService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toClient(c))
}

// HandleCreate handles POST /v1/clients
//
//	@Summary		Create client
//	@Description	The phone is stored as digits only and unlinked WhatsApp contacts are matched against it.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		crmsdk.ClientRequest	true	"Client"
//	@Success		201		{object}	crmsdk.CRMClient
//	@Failure		400		{object}	crmsdk.ErrorResponse	"INVALID_CLIENT"
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.ClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	c, err := h.ClientService.Create(r.Context(), clientInput(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toClient(c))
}

// HandleUpdate handles PUT /v1/clients/{id}
//
//	@Summary		Update client
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Client ID"
//	@Param			request	body		crmsdk.ClientRequest	true	"Client"
//	@Success		200		{object}	crmsdk.CRMClient
//	@Failure		400		{object}	crmsdk.ErrorResponse	"INVALID_CLIENT"
//	@Failure		404		{object}	crmsdk.ErrorResponse	"CLIENT_NOT_FOUND"
//	@Router			/v1/clients/{id} [put].
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.ClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	c, err := h.ClientService.Update(r.Context(), r.PathValue("id"), clientInput(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toClient(c))
}

// HandleDelete handles DELETE /v1/clients/{id}
//
//	@Summary		Delete client
//	@Tags			Clients
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Client ID"
//	@Success		204	"Client deleted"
//	@Failure		404	{object}	crmsdk.ErrorResponse	"CLIENT_NOT_FOUND"
//	@Router			/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.ClientService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
