package http

import (
	"net/http"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/matheuspina/avaliatec/pkg/httpx"
)

type MessagesHandler struct {
	MessageService *service.MessageService
}

// HandleList handles GET /v1/whatsapp/messages
//
//	@Summary		List conversation messages
//	@Description	Returns up to limit messages older than before in chronological order. next_before and next_before_id are the cursor of the previous page.
//	@Tags			WhatsApp
//	@Produce		json
//	@Security		BearerAuth
//	@Param			contactId	query		string	true	"Contact ID"
//	@Param			limit		query		int		false	"Page size, default 50, max 100"
//	@Param			before		query		string	false	"RFC 3339 timestamp cursor"
//	@Param			before_id	query		string	false	"Message ID cursor, paired with before"
//	@Success		200			{object}	crmsdk.MessageListResponse
//	@Failure		400			{object}	crmsdk.ErrorResponse
//	@Failure		404			{object}	crmsdk.ErrorResponse	"CONTACT_NOT_FOUND"
//	@Router			/v1/whatsapp/messages [get].
func (h *MessagesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contactID := q.Get("contactId")
	if contactID == "" {
		contactID = q.Get("contact_id")
	}
	if contactID == "" {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeBadRequest, "contactId is required")
		return
	}

	var before time.Time
	if raw := q.Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, httpx.CodeBadRequest, "before must be an RFC 3339 timestamp")
			return
		}
		before = t
	}

	page, err := h.MessageService.List(r.Context(), contactID, httpx.QueryInt(r, "limit", service.DefaultMessagePage), before, q.Get("before_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, crmsdk.MessageListResponse{
		Messages:     mapSlice(page.Messages, toMessage),
		NextBefore:   page.NextBefore,
		NextBeforeID: page.NextBeforeID,
	})
}

// HandleSend handles POST /v1/whatsapp/messages
//
//	@Summary		Send a text message
//	@Description	Sends at most one message per second per instance. The message is stored before the gateway call and marked sent or failed after it.
//	@Tags			WhatsApp
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		crmsdk.SendMessageRequest	true	"Message"
//	@Success		201		{object}	crmsdk.Message
//	@Failure		400		{object}	crmsdk.ErrorResponse	"EMPTY_MESSAGE"
//	@Failure		404		{object}	crmsdk.ErrorResponse	"CONTACT_NOT_FOUND"
//	@Failure		429		{object}	crmsdk.ErrorResponse	"RATE_LIMITED"
//	@Failure		503		{object}	crmsdk.ErrorResponse	"SERVICE_UNAVAILABLE"
//	@Router			/v1/whatsapp/messages [post].
func (h *MessagesHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.SendMessageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	sender, _ := UserFromContext(r.Context())
	msg, err := h.MessageService.Send(r.Context(), sender.ID, req.ContactID, req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toMessage(msg))
}

// HandleContacts handles GET /v1/whatsapp/contacts
//
//	@Summary		List contacts
//	@Tags			WhatsApp
//	@Produce		json
//	@Security		BearerAuth
//	@Param			instance_id	query		string	false	"Instance ID"
//	@Success		200			{object}	crmsdk.ContactListResponse
//	@Router			/v1/whatsapp/contacts [get].
func (h *MessagesHandler) HandleContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.MessageService.Contacts(r.Context(), r.URL.Query().Get("instance_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, crmsdk.ContactListResponse{Contacts: mapSlice(contacts, toContact)})
}
