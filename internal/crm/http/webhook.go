package http

import (
	"io"
	"net/http"

	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/matheuspina/avaliatec/pkg/httpx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

const maxWebhookBytes = 5 << 20

type WebhookHandler struct {
	WebhookService *service.WebhookService
}

// ServeHTTP receives Evolution API events.
//
//	@Summary		Evolution API webhook
//	@Description	Verifies the optional X-Webhook-Signature (hex HMAC-SHA256 of the body, sha256= prefix allowed) and processes the event.
//	@Description	Any delivery with a valid signature is acknowledged with 200; failures are recorded and retried server side.
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			X-Webhook-Signature	header		string					false	"HMAC-SHA256 of the body"
//	@Success		200					{object}	crmsdk.WebhookResponse	"processed, duplicate, ignored or logged"
//	@Failure		401					{object}	crmsdk.ErrorResponse	"INVALID_SIGNATURE"
//	@Router			/v1/webhooks/evolution [post].
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeBadRequest, "Failed to read body")
		return
	}

	if err := h.WebhookService.VerifySignature(body, r.Header.Get("X-Webhook-Signature")); err != nil {
		slogx.FromContext(r.Context()).Warn("webhook signature rejected")
		writeServiceError(w, r, err)
		return
	}

	outcome := h.WebhookService.Handle(r.Context(), body)
	httpx.WriteJSON(w, http.StatusOK, crmsdk.WebhookResponse{Status: string(outcome)})
}
