package http

import (
	"net/http"

	"github.com/matheuspina/avaliatec/internal/crm/realtime"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

// RealtimeHandler upgrades GET /v1/realtime to a websocket for the current
// user. Browsers pass the token as the access_token query parameter.
//
//	@Summary		Realtime events
//	@Description	Websocket stream of JSON events such as {"type":"permissions_changed"}.
//	@Tags			Realtime
//	@Security		BearerAuth
//	@Param			access_token	query	string	false	"Bearer token for browser websockets"
//	@Success		101				"Switching protocols"
//	@Failure		401				{object}	crmsdk.ErrorResponse
//	@Router			/v1/realtime [get].
func RealtimeHandler(hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := UserFromContext(r.Context())
		if err := hub.ServeWS(w, r, u.ID); err != nil {
			// The upgrader has already written the HTTP error.
			slogx.FromContext(r.Context()).Warn("websocket upgrade failed", "error", err)
		}
	}
}
