package evolution

import (
	"context"
	"net/http"
)

// MessageKey identifies a message on the gateway.
type MessageKey struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

type SendTextResponse struct {
	Key    MessageKey `json:"key"`
	Status string     `json:"status"`
}

// SendText sends a plain text message to number (digits only, with country code).
func (c *Client) SendText(ctx context.Context, instance, number, text string) (*SendTextResponse, error) {
	req := map[string]any{
		"number": number,
		"text":   text,
	}

	var out SendTextResponse
	if err := c.call(ctx, http.MethodPost, instancePath("/message/sendText/", instance), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
