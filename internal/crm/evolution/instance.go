package evolution

import (
	"context"
	"net/http"
)

// QRCode is the pairing material returned while an instance is connecting.
type QRCode struct {
	PairingCode string `json:"pairingCode"`
	Code        string `json:"code"`
	Base64      string `json:"base64"`
	Count       int    `json:"count"`
}

// Image returns the renderable QR code, preferring the base64 image.
func (q QRCode) Image() string {
	if q.Base64 != "" {
		return q.Base64
	}
	return q.Code
}

type CreateInstanceResponse struct {
	Instance struct {
		InstanceName string `json:"instanceName"`
		InstanceID   string `json:"instanceId"`
		Status       string `json:"status"`
	} `json:"instance"`
	Hash   any    `json:"hash"`
	QRCode QRCode `json:"qrcode"`
}

// CreateInstance registers a new Baileys instance on the gateway.
func (c *Client) CreateInstance(ctx context.Context, name string) (*CreateInstanceResponse, error) {
	req := map[string]any{
		"instanceName": name,
		"qrcode":       true,
		"integration":  "WHATSAPP-BAILEYS",
	}

	var out CreateInstanceResponse
	if err := c.call(ctx, http.MethodPost, "/instance/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WebhookEvents are the events the service consumes.
var WebhookEvents = []string{
	"MESSAGES_UPSERT",
	"MESSAGES_UPDATE",
	"CONNECTION_UPDATE",
	"QRCODE_UPDATED",
	"CONTACTS_UPSERT",
}

// SetWebhook points the instance's webhook at url.
func (c *Client) SetWebhook(ctx context.Context, name, url string) error {
	req := map[string]any{
		"webhook": map[string]any{
			"enabled":         true,
			"url":             url,
			"webhookByEvents": false,
			"webhookBase64":   false,
			"events":          WebhookEvents,
		},
	}
	return c.call(ctx, http.MethodPost, instancePath("/webhook/set/", name), req, nil)
}

// Connect starts a pairing session and returns the QR code.
func (c *Client) Connect(ctx context.Context, name string) (*QRCode, error) {
	var out QRCode
	if err := c.call(ctx, http.MethodGet, instancePath("/instance/connect/", name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConnectionState returns the gateway's view of the session: open, close or connecting.
func (c *Client) ConnectionState(ctx context.Context, name string) (string, error) {
	var out struct {
		Instance struct {
			State string `json:"state"`
		} `json:"instance"`
	}
	if err := c.call(ctx, http.MethodGet, instancePath("/instance/connectionState/", name), nil, &out); err != nil {
		return "", err
	}
	return out.Instance.State, nil
}

func (c *Client) Logout(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodDelete, instancePath("/instance/logout/", name), nil, nil)
}

func (c *Client) DeleteInstance(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodDelete, instancePath("/instance/delete/", name), nil, nil)
}
