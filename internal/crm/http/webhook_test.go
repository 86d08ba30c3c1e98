package http_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/matheuspina/avaliatec/pkg/cryptox"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/stretchr/testify/require"
)

func postWebhook(t *testing.T, env *testEnv, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/evolution", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func sign(body string) string {
	return "sha256=" + cryptox.SignatureSHA256([]byte(testWebhookSecret), []byte(body))
}

func TestWebhookSignature(t *testing.T) {
	env := newTestEnv(t)
	body := `{"event":"connection.update","instance":"principal","data":{"state":"open"},"date_time":"2025-03-10T12:00:00.000Z"}`

	requireError(t, postWebhook(t, env, body, ""), http.StatusUnauthorized, "INVALID_SIGNATURE")
	requireError(t, postWebhook(t, env, body, sign(body+" ")), http.StatusUnauthorized, "INVALID_SIGNATURE")

	// Malformed JSON with a valid signature is acknowledged
	rec := postWebhook(t, env, "{not json", sign("{not json"))
	requireStatus(t, rec, http.StatusOK)
	require.Equal(t, "logged", decode[crmsdk.WebhookResponse](t, rec).Status)
}

func TestWebhookConnectionUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	inst := domain.Instance{ID: idx.New().String(), Name: "principal", Status: domain.InstanceConnecting, QRCode: "qr"}
	require.NoError(t, env.store.Instances().CreateInstance(ctx, inst))

	body := `{"event":"connection.update","instance":"principal","data":{"state":"open","wuid":"5511912345678@s.whatsapp.net"},"date_time":"2025-03-10T12:00:00.000Z"}`

	rec := postWebhook(t, env, body, sign(body))
	requireStatus(t, rec, http.StatusOK)
	require.Equal(t, "processed", decode[crmsdk.WebhookResponse](t, rec).Status)

	got, err := env.store.Instances().GetInstanceByID(ctx, inst.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InstanceConnected, got.Status)
	require.Empty(t, got.QRCode)
	require.Equal(t, "5511912345678", got.Phone)

	rec = postWebhook(t, env, body, sign(body))
	requireStatus(t, rec, http.StatusOK)
	require.Equal(t, "duplicate", decode[crmsdk.WebhookResponse](t, rec).Status)

	other := `{"event":"presence.update","instance":"principal","data":{},"date_time":"2025-03-10T12:00:01.000Z"}`
	rec = postWebhook(t, env, other, sign(other))
	requireStatus(t, rec, http.StatusOK)
	require.Equal(t, "ignored", decode[crmsdk.WebhookResponse](t, rec).Status)
}
