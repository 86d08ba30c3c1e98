package crm_test

import (
	"net/http"
	"testing"

	"github.com/matheuspina/avaliatec/pkg/crmsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitBootstrapEndpoint verifies that /v1/bootstrap uses the strict
// profile (5 req/min per IP).
func TestRateLimitBootstrapEndpoint(t *testing.T) {
	baseURL := setupCRMContainerWithDefaultRateLimits(t)
	client := crmsdk.NewClient(baseURL, nil)

	req := crmsdk.BootstrapRequest{AuthID: adminAuthID, Email: adminEmail, Name: "Administrador"}

	for i := range 5 {
		_, err := client.Bootstrap(t.Context(), "wrong-token", req)
		var apiErr *crmsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.Status, "Request %d should fail auth, not rate limit", i+1)
	}

	_, err := client.Bootstrap(t.Context(), "wrong-token", req)
	var apiErr *crmsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	require.Equal(t, "RATE_LIMITED", apiErr.Code)
	require.Positive(t, apiErr.RetryAfter)
}
