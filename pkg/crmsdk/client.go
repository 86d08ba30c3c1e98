package crmsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for authenticated calls. The token is
// issued by the external identity provider; the SDK never refreshes it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken returns a TokenSource that always yields token.
func StaticToken(token string) TokenSource {
	return TokenFunc(func(context.Context) (string, error) {
		if token == "" {
			return "", ErrNoToken
		}
		return token, nil
	})
}

// Client is a client for the CRM service.
type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	TokenSource TokenSource
}

// NewClient creates a client. tokens may be nil when only public endpoints
// are used.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		TokenSource: tokens,
	}
}
