package crmsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateInvite invites an email address into a group. An empty GroupID uses
// the default group. Admin only.
func (c *Client) CreateInvite(ctx context.Context, req CreateInviteRequest) (*CreateInviteResponse, error) {
	resp, err := c.doAuthRequest(ctx, http.MethodPost, "/v1/invites", req)
	if err != nil {
		return nil, err
	}

	var out CreateInviteResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateInvite checks an invite token without consuming it.
// This is a public endpoint (no authentication required).
func (c *Client) ValidateInvite(ctx context.Context, token string) (*ValidateInviteResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/invites/validate?token="+url.QueryEscape(token), nil, nil)
	if err != nil {
		return nil, err
	}

	var out ValidateInviteResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptInvite redeems an invite for the identity behind the client's token
// and returns the created user.
func (c *Client) AcceptInvite(ctx context.Context, token string) (*User, error) {
	resp, err := c.doAuthRequest(ctx, http.MethodPost, "/v1/invites/accept", AcceptInviteRequest{Token: token})
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// Bootstrap creates the first administrator and the built-in groups.
// This is a public endpoint guarded by the bootstrap token.
func (c *Client) Bootstrap(ctx context.Context, bootstrapToken string, req BootstrapRequest) (*BootstrapResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/bootstrap", req, map[string]string{
		"X-Bootstrap-Token": bootstrapToken,
	})
	if err != nil {
		return nil, err
	}

	var out BootstrapResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
