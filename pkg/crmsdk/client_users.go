package crmsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Me returns the current user with their resolved permissions and the
// navigation items they can see.
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	resp, err := c.doAuthRequest(ctx, http.MethodGet, "/v1/users/me", nil)
	if err != nil {
		return nil, err
	}

	var me MeResponse
	if err := decodeJSON(resp, &me, http.StatusOK); err != nil {
		return nil, err
	}
	return &me, nil
}

// ListUsers returns one page of users. Zero page or perPage lets the server
// pick its defaults.
func (c *Client) ListUsers(ctx context.Context, search string, page, perPage int) (*UserListResponse, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}

	path := "/v1/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.doAuthRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var list UserListResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateUser changes a user's name, group or status. Admin only.
func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	resp, err := c.doAuthRequest(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}
