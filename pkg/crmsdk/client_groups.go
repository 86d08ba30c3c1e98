package crmsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListGroups returns every group with its member count. Admin only.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	resp, err := c.doAuthRequest(ctx, http.MethodGet, "/v1/groups", nil)
	if err != nil {
		return nil, err
	}

	var list GroupListResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return list.Groups, nil
}

// CreateGroup creates a group with no permissions. Admin only.
func (c *Client) CreateGroup(ctx context.Context, req GroupRequest) (*Group, error) {
	resp, err := c.doAuthRequest(ctx, http.MethodPost, "/v1/groups", req)
	if err != nil {
		return nil, err
	}

	var g Group
	if err := decodeJSON(resp, &g, http.StatusCreated); err != nil {
		return nil, err
	}
	return &g, nil
}

// DeleteGroup deletes a group. A group with members fails with code
// GROUP_HAS_USERS and APIError.UserCount set.
func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	resp, err := c.doAuthRequest(ctx, http.MethodDelete, "/v1/groups/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// GroupPermissions returns the group's full permission matrix.
func (c *Client) GroupPermissions(ctx context.Context, id string) (*PermissionsResponse, error) {
	resp, err := c.doAuthRequest(ctx, http.MethodGet, "/v1/groups/"+url.PathEscape(id)+"/permissions", nil)
	if err != nil {
		return nil, err
	}

	var out PermissionsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGroupPermissions replaces the group's permission matrix. Members of
// the group receive a permissions_changed event.
func (c *Client) UpdateGroupPermissions(ctx context.Context, id string, entries []PermissionEntry) (*PermissionsResponse, error) {
	resp, err := c.doAuthRequest(ctx, http.MethodPut, "/v1/groups/"+url.PathEscape(id)+"/permissions",
		PermissionsRequest{Permissions: entries})
	if err != nil {
		return nil, err
	}

	var out PermissionsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
