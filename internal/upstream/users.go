package upstream

import (
	"context"
	"net/http"
	"net/url"

	"fleetdash/internal/domain/user"
)

// ListUsers returns every account. Only admins, managers and the master account may call it.
func (c *Client) ListUsers(ctx context.Context, token string) (*user.ListResponse, error) {
	var out user.ListResponse
	if err := c.do(ctx, http.MethodGet, "/users/", token, nil, &out); err != nil {
		return nil, err
	}
	if out.Users == nil {
		out.Users = []user.User{}
	}
	return &out, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, token, phone string, role user.Role) (*user.User, error) {
	var out user.ItemResponse
	body := user.UpdateRoleRequest{Role: role}
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(phone)+"/role", token, body, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) DeleteUser(ctx context.Context, token, phone string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(phone), token, nil, nil)
}
