package upstream

import (
	"context"
	"net/http"
	"net/url"

	"fleetdash/internal/domain/vehicle"
)

func (c *Client) ListVehicles(ctx context.Context, token string) ([]vehicle.Vehicle, error) {
	var out vehicle.ListResponse
	if err := c.do(ctx, http.MethodGet, "/vehicles/", token, nil, &out); err != nil {
		return nil, err
	}
	if out.Vehicles == nil {
		out.Vehicles = []vehicle.Vehicle{}
	}
	return out.Vehicles, nil
}

func (c *Client) GetVehicle(ctx context.Context, token, id string) (*vehicle.Vehicle, error) {
	var out vehicle.ItemResponse
	if err := c.do(ctx, http.MethodGet, "/vehicles/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Vehicle, nil
}

func (c *Client) CreateVehicle(ctx context.Context, token string, req *vehicle.CreateVehicleRequest) (*vehicle.Vehicle, error) {
	var out vehicle.ItemResponse
	if err := c.do(ctx, http.MethodPost, "/vehicles/", token, req, &out); err != nil {
		return nil, err
	}
	return out.Vehicle, nil
}

func (c *Client) UpdateVehicle(ctx context.Context, token, id string, req *vehicle.UpdateVehicleRequest) (*vehicle.Vehicle, error) {
	var out vehicle.ItemResponse
	if err := c.do(ctx, http.MethodPut, "/vehicles/"+url.PathEscape(id), token, req, &out); err != nil {
		return nil, err
	}
	return out.Vehicle, nil
}

func (c *Client) DeleteVehicle(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/vehicles/"+url.PathEscape(id), token, nil, nil)
}
