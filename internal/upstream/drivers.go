package upstream

import (
	"context"
	"net/http"
	"net/url"

	"fleetdash/internal/domain/driver"
)

func (c *Client) ListDrivers(ctx context.Context, token string) ([]driver.Driver, error) {
	var out driver.ListResponse
	if err := c.do(ctx, http.MethodGet, "/drivers/", token, nil, &out); err != nil {
		return nil, err
	}
	if out.Drivers == nil {
		out.Drivers = []driver.Driver{}
	}
	return out.Drivers, nil
}

func (c *Client) GetDriver(ctx context.Context, token, id string) (*driver.Driver, error) {
	var out driver.ItemResponse
	if err := c.do(ctx, http.MethodGet, "/drivers/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Driver, nil
}

func (c *Client) CreateDriver(ctx context.Context, token string, req *driver.CreateDriverRequest) (*driver.Driver, error) {
	var out driver.ItemResponse
	if err := c.do(ctx, http.MethodPost, "/drivers/", token, req, &out); err != nil {
		return nil, err
	}
	return out.Driver, nil
}

func (c *Client) UpdateDriver(ctx context.Context, token, id string, req *driver.UpdateDriverRequest) (*driver.Driver, error) {
	var out driver.ItemResponse
	if err := c.do(ctx, http.MethodPut, "/drivers/"+url.PathEscape(id), token, req, &out); err != nil {
		return nil, err
	}
	return out.Driver, nil
}

func (c *Client) DeleteDriver(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/drivers/"+url.PathEscape(id), token, nil, nil)
}
