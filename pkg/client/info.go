package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jSherz/break-glass-access/internal/api"
	"github.com/jSherz/break-glass-access/internal/buildinfo"
)

// Info fetches build information from the server.
func (c *Client) Info(ctx context.Context) (*buildinfo.Info, error) {
	var info buildinfo.Info
	if err := c.get(ctx, c.url(api.AboutRoute), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.url(api.HealthCheckRoute), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, nil)
}
