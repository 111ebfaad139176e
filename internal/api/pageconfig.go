package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"febos_exporter/internal/types"
)

// PageConfig retrieves the topology of an installation: devices, things and
// the pages listing every input.
func (c *Client) PageConfig(ctx context.Context, installationID int64) (*types.PageConfig, error) {
	path := fmt.Sprintf("/api/v1/installation/%d/page-config", installationID)

	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var cfg types.PageConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal page config: %w", err)
	}

	return &cfg, nil
}
