package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"febos_exporter/internal/types"
)

// Slaves retrieves the slave register listing of a device.
func (c *Client) Slaves(ctx context.Context, installationID, deviceID int64) ([]types.Slave, error) {
	path := fmt.Sprintf("/api/v1/installation/%d/device/%d/febos-slave", installationID, deviceID)

	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var slaves []types.Slave
	if err := json.Unmarshal(data, &slaves); err != nil {
		return nil, fmt.Errorf("unmarshal slaves: %w", err)
	}

	return slaves, nil
}
