package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"febos_exporter/internal/types"
)

type realtimeRequest struct {
	InputGroupGetCodeList []string `json:"inputGroupGetCodeList"`
}

// RealtimeData retrieves the current values of the given input groups.
// An empty group list makes no request.
func (c *Client) RealtimeData(ctx context.Context, installationID int64, groupCodes []string) ([]types.RealtimeEntry, error) {
	if len(groupCodes) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(realtimeRequest{InputGroupGetCodeList: groupCodes})
	if err != nil {
		return nil, fmt.Errorf("encode realtime request: %w", err)
	}

	path := fmt.Sprintf("/api/v1/installation/%d/realtime-data", installationID)
	data, err := c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var entries []types.RealtimeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal realtime data: %w", err)
	}

	return entries, nil
}
