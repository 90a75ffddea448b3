package apiclient

import (
	"context"
	"fmt"

	"github.com/circle-dev/circle/shared/api"
	"github.com/circle-dev/circle/shared/domain"
)

// GetThread returns nil without error when the API answers 200 with no thread.
func (c *APIClient) GetThread(ctx context.Context, threadId domain.ThreadId) (*domain.Thread, error) {
	var resp api.ThreadResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/threads/%d", threadId), &resp); err != nil {
		return nil, err
	}
	if resp.Thread == nil {
		return nil, nil
	}
	thread := resp.Thread.ToDomain()
	return &thread, nil
}
