package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/circle-dev/circle/shared/api"
	"github.com/circle-dev/circle/shared/domain"
	"github.com/circle-dev/circle/shared/utils"
)

// GetReplies returns an empty slice when the API omits the replies field.
func (c *APIClient) GetReplies(ctx context.Context, threadId domain.ThreadId) ([]domain.Reply, error) {
	var resp api.RepliesResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/threads/%d/replies", threadId), &resp); err != nil {
		return nil, err
	}

	replies := make([]domain.Reply, len(resp.Replies))
	for i, r := range resp.Replies {
		replies[i] = r.ToDomain()
	}
	return replies, nil
}

func (c *APIClient) CreateReply(ctx context.Context, threadId domain.ThreadId, data api.CreateReplyRequest) (*domain.Reply, error) {
	if err := utils.Validate(data); err != nil {
		return nil, err
	}
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("cannot encode reply: %w", err)
	}

	path := fmt.Sprintf("/threads/%d/replies", threadId)
	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Some deployments answer 200, others 201.
	if resp.StatusCode != http.StatusCreated {
		if err := checkStatus(resp, http.StatusOK, path); err != nil {
			return nil, err
		}
	}

	var created api.CreateReplyResponse
	if err := utils.DecodeValidate(resp.Body, &created); err != nil {
		return nil, fmt.Errorf("cannot decode created reply: %w", err)
	}
	reply := created.Reply.ToDomain()
	return &reply, nil
}
