package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	internal_errors "github.com/circle-dev/circle/shared/errors"
	"github.com/circle-dev/circle/shared/utils"
)

// APIClient struct handles all communication with the feed API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a client for the feed API rooted at baseURL.
func New(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		BaseURL:    baseURL,
		HttpClient: &http.Client{Timeout: timeout},
	}
}

// do is the single, unified helper for making API requests.
func (c *APIClient) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed api unavailable: %w", err)
	}
	return resp, nil
}

// getJSON issues a GET and decodes a validated body into out.
func (c *APIClient) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.StatusOK, path); err != nil {
		return err
	}
	return utils.DecodeValidate(resp.Body, out)
}

func checkStatus(resp *http.Response, want int, path string) error {
	if resp.StatusCode == want {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &internal_errors.ErrorWithStatusCode{
		Message:    fmt.Sprintf("%s: feed api returned %d: %s", path, resp.StatusCode, body),
		StatusCode: resp.StatusCode,
	}
}
