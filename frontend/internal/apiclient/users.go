package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/circle-dev/circle/shared/api"
	"github.com/circle-dev/circle/shared/domain"
	"github.com/circle-dev/circle/shared/utils"
)

// GetUsers fetches the full user listing. The endpoint is unpaginated.
func (c *APIClient) GetUsers(ctx context.Context) ([]domain.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.StatusOK, "/users"); err != nil {
		return nil, err
	}

	var listing api.UsersResponse
	if err := utils.Decode(resp.Body, &listing.Users); err != nil {
		return nil, fmt.Errorf("cannot decode users response: %w", err)
	}
	if err := utils.Validate(listing); err != nil {
		return nil, err
	}

	users := make([]domain.User, len(listing.Users))
	for i, u := range listing.Users {
		users[i] = u.ToDomain()
	}
	return users, nil
}

// Ping checks that the feed API answers.
func (c *APIClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp, http.StatusOK, "/users")
}
