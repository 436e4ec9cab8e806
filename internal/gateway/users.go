package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/protomem/taskdesk/internal/model"
)

func (c *Client) ListUsers(ctx context.Context, token string) ([]model.User, error) {
	users := make([]model.User, 0)
	if err := c.do(ctx, http.MethodGet, "/api/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// RegisterUser creates an account; the password is only ever sent, never read back.
func (c *Client) RegisterUser(ctx context.Context, token string, in model.User) (model.User, error) {
	in.ID = 0

	var user model.User
	err := c.do(ctx, http.MethodPost, "/api/auth/register", token, in, &user)
	user.Password = ""
	return user, err
}

func (c *Client) UpdateUser(ctx context.Context, token string, id model.ID, in model.User) (model.User, error) {
	in.ID = id

	var user model.User
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d", id), token, in, &user)
	user.Password = ""
	return user, err
}

func (c *Client) DeleteUser(ctx context.Context, token string, id model.ID) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), token, nil, nil)
}

func (c *Client) Analytics(ctx context.Context, token string) ([]model.Analytics, error) {
	rows := make([]model.Analytics, 0)
	if err := c.do(ctx, http.MethodGet, "/api/users/analytics", token, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
