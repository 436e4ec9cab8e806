package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/protomem/taskdesk/internal/model"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for an access token.
// Rejected credentials yield an error matching model.ErrUnauthorized.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", creds, &out); err != nil {
		var serr *StatusError
		if errors.As(err, &serr) && serr.StatusCode == http.StatusBadRequest {
			return "", fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
		}
		return "", err
	}

	if out.AccessToken == "" {
		return "", fmt.Errorf("gateway: login: empty access token: %w", model.ErrUnauthorized)
	}
	return out.AccessToken, nil
}

// Me resolves the profile of the token holder, including the authoritative role.
func (c *Client) Me(ctx context.Context, token string) (model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodGet, "/api/users/me", token, nil, &user)
	return user, err
}
