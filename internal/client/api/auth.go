package api

import (
	"context"
	"net/http"

	"github.com/virapagina/virapagina/internal/client/models"
)

// Login exchanges credentials for the user record and a bearer token.
// Wrong credentials come back as ErrUnauthorized.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.LoginResponse, error) {
	body, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: creds})
	if err != nil {
		return models.LoginResponse{}, err
	}

	var resp models.LoginResponse
	if err := decodeInto(body, "login response", &resp); err != nil {
		return models.LoginResponse{}, err
	}
	if resp.ID == 0 || resp.Token == "" {
		return models.LoginResponse{}, shapeError("login response without id or token", nil)
	}
	return resp, nil
}

// Signup registers a new account. A taken e-mail comes back as ErrConflict.
func (c *Client) Signup(ctx context.Context, form models.SignupForm) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/signup", body: form})
	return err
}
