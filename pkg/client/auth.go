package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

// LoginResponse is the payload returned by a successful credential exchange.
type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login exchanges a username and password for a bearer token. No credential
// is attached to this call.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp LoginResponse
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", body, &resp, false); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	if resp.Token == "" {
		return nil, errors.New("client.Login: response carried no token")
	}
	return &resp, nil
}

// Verify validates the current credential and returns the operator profile.
func (c *Client) Verify(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/auth/verify", &u); err != nil {
		return nil, fmt.Errorf("client.Verify: %w", err)
	}
	return &u, nil
}
