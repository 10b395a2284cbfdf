package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

// ListAPIKeys returns the consumer API keys.
func (c *Client) ListAPIKeys(ctx context.Context) ([]domain.APIKey, error) {
	var resp struct {
		Keys []domain.APIKey `json:"keys"`
	}
	if err := c.get(ctx, "/api/keys", &resp); err != nil {
		return nil, fmt.Errorf("client.ListAPIKeys: %w", err)
	}
	if resp.Keys == nil {
		resp.Keys = []domain.APIKey{}
	}
	return resp.Keys, nil
}

// CreateAPIKey issues a new key. The returned secret is only ever shown in full here.
func (c *Client) CreateAPIKey(ctx context.Context, name string, role domain.Role) (*domain.APIKey, error) {
	body := map[string]string{"name": name, "role": string(role)}
	var resp struct {
		Key domain.APIKey `json:"key"`
	}
	if err := c.post(ctx, "/api/keys", body, &resp); err != nil {
		return nil, fmt.Errorf("client.CreateAPIKey: %w", err)
	}
	return &resp.Key, nil
}

// DeleteAPIKey revokes the key with the given id.
func (c *Client) DeleteAPIKey(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/keys/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteAPIKey: %w", err)
	}
	return nil
}
