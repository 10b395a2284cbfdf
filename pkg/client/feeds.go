package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

// ListFeeds returns every feed with its indicator count and access tier.
// Feeds whose tier the backend omitted come back as domain.DefaultAccessLevel.
func (c *Client) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	var resp struct {
		Feeds []domain.Feed `json:"feeds"`
	}
	if err := c.get(ctx, "/api/feeds", &resp); err != nil {
		return nil, fmt.Errorf("client.ListFeeds: %w", err)
	}
	feeds := make([]domain.Feed, 0, len(resp.Feeds))
	for _, f := range resp.Feeds {
		feeds = append(feeds, f.Normalize())
	}
	return feeds, nil
}

// SetFeedAccessLevel asks the backend to change a feed's tier. The response
// body is ignored; callers re-list to read the confirmed tier.
func (c *Client) SetFeedAccessLevel(ctx context.Context, name string, level domain.AccessLevel) error {
	body := map[string]string{"access_level": string(level)}
	path := "/api/feeds/" + url.PathEscape(name) + "/permissions"
	if err := c.doRequest(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("client.SetFeedAccessLevel: %w", err)
	}
	return nil
}
