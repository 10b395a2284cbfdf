package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

// IndicatorList is the response of the IOC listing endpoint.
type IndicatorList struct {
	IOCs  []domain.Indicator `json:"iocs"`
	Count int                `json:"count"`
}

// CreateIndicatorRequest is the payload for submitting a new IOC. Exactly one
// of the value fields (Domain, IP, URL, Hash, Email) is expected to be set.
type CreateIndicatorRequest struct {
	Domain   string `json:"domain,omitempty"`
	IP       string `json:"ip,omitempty"`
	URL      string `json:"url,omitempty"`
	Hash     string `json:"hash,omitempty"`
	HashType string `json:"hash_type,omitempty"`
	Email    string `json:"email,omitempty"`

	Category    string `json:"category"`
	Feed        string `json:"feed"`
	Comment     string `json:"comment"`
	AccessLevel string `json:"access_level"`

	ThreatActor string   `json:"threat_actor,omitempty"`
	Malware     string   `json:"malware,omitempty"`
	Campaign    string   `json:"campaign,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ListIndicators fetches IOCs, optionally restricted to one feed.
func (c *Client) ListIndicators(ctx context.Context, feed string) (*IndicatorList, error) {
	path := "/api/iocs"
	if feed != "" {
		params := url.Values{}
		params.Set("feed", feed)
		path += "?" + params.Encode()
	}
	var list IndicatorList
	if err := c.get(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("client.ListIndicators: %w", err)
	}
	return &list, nil
}

// CreateIndicator submits a new IOC. The created record is not returned; callers re-list.
func (c *Client) CreateIndicator(ctx context.Context, req CreateIndicatorRequest) error {
	if err := c.post(ctx, "/api/ioc", req, nil); err != nil {
		return fmt.Errorf("client.CreateIndicator: %w", err)
	}
	return nil
}

// DeleteIndicator removes value from feed.
func (c *Client) DeleteIndicator(ctx context.Context, value, feed string) error {
	params := url.Values{}
	params.Set("feed", feed)
	path := "/api/ioc/" + url.PathEscape(value) + "?" + params.Encode()
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("client.DeleteIndicator: %w", err)
	}
	return nil
}
