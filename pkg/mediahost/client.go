package mediahost

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/placement-portal-api/pkg/config"
)

// Client talks to the external host storing student photographs. Deletions are
// best effort: callers aggregate failures instead of retrying inline.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a media host client from configuration.
func NewClient(cfg config.MediaHostConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a host is configured at all.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// DeleteAsset removes a single hosted asset by reference.
func (c *Client) DeleteAsset(ctx context.Context, reference string) error {
	return c.delete(ctx, "/assets/"+url.PathEscape(reference))
}

// DeleteFolder removes a hosted folder and its remaining contents.
func (c *Client) DeleteFolder(ctx context.Context, reference string) error {
	return c.delete(ctx, "/folders/"+url.PathEscape(reference))
}

func (c *Client) delete(ctx context.Context, path string) error {
	if !c.Enabled() {
		return fmt.Errorf("media host not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Already-gone assets count as deleted.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("media host returned status %d", resp.StatusCode)
	}
	return nil
}
