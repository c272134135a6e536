package status

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxStatusBody caps how much of the status document we read. Relay
// status pages are a few KB even with hundreds of mounts.
const maxStatusBody = 4 << 20

// Client fetches and decodes the relay's status document.
type Client struct {
	url string
	hc  *http.Client
}

// NewClient returns a Client for the given status endpoint URL.
func NewClient(statusURL string) *Client {
	return &Client{
		url: statusURL,
		hc:  newRetryableHTTPClient(1),
	}
}

// URL returns the status endpoint this client polls.
func (c *Client) URL() string {
	return c.url
}

// Fetch performs one GET of the status endpoint and parses the response.
// Any transport failure, non-2xx status or malformed body is returned as
// an error; callers treat all of them the same way (log and skip the
// cycle).
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("status fetch request error: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status fetch error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("status fetch: endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusBody))
	if err != nil {
		return nil, fmt.Errorf("status fetch read error: %w", err)
	}

	return ParseSnapshot(body)
}
