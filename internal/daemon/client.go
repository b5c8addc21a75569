package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	clientTimeout = 2 * time.Second
	maxBodySize   = 8 << 20
)

// ErrNotReady is returned while the daemon has not finished its first poll.
var ErrNotReady = errors.New("daemon: no projection yet")

// Client reads a running daemon's HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the daemon listening on addr
// ("127.0.0.1:8788" or a full http:// URL).
func NewClient(addr string) *Client {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		base: addr,
		http: &http.Client{Timeout: clientTimeout},
	}
}

// Status fetches /v1/status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.getJSON(ctx, "/v1/status", &st)
	return st, err
}

// Projection fetches /v1/projection. months < 0 asks for every month.
func (c *Client) Projection(ctx context.Context, months int) (ProjectionResponse, error) {
	path := "/v1/projection"
	if months >= 0 {
		path += "?" + url.Values{"months": {strconv.Itoa(months)}}.Encode()
	}
	var pr ProjectionResponse
	err := c.getJSON(ctx, path, &pr)
	return pr, err
}

// Events fetches the retained event buffer, oldest first.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var events []Event
	err := c.getJSON(ctx, "/v1/events", &events)
	return events, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("daemon: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("daemon: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return ErrNotReady
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("daemon: unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("daemon: parsing %s: %w", path, err)
	}
	return nil
}
