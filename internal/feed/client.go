package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Client talks to a dataflow manager's REST API. All reads are idempotent;
// the client never mutates manager state. No request timeout is set: a hung
// fetch simply delays the next poll.
type Client struct {
	baseURL  string
	clientID string
	http     *http.Client
}

// NewClient creates a Client for the manager at baseURL
// (e.g. "http://localhost:8001").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: uuid.NewString(),
		http:     &http.Client{},
	}
}

// ClientID returns the identifier sent with every request, used to correlate
// monitor log lines with manager-side access logs.
func (c *Client) ClientID() string {
	return c.clientID
}

// CloseIdleConnections drops kept-alive connections, e.g. after the last
// feed using this client stopped.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-ID", c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: manager returned %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response of %s: %w", path, err)
	}
	return nil
}

// Sessions lists the sessions currently known to the manager.
func (c *Client) Sessions(ctx context.Context) ([]SessionInfo, error) {
	var sessions []SessionInfo
	if err := c.get(ctx, "/api/sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GraphSpec fetches the physical graph of a session, keyed by oid.
func (c *Client) GraphSpec(ctx context.Context, sessionID string) (map[string]DropSpec, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("graph spec: empty session id")
	}
	var specs []DropSpec
	path := "/api/sessions/" + url.PathEscape(sessionID) + "/graph"
	if err := c.get(ctx, path, &specs); err != nil {
		return nil, err
	}
	byOID := make(map[string]DropSpec, len(specs))
	for _, spec := range specs {
		if spec.OID == "" {
			continue
		}
		byOID[spec.OID] = spec
	}
	return byOID, nil
}

// GraphStatus fetches the ordered status list of a session. When rootOID is
// non-empty the manager scopes the response to that drop's subtree.
func (c *Client) GraphStatus(ctx context.Context, sessionID, rootOID string) ([]DropStatus, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("graph status: empty session id")
	}
	path := "/api/sessions/" + url.PathEscape(sessionID) + "/graph/status"
	if rootOID != "" {
		path += "?root=" + url.QueryEscape(rootOID)
	}
	var statuses []DropStatus
	if err := c.get(ctx, path, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}
