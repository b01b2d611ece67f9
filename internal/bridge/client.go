package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to the settlement bridge. The bridge custodies delegated
// markets and records committed pool state; the engine stays authoritative
// for balances until release.
type Client struct {
	BaseURL string
	APIKey  string

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	HTTP *http.Client
}

// Enabled reports whether a bridge endpoint is configured at all. With no
// base URL the settlement surface stays local-only.
func (c *Client) Enabled() bool {
	return c != nil && strings.TrimSpace(c.BaseURL) != ""
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (c *Client) Login(ctx context.Context) error {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return errors.New("bridge base url is empty")
	}
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return errors.New("bridge api key is empty")
	}

	body, _ := json.Marshal(map[string]any{"api_key": apiKey})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bridge login http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var lr loginResponse
	if err := json.Unmarshal(b, &lr); err != nil {
		return err
	}
	exp, _ := time.Parse(time.RFC3339, strings.TrimSpace(lr.ExpiresAt))

	c.mu.Lock()
	c.token = strings.TrimSpace(lr.Token)
	c.expiresAt = exp
	c.mu.Unlock()
	return nil
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) EnsureToken(ctx context.Context) error {
	c.mu.RLock()
	tok := c.token
	exp := c.expiresAt
	c.mu.RUnlock()
	if strings.TrimSpace(tok) == "" {
		return c.Login(ctx)
	}
	if !exp.IsZero() && time.Until(exp) < 2*time.Minute {
		return c.Login(ctx)
	}
	return nil
}

type DelegateRequest struct {
	MarketID string `json:"market_id"`
}

type CommitRequest struct {
	MarketID string          `json:"market_id"`
	State    json.RawMessage `json:"state"`
	// Release tells the bridge this is the final commit for the market
	// and custody ends with it.
	Release bool `json:"release,omitempty"`
}

type AuditRequest struct {
	Agent   string         `json:"agent"`
	Action  string         `json:"action"`
	Level   string         `json:"level"`
	Details map[string]any `json:"details"`
}

type refResponse struct {
	Ref string `json:"ref"`
}

// Delegate hands a market's settlement over to the bridge and returns the
// bridge's reference for the delegation.
func (c *Client) Delegate(ctx context.Context, marketID string) (string, error) {
	return c.post(ctx, "/v1/delegations", DelegateRequest{MarketID: marketID})
}

// Commit records the market's current state snapshot with the bridge.
func (c *Client) Commit(ctx context.Context, marketID string, state json.RawMessage) (string, error) {
	return c.post(ctx, "/v1/commits", CommitRequest{MarketID: marketID, State: state})
}

// CommitAndRelease records a final snapshot and ends the bridge's custody.
func (c *Client) CommitAndRelease(ctx context.Context, marketID string, state json.RawMessage) (string, error) {
	return c.post(ctx, "/v1/commits", CommitRequest{MarketID: marketID, State: state, Release: true})
}

// Audit ships one best-effort audit entry.
func (c *Client) Audit(ctx context.Context, req AuditRequest) error {
	_, err := c.post(ctx, "/v1/audit", req)
	return err
}

func (c *Client) post(ctx context.Context, path string, payload any) (string, error) {
	if err := c.EnsureToken(ctx); err != nil {
		return "", err
	}
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Authorization", "Bearer "+c.Token())

	resp, err := c.httpClient().Do(hreq)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	bb, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bridge %s http %d: %s", path, resp.StatusCode, strings.TrimSpace(string(bb)))
	}
	var rr refResponse
	_ = json.Unmarshal(bb, &rr)
	return strings.TrimSpace(rr.Ref), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}
