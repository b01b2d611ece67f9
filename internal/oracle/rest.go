package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RESTClient fetches the latest published price for a feed over HTTP.
type RESTClient struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oracle API error (%d): %s", e.Status, e.Body)
}

func NewRESTClient(httpClient *http.Client, host string) *RESTClient {
	if host == "" {
		host = "https://hermes.pyth.network"
	}
	host = strings.TrimRight(host, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &RESTClient{
		host:       host,
		httpClient: httpClient,
	}
}

type latestResponse struct {
	Parsed []feedUpdate `json:"parsed"`
}

func (c *RESTClient) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// LatestPrices fetches the newest reading for each feed in one request.
// Feeds the upstream does not know are simply absent from the result.
func (c *RESTClient) LatestPrices(ctx context.Context, feedIDs []string) ([]*Price, error) {
	if len(feedIDs) == 0 {
		return nil, nil
	}
	query := url.Values{}
	for _, id := range feedIDs {
		query.Add("ids[]", id)
	}
	body, err := c.doRequest(ctx, "/v2/updates/price/latest", query)
	if err != nil {
		return nil, err
	}
	var parsed latestResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("oracle: decode latest response: %w", err)
	}
	out := make([]*Price, 0, len(parsed.Parsed))
	for _, u := range parsed.Parsed {
		p, err := u.normalize()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// LatestPrice fetches the newest reading for a single feed.
func (c *RESTClient) LatestPrice(ctx context.Context, feedID string) (*Price, error) {
	if feedID == "" {
		return nil, fmt.Errorf("feed id is required")
	}
	prices, err := c.LatestPrices(ctx, []string{feedID})
	if err != nil {
		return nil, err
	}
	for _, p := range prices {
		if equalFeedID(p.FeedID, feedID) {
			return p, nil
		}
	}
	return nil, ErrUnavailable
}

// GetPrice implements PriceSource directly against the REST endpoint.
func (c *RESTClient) GetPrice(ctx context.Context, feedID string, now time.Time, maxStaleness time.Duration) (*Price, error) {
	p, err := c.LatestPrice(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if maxStaleness > 0 && now.Sub(p.PublishedAt) > maxStaleness {
		return nil, ErrStalePrice
	}
	return p, nil
}

// equalFeedID compares feed identifiers ignoring case and an optional 0x
// prefix; the upstream echoes ids without the prefix.
func equalFeedID(a, b string) bool {
	return canonicalFeedID(a) == canonicalFeedID(b)
}

func canonicalFeedID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "0x")
}

var _ PriceSource = (*RESTClient)(nil)
