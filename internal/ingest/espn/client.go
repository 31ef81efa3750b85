package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is ESPN's public site API.
	DefaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports"

	basketballNBA = "basketball/nba"

	requestTimeout = 10 * time.Second

	// Connection pool bounds shared by the concurrent roster fan-out.
	maxPooledConns  = 30
	maxConnsPerHost = 10
)

// browserUserAgent is sent on every request; ESPN rejects Go's default
// client fingerprint.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client handles ESPN API requests for the injury feed and team rosters.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates an ESPN client with a custom base URL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:    maxPooledConns,
				MaxConnsPerHost: maxConnsPerHost,
			},
		},
	}
}

// NewClient creates an ESPN client with default settings.
func NewClient() *Client {
	return New(DefaultBaseURL)
}

// get performs one GET and decodes the JSON document.
func (c *Client) get(ctx context.Context, url string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ESPN returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return result, nil
}
