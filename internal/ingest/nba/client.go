// Package nba pulls league-wide player statistics from the NBA stats API,
// the primary source for the aggregated player set.
package nba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

const (
	// DefaultBaseURL is the NBA stats API host.
	DefaultBaseURL = "https://stats.nba.com"

	statsEndpoint = "/stats/leaguedashplayerstats"

	requestTimeout = 30 * time.Second
)

// The stats API rejects requests without browser-style headers.
const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	refererNBA       = "https://www.nba.com/"
)

// Client fetches season stat lines. Unlike the supplementary ESPN sources,
// failures here propagate: a partial stats pull is unusable for ranking.
// A circuit breaker stops hammering the provider while it is down.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// New creates a stats client with a custom base URL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	settings := gobreaker.Settings{
		Name: "nba-stats",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[nba-stats] circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// NewClient creates a stats client with default settings.
func NewClient() *Client {
	return New(DefaultBaseURL)
}

// FetchSeasonStats returns the per-game stat line of every player for a
// season, zero-game entries included; filtering is the aggregator's call.
func (c *Client) FetchSeasonStats(ctx context.Context, seasonID string) ([]PlayerLine, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchSeasonStats(ctx, seasonID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]PlayerLine), nil
}

func (c *Client) fetchSeasonStats(ctx context.Context, seasonID string) ([]PlayerLine, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statsURL(seasonID), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", refererNBA)
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching season %s stats: %w", seasonID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats API returned status %d for season %s", resp.StatusCode, seasonID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var payload statsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	lines, diag, err := parseStatLines(&payload)
	if err != nil {
		return nil, err
	}

	log.Printf("[nba-stats] fetched %d player lines for %s in %.2fs (%s)",
		len(lines), seasonID, time.Since(start).Seconds(), diag)
	return lines, nil
}

// statsURL builds the leaguedashplayerstats query. The endpoint requires
// the full parameter set even when most values are empty.
func (c *Client) statsURL(seasonID string) string {
	params := url.Values{}
	for key, value := range map[string]string{
		"College": "", "Conference": "", "Country": "",
		"DateFrom": "", "DateTo": "", "Division": "",
		"DraftPick": "", "DraftYear": "", "GameScope": "",
		"GameSegment": "", "Height": "", "LastNGames": "0",
		"LeagueID": "00", "Location": "", "MeasureType": "Base",
		"Month": "0", "OpponentTeamID": "0", "Outcome": "",
		"PORound": "0", "PaceAdjust": "N", "PerMode": "PerGame",
		"Period": "0", "PlayerExperience": "", "PlayerPosition": "",
		"PlusMinus": "N", "Rank": "N", "SeasonSegment": "",
		"SeasonType": "Regular Season", "ShotClockRange": "",
		"StarterBench": "", "TeamID": "0", "TwoWay": "0",
		"VsConference": "", "VsDivision": "", "Weight": "",
	} {
		params.Set(key, value)
	}
	params.Set("Season", seasonID)

	return c.baseURL + statsEndpoint + "?" + params.Encode()
}
