// Package client is a Go client for the f1kz backend. It mirrors what the
// web frontend does: a session manager that persists the bearer token and
// clears it on authorization failures, and a keyed request cache with
// in-flight de-duplication over the F1 proxy endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Cache invalidation tags for the F1 query endpoints.
const (
	TagDrivers   = "Drivers"
	TagTeams     = "Teams"
	TagRaces     = "Races"
	TagStandings = "Standings"
	TagResults   = "Results"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the f1kz backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *QueryCache
}

// New creates a Client for the given backend base URL (e.g.
// "http://localhost:8080/api").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      NewQueryCache(5 * time.Minute),
	}
}

// do performs a request and decodes the response. Error bodies of the shape
// {"message": ...} become *APIError so callers can inspect the status.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Message string `json:"message"`
		}
		message := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Message != "" {
			message = errBody.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

// query runs a cached GET against a proxy endpoint. Identical concurrent
// requests share one backend call.
func (c *Client) query(ctx context.Context, path string, params url.Values, tags ...string) (json.RawMessage, error) {
	key := path
	if len(params) > 0 {
		key += "?" + params.Encode()
	}
	return c.cache.GetOrFetch(ctx, key, tags, func(ctx context.Context) (json.RawMessage, error) {
		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, key, "", nil, &raw); err != nil {
			return nil, err
		}
		return raw, nil
	})
}

// InvalidateTags drops every cached query carrying one of the tags.
func (c *Client) InvalidateTags(tags ...string) {
	c.cache.Invalidate(tags...)
}

// Drivers fetches the full driver list.
func (c *Client) Drivers(ctx context.Context) (json.RawMessage, error) {
	return c.query(ctx, "/f1api/drivers", nil, TagDrivers)
}

// DriverByID fetches a single driver.
func (c *Client) DriverByID(ctx context.Context, id string) (json.RawMessage, error) {
	return c.query(ctx, "/f1api/drivers/"+url.PathEscape(id), nil, TagDrivers)
}

// SearchDrivers searches drivers by free text.
func (c *Client) SearchDrivers(ctx context.Context, q string) (json.RawMessage, error) {
	return c.query(ctx, "/f1api/drivers/search", url.Values{"q": {q}}, TagDrivers)
}

// Teams fetches the full team list.
func (c *Client) Teams(ctx context.Context) (json.RawMessage, error) {
	return c.query(ctx, "/f1api/teams", nil, TagTeams)
}

// TeamByID fetches a single team.
func (c *Client) TeamByID(ctx context.Context, id string) (json.RawMessage, error) {
	return c.query(ctx, "/f1api/teams/"+url.PathEscape(id), nil, TagTeams)
}

// TeamDrivers fetches a team's current drivers.
func (c *Client) TeamDrivers(ctx context.Context, id string) (json.RawMessage, error) {
	return c.query(ctx, "/f1api/teams/"+url.PathEscape(id)+"/drivers", nil, TagTeams)
}

// SearchTeams searches teams by free text.
func (c *Client) SearchTeams(ctx context.Context, q string) (json.RawMessage, error) {
	return c.query(ctx, "/f1api/teams/search", url.Values{"q": {q}}, TagTeams)
}

// LastSessionResult fetches results of the most recent session; name is one
// of fp1, fp2, fp3, qualy, race, sprint/qualy, sprint/race.
func (c *Client) LastSessionResult(ctx context.Context, name string) (json.RawMessage, error) {
	return c.query(ctx, "/f1api/last/"+name, nil, TagResults)
}

// DriverStandings fetches the current drivers' championship.
func (c *Client) DriverStandings(ctx context.Context) (json.RawMessage, error) {
	return c.query(ctx, "/f1api/standings/drivers", nil, TagStandings)
}

// TeamStandings fetches the current constructors' championship.
func (c *Client) TeamStandings(ctx context.Context) (json.RawMessage, error) {
	return c.query(ctx, "/f1api/standings/teams", nil, TagStandings)
}

// Races fetches the current season's race calendar.
func (c *Client) Races(ctx context.Context) (json.RawMessage, error) {
	return c.query(ctx, "/f1api/races", nil, TagRaces)
}

// RacesYear fetches a season's calendar.
func (c *Client) RacesYear(ctx context.Context, year int) (json.RawMessage, error) {
	return c.query(ctx, fmt.Sprintf("/f1api/races/%d", year), nil, TagRaces)
}

// RaceRound fetches one round of a season.
func (c *Client) RaceRound(ctx context.Context, year, round int) (json.RawMessage, error) {
	return c.query(ctx, fmt.Sprintf("/f1api/races/%d/%d", year, round), nil, TagRaces)
}
