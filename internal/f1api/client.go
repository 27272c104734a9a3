// Package f1api is a thin client for the external Formula 1 statistics API.
// Responses are relayed verbatim; any transport or non-2xx failure collapses
// into ErrUpstream so handlers can answer with a uniform 502.
package f1api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrUpstream indicates the external F1 API was unreachable or returned a
// non-success status.
var ErrUpstream = errors.New("upstream F1 API error")

// Client talks to the external F1 statistics API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the given API base URL. The request timeout is
// fixed; slow upstream responses surface as ErrUpstream.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Fetch GETs a path relative to the API base and returns the JSON body
// verbatim. The payload is not validated against any schema.
func (c *Client) Fetch(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	u := c.baseURL + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("[F1 API] request failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Int("status", resp.StatusCode).Str("path", path).Msg("[F1 API] non-success status")
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUpstream, err)
	}
	return json.RawMessage(body), nil
}
