// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// ErrRateLimited is returned when the service kept responding 429 after all
// attempts. It is distinct from a place that has no match, which returns a
// nil result.
var ErrRateLimited = errors.New("geocode: rate limited")

const maxAttempts = 3

// LatLng is a resolved coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Client resolves place names with a Nominatim-compatible search API.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string

	// step is the linear backoff unit, the wait before attempt n+1 is n*step.
	step time.Duration
}

// NewClient returns a Client. Nominatim's usage policy requires an
// identifying userAgent.
func NewClient(httpClient *http.Client, baseURL string, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		step:      800 * time.Millisecond,
	}
}

// Geocode returns the coordinates of place, restricted to countryCode when it
// is a two letter code. It returns nil without error when the place is empty
// or nothing matches.
func (c *Client) Geocode(ctx context.Context, place string, countryCode string) (*LatLng, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", "1")
	query := place
	if cc := strings.TrimSpace(countryCode); len(cc) == 2 {
		query = place + ", " + strings.ToUpper(cc)
		q.Set("countrycodes", strings.ToLower(cc))
	}
	q.Set("q", query)
	u := c.baseURL + "/search?" + q.Encode()

	results, err := backoff.Retry(ctx, func() ([]searchResult, error) {
		return c.search(ctx, u)
	}, backoff.WithBackOff(&linearBackOff{step: c.step}), backoff.WithMaxTries(maxAttempts))
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, nil
	}
	lat, ok := parseCoord(results[0].Lat)
	if !ok {
		return nil, nil
	}
	lng, ok := parseCoord(results[0].Lon)
	if !ok {
		return nil, nil
	}
	return &LatLng{Lat: lat, Lng: lng}, nil
}

type searchResult struct {
	Lat any `json:"lat"`
	Lon any `json:"lon"`
}

func (c *Client) search(ctx context.Context, u string) ([]searchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("geocode: creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("geocode: sending request: %w", err))
	}
	defer func() {
		_ = res.Body.Close()
	}()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, res.StatusCode)
	case res.StatusCode < 200 || res.StatusCode >= 300:
		return nil, backoff.Permanent(fmt.Errorf("geocode: unexpected status %d", res.StatusCode)) //nolint:err113
	}

	var results []searchResult
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("geocode: decoding response: %w", err))
	}
	return results, nil
}

func parseCoord(v any) (float64, bool) {
	var f float64
	switch v := v.(type) {
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = p
	case float64:
		f = v
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

type linearBackOff struct {
	step     time.Duration
	attempts int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempts++
	return time.Duration(b.attempts) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempts = 0
}
