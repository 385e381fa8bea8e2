package positions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
)

// APIClient fetches positions from an ephemeris HTTP service. The wire
// format is a JSON object keyed by lowercase planet name; unknown bodies
// (lunar nodes, asteroids) are skipped rather than rejected.
type APIClient struct {
	name    string
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a position API client. Returns nil if baseURL is
// empty (tier disabled).
func NewAPIClient(name, baseURL string, timeout time.Duration) *APIClient {
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &APIClient{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the tier label this client was configured with.
func (c *APIClient) Name() string {
	return c.name
}

// wirePosition is one body's entry in the ephemeris response.
type wirePosition struct {
	Sign           string  `json:"sign"`
	Degree         float64 `json:"degree"`
	ExactLongitude float64 `json:"exactLongitude"`
	IsRetrograde   bool    `json:"isRetrograde"`
}

// Fetch retrieves positions for the given moment and optional location.
func (c *APIClient) Fetch(ctx context.Context, at time.Time, loc *Location) (astro.PlanetaryPositions, error) {
	q := url.Values{}
	q.Set("datetime", at.UTC().Format(time.RFC3339))
	if loc != nil {
		q.Set("latitude", fmt.Sprintf("%.4f", loc.Latitude))
		q.Set("longitude", fmt.Sprintf("%.4f", loc.Longitude))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build positions request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("positions API call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read positions response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("positions API error %d: %s", resp.StatusCode, string(body))
	}

	var wire map[string]wirePosition
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("parse positions: %w", err)
	}

	out := make(astro.PlanetaryPositions, len(wire))
	for name, wp := range wire {
		planet := astro.Planet(name)
		if !planet.Valid() {
			continue
		}
		out[planet] = astro.Position{
			Sign:       astro.Sign(wp.Sign),
			Degree:     wp.Degree,
			Retrograde: wp.IsRetrograde,
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("positions response had no known bodies")
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("positions response invalid: %w", err)
	}
	return out, nil
}
