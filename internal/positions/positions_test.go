package positions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
)

type stubProvider struct {
	name   string
	fail   bool
	calls  int
	result astro.PlanetaryPositions
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Fetch(context.Context, time.Time, *Location) (astro.PlanetaryPositions, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("service down")
	}
	return p.result, nil
}

func testChart() astro.PlanetaryPositions {
	return astro.PlanetaryPositions{
		astro.Sun:  {Sign: astro.Leo, Degree: 10},
		astro.Moon: {Sign: astro.Cancer, Degree: 3},
	}
}

func newTestService(providers ...Provider) *Service {
	cfg := Config{BreakerThreshold: 5, BreakerOpenFor: time.Minute}
	s := NewService(cfg, nil)
	for _, p := range providers {
		s.addProvider(p, cfg)
	}
	return s
}

func TestBreakerTripsAtThreshold(t *testing.T) {
	b := newBreaker("test", 5, time.Minute)

	for i := 0; i < 4; i++ {
		b.Failure()
		if !b.Allow() {
			t.Fatalf("breaker open after %d failures, want threshold 5", i+1)
		}
	}
	b.Failure()
	if b.Allow() {
		t.Fatal("breaker still closed after 5 failures")
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := newBreaker("test", 1, 20*time.Millisecond)
	b.Failure()
	if b.Allow() {
		t.Fatal("breaker closed immediately after trip")
	}

	time.Sleep(30 * time.Millisecond)
	if !b.Allow() {
		t.Fatal("breaker did not half-open after timeout")
	}
	b.Success()
	if !b.Allow() {
		t.Fatal("breaker not closed after half-open success")
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := newBreaker("test", 1, 20*time.Millisecond)
	b.Failure()
	time.Sleep(30 * time.Millisecond)
	if !b.Allow() {
		t.Fatal("breaker did not half-open")
	}
	b.Failure()
	if b.Allow() {
		t.Fatal("breaker closed after failed half-open probe")
	}
}

func TestServicePrimaryServes(t *testing.T) {
	primary := &stubProvider{name: "primary", result: testChart()}
	s := newTestService(primary)

	res, err := s.Current(context.Background(), nil)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if res.Tier != TierPrimary {
		t.Fatalf("Tier = %s, want primary", res.Tier)
	}
	if res.Stale {
		t.Fatal("fresh primary result flagged stale")
	}
	if res.Positions[astro.Sun].Sign != astro.Leo {
		t.Fatalf("Sun sign = %s, want leo", res.Positions[astro.Sun].Sign)
	}
}

func TestServiceFallsToSecondary(t *testing.T) {
	primary := &stubProvider{name: "primary", fail: true}
	secondary := &stubProvider{name: "secondary", result: testChart()}
	s := newTestService(primary, secondary)

	res, err := s.Current(context.Background(), nil)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if res.Tier != TierSecondary {
		t.Fatalf("Tier = %s, want secondary", res.Tier)
	}
	if primary.calls != 1 {
		t.Fatalf("primary calls = %d, want 1", primary.calls)
	}
}

func TestServiceCachedTier(t *testing.T) {
	primary := &stubProvider{name: "primary", result: testChart()}
	s := newTestService(primary)

	if _, err := s.Current(context.Background(), nil); err != nil {
		t.Fatalf("warm-up fetch: %v", err)
	}

	primary.fail = true
	res, err := s.Current(context.Background(), nil)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if res.Tier != TierCached {
		t.Fatalf("Tier = %s, want cached", res.Tier)
	}
	if !res.Stale {
		t.Fatal("cached result not flagged stale")
	}
	if res.Positions[astro.Sun].Sign != astro.Leo {
		t.Fatalf("cached Sun sign = %s, want leo", res.Positions[astro.Sun].Sign)
	}
}

func TestServiceDefaultTier(t *testing.T) {
	primary := &stubProvider{name: "primary", fail: true}
	s := newTestService(primary)

	res, err := s.Current(context.Background(), nil)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if res.Tier != TierDefault {
		t.Fatalf("Tier = %s, want default", res.Tier)
	}
	if !res.Stale {
		t.Fatal("default result not flagged stale")
	}
	if res.Positions[astro.Sun].Sign != astro.Aries {
		t.Fatalf("default Sun sign = %s, want aries", res.Positions[astro.Sun].Sign)
	}
}

func TestServiceUnavailable(t *testing.T) {
	cfg := Config{DisableDefault: true}
	s := NewService(cfg, nil)
	s.addProvider(&stubProvider{name: "primary", fail: true}, cfg)

	_, err := s.Current(context.Background(), nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestServiceBreakerSkipsTrippedProvider(t *testing.T) {
	primary := &stubProvider{name: "primary", fail: true}
	s := newTestService(primary)

	for i := 0; i < 6; i++ {
		s.Current(context.Background(), nil)
	}
	if primary.calls != 5 {
		t.Fatalf("primary calls = %d, want 5 before breaker opens", primary.calls)
	}
}

func TestAPIClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("datetime") == "" {
			t.Error("request missing datetime parameter")
		}
		w.Write([]byte(`{
			"sun": {"sign": "aries", "degree": 8.5, "isRetrograde": false},
			"venus": {"sign": "pisces", "degree": 29.08, "isRetrograde": true},
			"northNode": {"sign": "pisces", "degree": 26.88, "isRetrograde": true}
		}`))
	}))
	defer srv.Close()

	c := NewAPIClient("primary", srv.URL, time.Second)
	got, err := c.Fetch(context.Background(), time.Now(), &Location{Latitude: 40.75, Longitude: -73.8})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("parsed %d bodies, want 2 (nodes skipped)", len(got))
	}
	if !got[astro.Venus].Retrograde {
		t.Fatal("Venus retrograde flag lost")
	}
	if got[astro.Sun].Degree != 8.5 {
		t.Fatalf("Sun degree = %v, want 8.5", got[astro.Sun].Degree)
	}
}

func TestAPIClientRejectsBadResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
		code int
	}{
		{"unknown sign", `{"sun": {"sign": "ophiuchus", "degree": 1}}`, http.StatusOK},
		{"no known bodies", `{"northNode": {"sign": "pisces", "degree": 1}}`, http.StatusOK},
		{"server error", `upstream exploded`, http.StatusBadGateway},
		{"malformed json", `{"sun": `, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewAPIClient("primary", srv.URL, time.Second)
			if _, err := c.Fetch(context.Background(), time.Now(), nil); err == nil {
				t.Fatal("Fetch accepted a bad response")
			}
		})
	}
}

func TestNewAPIClientDisabled(t *testing.T) {
	if c := NewAPIClient("primary", "", time.Second); c != nil {
		t.Fatal("NewAPIClient with empty URL should return nil")
	}
}

func TestDefaultChartValid(t *testing.T) {
	chart := DefaultChart()
	if err := chart.Validate(); err != nil {
		t.Fatalf("default chart invalid: %v", err)
	}
	if len(chart) != 10 {
		t.Fatalf("default chart has %d bodies, want 10", len(chart))
	}
}
