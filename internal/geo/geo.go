// Package geo supplies best-effort device coordinates for identification
// hints. Lookups are bounded and never an error: when the position cannot be
// determined within the budget the caller proceeds without one.
package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Locator resolves the device's position. ok is false when the position is
// unavailable, denied, or the lookup timed out.
type Locator interface {
	Locate(ctx context.Context) (coords Coordinates, ok bool)
}

// Timeout bounds every lookup, matching the original client's 5s budget.
const Timeout = 5 * time.Second

// IPLocator approximates the device position from its public IP address.
type IPLocator struct {
	// Endpoint must answer GET with {"lat": float, "lon": float}.
	Endpoint   string
	HTTPClient *http.Client
}

// NewIPLocator returns a locator backed by ip-api.com.
func NewIPLocator() *IPLocator {
	return &IPLocator{
		Endpoint:   "http://ip-api.com/json/?fields=lat,lon",
		HTTPClient: &http.Client{Timeout: Timeout},
	}
}

func (l *IPLocator) Locate(ctx context.Context) (Coordinates, bool) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Endpoint, nil)
	if err != nil {
		return Coordinates{}, false
	}
	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return Coordinates{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, false
	}

	var coords Coordinates
	if err := json.NewDecoder(resp.Body).Decode(&coords); err != nil {
		return Coordinates{}, false
	}
	if coords.Latitude == 0 && coords.Longitude == 0 {
		return Coordinates{}, false
	}
	return coords, true
}

// NoLocation is a Locator that never resolves a position.
type NoLocation struct{}

func (NoLocation) Locate(context.Context) (Coordinates, bool) { return Coordinates{}, false }

// Fixed is a Locator returning a constant position, for tests.
type Fixed Coordinates

func (f Fixed) Locate(context.Context) (Coordinates, bool) { return Coordinates(f), true }
