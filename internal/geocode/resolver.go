package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// UnknownLocation is the sentinel name returned when neither the external
// lookup nor the local fallback can name the coordinates.
const UnknownLocation = "unknown location"

// Coordinates is a geodesic point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Place is a resolved location. Coordinates are absent for the sentinel
// "unknown location" result.
type Place struct {
	Name        string       `json:"name"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Resolver answers reverse-geocoding queries: external endpoint first, local
// places table on any upstream failure, sentinel when the table is empty too.
type Resolver struct {
	endpoint string
	client   *http.Client
	places   *PlacesStore
	log      *slog.Logger
}

// NewResolver returns a Resolver. An empty endpoint disables the external
// lookup entirely; timeout bounds each upstream call.
func NewResolver(endpoint string, timeout time.Duration, places *PlacesStore, log *slog.Logger) *Resolver {
	return &Resolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		places:   places,
		log:      log,
	}
}

// Reverse resolves (lat, lon) to a named place. Upstream failures are
// recovered via the fallback table and never surface to the caller; only a
// fallback store failure returns an error.
func (r *Resolver) Reverse(ctx context.Context, lat, lon float64) (Place, error) {
	if r.endpoint != "" {
		place, err := r.lookupExternal(ctx, lat, lon)
		if err == nil {
			return place, nil
		}
		r.log.Debug("external geocode failed, using fallback",
			slog.Float64("lat", lat),
			slog.Float64("lon", lon),
			slog.String("error", err.Error()))
	}

	place, found, err := r.places.Nearest(ctx, lat, lon)
	if err != nil {
		return Place{}, err
	}
	if !found {
		return Place{Name: UnknownLocation}, nil
	}
	return place, nil
}

// externalResult is the response contract of the platform's geocoding
// service: a name plus the matched coordinates.
type externalResult struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func (r *Resolver) lookupExternal(ctx context.Context, lat, lon float64) (Place, error) {
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return Place{}, fmt.Errorf("geocode: endpoint: %w", err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("geocode: building request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("geocode: external lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("geocode: external lookup: status %d", resp.StatusCode)
	}

	var result externalResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Place{}, fmt.Errorf("geocode: decoding external response: %w", err)
	}
	if result.Name == "" {
		return Place{}, fmt.Errorf("geocode: external response missing name")
	}

	return Place{
		Name:        result.Name,
		Coordinates: &Coordinates{Lat: result.Lat, Lon: result.Lon},
	}, nil
}
