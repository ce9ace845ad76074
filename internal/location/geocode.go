package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ktecheletronicos/loja/internal/domain"
	"github.com/ktecheletronicos/loja/pkg/httpclient"
)

// GeocoderConfig holds the reverse-geocoding provider endpoints.
type GeocoderConfig struct {
	// PrimaryURL is the full-detail provider, queried with ?lat=&lng=.
	PrimaryURL string

	// FallbackURL is the coarse provider, queried with
	// ?latitude=&longitude=&localityLanguage=pt. It only yields locality
	// and city, never street-level detail.
	FallbackURL string

	// PrimaryTimeout bounds the primary lookup before falling back.
	PrimaryTimeout time.Duration
}

// Geocoder resolves coordinates into form-ready address fields. The primary
// provider returns a Nominatim-style nested address; when it fails or times
// out, a coarse fallback fills in locality and city only.
type Geocoder struct {
	cfg    GeocoderConfig
	http   *httpclient.Client
	logger *slog.Logger
}

// NewGeocoder creates a geocoder with the given providers.
func NewGeocoder(cfg GeocoderConfig, client *httpclient.Client, logger *slog.Logger) *Geocoder {
	if cfg.PrimaryTimeout <= 0 {
		cfg.PrimaryTimeout = 10 * time.Second
	}
	return &Geocoder{cfg: cfg, http: client, logger: logger}
}

type primaryResponse struct {
	Body struct {
		Address *primaryAddress `json:"address"`
	} `json:"body"`
}

type primaryAddress struct {
	Road          string `json:"road"`
	HouseNumber   string `json:"house_number"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	Quarter       string `json:"quarter"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Municipality  string `json:"municipality"`
	Village       string `json:"village"`
	State         string `json:"state"`
}

type fallbackResponse struct {
	Locality string `json:"locality"`
	City     string `json:"city"`
}

// ReverseGeocode resolves a coordinate into an Address. Primary provider
// failures are logged and counted, then the fallback is tried; its partial
// answer is better than an empty form.
func (g *Geocoder) ReverseGeocode(ctx context.Context, loc domain.Coordinate) (domain.Address, error) {
	addr, err := g.primary(ctx, loc)
	if err == nil {
		return addr, nil
	}

	g.logger.WarnContext(ctx, "primary reverse geocode failed, using fallback",
		slog.Float64("lat", loc.Latitude),
		slog.Float64("lng", loc.Longitude),
		slog.String("error", err.Error()),
	)
	geocodeFallbacksTotal.Inc()

	return g.fallback(ctx, loc)
}

func (g *Geocoder) primary(ctx context.Context, loc domain.Coordinate) (domain.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.PrimaryTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("lat", formatCoord(loc.Latitude))
	q.Set("lng", formatCoord(loc.Longitude))

	resp, err := g.http.Get(ctx, g.cfg.PrimaryURL+"?"+q.Encode())
	if err != nil {
		return domain.Address{}, fmt.Errorf("primary geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return domain.Address{}, &httpclient.StatusError{StatusCode: resp.StatusCode, URL: g.cfg.PrimaryURL}
	}

	var body primaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Address{}, fmt.Errorf("decode primary geocode response: %w", err)
	}

	if body.Body.Address == nil {
		return domain.Address{}, fmt.Errorf("primary geocode: no address in response")
	}

	return composeAddress(body.Body.Address), nil
}

func (g *Geocoder) fallback(ctx context.Context, loc domain.Coordinate) (domain.Address, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(loc.Latitude))
	q.Set("longitude", formatCoord(loc.Longitude))
	q.Set("localityLanguage", "pt")

	resp, err := g.http.Get(ctx, g.cfg.FallbackURL+"?"+q.Encode())
	if err != nil {
		return domain.Address{}, fmt.Errorf("fallback geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return domain.Address{}, &httpclient.StatusError{StatusCode: resp.StatusCode, URL: g.cfg.FallbackURL}
	}

	var body fallbackResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Address{}, fmt.Errorf("decode fallback geocode response: %w", err)
	}

	return domain.Address{
		Neighborhood: body.Locality,
		City:         body.City,
	}, nil
}

// composeAddress flattens the nested provider address into form fields.
func composeAddress(addr *primaryAddress) domain.Address {
	out := domain.Address{
		Street:      addr.Road,
		HouseNumber: addr.HouseNumber,
	}

	switch {
	case addr.Neighbourhood != "" && addr.Suburb != "":
		out.Neighborhood = addr.Neighbourhood + " - Bairro: " + addr.Suburb
	case addr.Neighbourhood != "":
		out.Neighborhood = addr.Neighbourhood
	case addr.Suburb != "":
		out.Neighborhood = addr.Suburb
	case addr.Quarter != "":
		out.Neighborhood = addr.Quarter
	}

	city := firstNonEmpty(addr.City, addr.Town, addr.Municipality, addr.Village)
	if city != "" {
		if uf := StateAbbreviation(strings.TrimSpace(addr.State)); uf != "" {
			out.City = city + " - " + uf
		} else {
			out.City = city
		}
	}

	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

