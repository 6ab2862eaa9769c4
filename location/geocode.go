package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// GeocoderConfig configures the geocoding service client.
type GeocoderConfig struct {
	BaseURL string
	APIKey  string
}

// HTTPGeocoder calls a Google-style geocoding JSON API.
type HTTPGeocoder struct {
	cfg    GeocoderConfig
	client *http.Client
}

// NewHTTPGeocoder creates a geocoder client.
func NewHTTPGeocoder(cfg GeocoderConfig) *HTTPGeocoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://maps.googleapis.com"
	}
	return &HTTPGeocoder{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []AddressComponent `json:"address_components"`
	} `json:"results"`
}

// Geocode looks up an address and returns the address components of the
// first result. ZERO_RESULTS yields an empty component list, not an error.
func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) ([]AddressComponent, error) {
	u := fmt.Sprintf("%s/maps/api/geocode/json?address=%s&key=%s",
		g.cfg.BaseURL, url.QueryEscape(address), url.QueryEscape(g.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading geocode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode error %d: %s", resp.StatusCode, string(body))
	}

	var out geocodeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding geocode response: %w", err)
	}

	switch out.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("geocode status %s", out.Status)
	}

	if len(out.Results) == 0 {
		return nil, nil
	}
	return out.Results[0].AddressComponents, nil
}
