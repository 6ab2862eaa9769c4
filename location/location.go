// Package location infers the patient's geographic region from report
// text using an entity recognition collaborator and a geocoding service.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Sentinel values reported when extraction or geocoding yields nothing.
const (
	NoLocation = "No location found"
	NoState    = "State not found"
)

var (
	// ErrRecognizer wraps entity recognition collaborator failures.
	ErrRecognizer = errors.New("location: entity recognition failed")

	// ErrGeocode wraps geocoding collaborator failures.
	ErrGeocode = errors.New("location: geocoding failed")
)

// Info is the resolved location of a report.
type Info struct {
	Location string `json:"location_name"`
	State    string `json:"state_name"`
}

// Entity is a named entity detected in text.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Recognizer is the entity recognition collaborator.
type Recognizer interface {
	Entities(ctx context.Context, text string) ([]Entity, error)
}

// AddressComponent is one component of a geocoding result.
type AddressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

// Geocoder resolves an address query to its address components.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]AddressComponent, error)
}

// adminAreaType is the geocoding provider's tag for a state/province
// level region component.
const adminAreaType = "administrative_area_level_1"

// Resolver extracts a place name from text and resolves it to a state.
type Resolver struct {
	recognizer Recognizer
	geocoder   Geocoder
	country    string
}

// NewResolver creates a resolver. Geocoding lookups are constrained to
// the given country.
func NewResolver(rec Recognizer, geo Geocoder, country string) *Resolver {
	return &Resolver{recognizer: rec, geocoder: geo, country: country}
}

// Resolve finds place entities in the text and geocodes the first one.
// When no place entity is detected it returns the sentinel Info without
// issuing a geocoding call. Recognizer and geocoder failures propagate.
func (r *Resolver) Resolve(ctx context.Context, text string) (Info, error) {
	entities, err := r.recognizer.Entities(ctx, text)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrRecognizer, err)
	}

	var place string
	for _, e := range entities {
		if e.Label == "GPE" || e.Label == "LOC" {
			place = e.Text
			break // first detected location wins; no ranking
		}
	}
	if place == "" {
		return Info{Location: NoLocation, State: NoState}, nil
	}

	query := place
	if r.country != "" {
		query = place + ", " + r.country
	}
	components, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %q: %w", ErrGeocode, place, err)
	}

	for _, c := range components {
		for _, t := range c.Types {
			if t == adminAreaType {
				return Info{Location: place, State: c.LongName}, nil
			}
		}
	}

	slog.Warn("location: no administrative area in geocode response", "place", place)
	return Info{Location: place, State: NoState}, nil
}
