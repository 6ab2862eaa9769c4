package location

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeRecognizer struct {
	entities []Entity
	err      error
}

func (f *fakeRecognizer) Entities(ctx context.Context, text string) ([]Entity, error) {
	return f.entities, f.err
}

type fakeGeocoder struct {
	components []AddressComponent
	err        error
	calls      int
	gotAddress string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) ([]AddressComponent, error) {
	f.calls++
	f.gotAddress = address
	return f.components, f.err
}

func TestResolveNoEntities(t *testing.T) {
	geo := &fakeGeocoder{}
	r := NewResolver(&fakeRecognizer{}, geo, "India")

	info, err := r.Resolve(context.Background(), "report with no places")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if info.Location != NoLocation || info.State != NoState {
		t.Errorf("info = %+v, want sentinels", info)
	}
	if geo.calls != 0 {
		t.Errorf("geocoder called %d times, want 0", geo.calls)
	}
}

func TestResolveIgnoresNonPlaceEntities(t *testing.T) {
	geo := &fakeGeocoder{}
	rec := &fakeRecognizer{entities: []Entity{
		{Text: "Dr. Sharma", Label: "PERSON"},
		{Text: "Apollo Hospitals", Label: "ORG"},
	}}
	r := NewResolver(rec, geo, "India")

	info, err := r.Resolve(context.Background(), "text")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if info.Location != NoLocation {
		t.Errorf("location = %q, want sentinel", info.Location)
	}
	if geo.calls != 0 {
		t.Errorf("geocoder called %d times, want 0", geo.calls)
	}
}

func TestResolveFirstPlaceWins(t *testing.T) {
	geo := &fakeGeocoder{components: []AddressComponent{
		{LongName: "Mumbai", Types: []string{"locality", "political"}},
		{LongName: "Maharashtra", Types: []string{"administrative_area_level_1", "political"}},
		{LongName: "India", Types: []string{"country", "political"}},
	}}
	rec := &fakeRecognizer{entities: []Entity{
		{Text: "Mumbai", Label: "GPE"},
		{Text: "Pune", Label: "GPE"},
	}}
	r := NewResolver(rec, geo, "India")

	info, err := r.Resolve(context.Background(), "text")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if info.Location != "Mumbai" {
		t.Errorf("location = %q, want first entity", info.Location)
	}
	if info.State != "Maharashtra" {
		t.Errorf("state = %q", info.State)
	}
	if geo.calls != 1 {
		t.Errorf("geocoder called %d times, want 1", geo.calls)
	}
	if geo.gotAddress != "Mumbai, India" {
		t.Errorf("geocode address = %q, want country constraint", geo.gotAddress)
	}
}

func TestResolveNoAdminArea(t *testing.T) {
	geo := &fakeGeocoder{components: []AddressComponent{
		{LongName: "India", Types: []string{"country", "political"}},
	}}
	rec := &fakeRecognizer{entities: []Entity{{Text: "Ganganagar", Label: "LOC"}}}
	r := NewResolver(rec, geo, "India")

	info, err := r.Resolve(context.Background(), "text")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if info.Location != "Ganganagar" {
		t.Errorf("location = %q, detected place must survive", info.Location)
	}
	if info.State != NoState {
		t.Errorf("state = %q, want sentinel", info.State)
	}
}

func TestResolveGeocoderErrorPropagates(t *testing.T) {
	geoErr := errors.New("quota exceeded")
	geo := &fakeGeocoder{err: geoErr}
	rec := &fakeRecognizer{entities: []Entity{{Text: "Delhi", Label: "GPE"}}}
	r := NewResolver(rec, geo, "India")

	_, err := r.Resolve(context.Background(), "text")
	if !errors.Is(err, geoErr) {
		t.Fatalf("Resolve error = %v, want wrapped geocoder error", err)
	}
}

func TestResolveRecognizerErrorPropagates(t *testing.T) {
	recErr := errors.New("model unavailable")
	r := NewResolver(&fakeRecognizer{err: recErr}, &fakeGeocoder{}, "India")

	_, err := r.Resolve(context.Background(), "text")
	if !errors.Is(err, recErr) {
		t.Fatalf("Resolve error = %v, want wrapped recognizer error", err)
	}
}

func TestHTTPGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "Mumbai, India" {
			t.Errorf("address param = %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "maps-key" {
			t.Errorf("key param = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"results": []map[string]any{{
				"address_components": []map[string]any{
					{"long_name": "Maharashtra", "types": []string{"administrative_area_level_1", "political"}},
				},
			}},
		})
	}))
	defer srv.Close()

	g := NewHTTPGeocoder(GeocoderConfig{BaseURL: srv.URL, APIKey: "maps-key"})
	components, err := g.Geocode(context.Background(), "Mumbai, India")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if len(components) != 1 || components[0].LongName != "Maharashtra" {
		t.Errorf("components = %+v", components)
	}
}

func TestHTTPGeocoderZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "ZERO_RESULTS", "results": []any{}})
	}))
	defer srv.Close()

	g := NewHTTPGeocoder(GeocoderConfig{BaseURL: srv.URL})
	components, err := g.Geocode(context.Background(), "Nowhereville, India")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if components != nil {
		t.Errorf("components = %+v, want nil", components)
	}
}

func TestHTTPGeocoderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "REQUEST_DENIED"})
	}))
	defer srv.Close()

	g := NewHTTPGeocoder(GeocoderConfig{BaseURL: srv.URL})
	if _, err := g.Geocode(context.Background(), "Delhi, India"); err == nil {
		t.Fatal("expected error for REQUEST_DENIED")
	}
}

func TestHTTPRecognizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entities" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Text != "Patient admitted in Jaipur" {
			t.Errorf("text = %q", req.Text)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"entities": []map[string]string{
				{"text": "Jaipur", "label": "GPE"},
			},
		})
	}))
	defer srv.Close()

	rec := NewHTTPRecognizer(RecognizerConfig{BaseURL: srv.URL})
	entities, err := rec.Entities(context.Background(), "Patient admitted in Jaipur")
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(entities) != 1 || entities[0].Text != "Jaipur" || entities[0].Label != "GPE" {
		t.Errorf("entities = %+v", entities)
	}
}

func TestHTTPRecognizerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec := NewHTTPRecognizer(RecognizerConfig{BaseURL: srv.URL})
	if _, err := rec.Entities(context.Background(), "text"); err == nil {
		t.Fatal("expected error on 500")
	}
}
