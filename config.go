package medreport

import (
	"os"
	"path/filepath"
	"time"

	"github.com/psverma/medreport/catalog"
)

// Config holds all configuration for the medreport analyzer.
type Config struct {
	// Compute configures the external pipeline compute service used for
	// medical-term parsing and recommendation generation.
	Compute ComputeConfig `json:"compute" yaml:"compute"`

	// OCR configures the external OCR service used for image formats and
	// scanned PDFs. If BaseURL is empty, image formats are not supported
	// and scanned PDFs fail extraction.
	OCR OCRConfig `json:"ocr" yaml:"ocr"`

	// Recognizer configures the external entity recognition service used
	// for location extraction.
	Recognizer RecognizerConfig `json:"recognizer" yaml:"recognizer"`

	// Geocode configures the geocoding service that resolves a place name
	// to an administrative region.
	Geocode GeocodeConfig `json:"geocode" yaml:"geocode"`

	// Country constrains geocoding lookups to a single country.
	// Defaults to "India".
	Country string `json:"country" yaml:"country"`

	// DefaultCuisine is the cuisine preference sent to the advice service
	// when no state could be resolved. Defaults to "Indian".
	DefaultCuisine string `json:"default_cuisine" yaml:"default_cuisine"`

	// DBPath is the full path to the SQLite report history database.
	// If empty, DBName+StorageDir decide the location. Set StorageDir to
	// "none" to disable report history entirely.
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the database name used when DBPath is empty.
	// Defaults to "medreport".
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath is
	// not set. Options: "home" (default) uses ~/.medreport/, "local" uses
	// the working directory, "none" disables the report history store.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// References replaces the built-in reference catalog when non-empty.
	// Aliases maps a canonical test name to accepted surface-form
	// variants; aliases for tests absent from References are ignored.
	References []catalog.Reference `json:"references,omitempty" yaml:"references,omitempty"`
	Aliases    map[string][]string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// ComputeConfig configures the pipeline compute service endpoint.
type ComputeConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	UserID  string        `json:"user_id" yaml:"user_id"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OCRConfig configures the remote OCR service.
type OCRConfig struct {
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
	Language string `json:"language" yaml:"language"`
}

// RecognizerConfig configures the entity recognition service.
type RecognizerConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key" yaml:"api_key"`
}

// GeocodeConfig configures the geocoding service.
type GeocodeConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key" yaml:"api_key"`
}

// DefaultConfig returns a Config with sensible defaults. Service endpoints
// and credentials must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Compute: ComputeConfig{
			BaseURL: "https://api.bhashini.gov.in",
		},
		Geocode: GeocodeConfig{
			BaseURL: "https://maps.googleapis.com",
		},
		Country:        "India",
		DefaultCuisine: "Indian",
		DBName:         "medreport",
		StorageDir:     "home",
	}
}

// resolveDBPath computes the final database path from config fields.
// An empty return value disables the report history store.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "medreport"
	}

	switch c.StorageDir {
	case "none":
		return ""
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		return filepath.Join(home, ".medreport", name+".db")
	}
}
