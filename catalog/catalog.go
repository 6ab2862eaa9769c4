// Package catalog holds the clinical reference ranges and the test name
// normalizer. The catalog is built once at startup and never mutated.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Reference is the clinically normal range for a single test.
type Reference struct {
	Test string  `json:"test"` // canonical test name
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

// String renders the range the way it appears in a report line. Ranges
// with a fractional bound keep a decimal on both ends ("0.5-5.0 mIU/L");
// whole-number ranges render as integers ("70-100 mg/dL").
func (r Reference) String() string {
	fractional := r.Min != float64(int64(r.Min)) || r.Max != float64(int64(r.Max))
	return fmt.Sprintf("%s-%s %s",
		formatBound(r.Min, fractional), formatBound(r.Max, fractional), r.Unit)
}

func formatBound(v float64, forceDecimal bool) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if forceDecimal && !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Catalog maps canonical test names to reference ranges and resolves
// surface-form name variants. Lookups are case-insensitive exact matches;
// no fuzzy or partial matching.
type Catalog struct {
	refs    map[string]Reference // canonical name -> reference
	surface map[string]string    // upper-cased variant (incl. canonical) -> canonical
}

// New builds a catalog from reference entries and an alias table mapping
// canonical names to accepted surface-form variants.
func New(refs []Reference, aliases map[string][]string) *Catalog {
	c := &Catalog{
		refs:    make(map[string]Reference, len(refs)),
		surface: make(map[string]string),
	}
	for _, r := range refs {
		c.refs[r.Test] = r
		c.surface[strings.ToUpper(r.Test)] = r.Test
	}
	for canonical, variants := range aliases {
		if _, ok := c.refs[canonical]; !ok {
			continue // alias for a test the catalog doesn't know
		}
		for _, v := range variants {
			c.surface[strings.ToUpper(v)] = canonical
		}
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(
		[]Reference{
			{Test: "TSH", Min: 0.5, Max: 5.0, Unit: "mIU/L"},
			{Test: "Hemoglobin", Min: 13.5, Max: 17.5, Unit: "g/dL"},
			{Test: "Glucose", Min: 70, Max: 100, Unit: "mg/dL"},
		},
		map[string][]string{
			"TSH":        {"THYROID STIMULATING HORMONE"},
			"Hemoglobin": {"HB", "HGB"},
			"Glucose":    {"BLOOD GLUCOSE", "FBS"},
		},
	)
}

// Normalize maps a free-form test name to its canonical catalog key.
// Returns false when the name matches neither a canonical name nor a
// registered alias; callers decide whether to drop or warn.
func (c *Catalog) Normalize(raw string) (string, bool) {
	canonical, ok := c.surface[strings.ToUpper(strings.TrimSpace(raw))]
	return canonical, ok
}

// IsKnown reports whether the canonical name has a reference entry.
func (c *Catalog) IsKnown(canonical string) bool {
	_, ok := c.refs[canonical]
	return ok
}

// Reference returns the reference entry for a canonical test name.
func (c *Catalog) Reference(canonical string) (Reference, bool) {
	r, ok := c.refs[canonical]
	return r, ok
}

// Tests returns the canonical test names in sorted order. Used as the
// reference_tests list sent to the parsing service.
func (c *Catalog) Tests() []string {
	names := make([]string, 0, len(c.refs))
	for name := range c.refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
