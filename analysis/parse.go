// Package analysis turns extracted report text into classified test
// results and derives emergency findings from them.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/psverma/medreport/catalog"
	"github.com/psverma/medreport/compute"
)

// Parser sends report text to the medical parsing pipeline and converts
// the response into canonical test name -> numeric value.
type Parser struct {
	client compute.Client
	cat    *catalog.Catalog
}

// NewParser creates a structured result parser over the given compute
// client and reference catalog.
func NewParser(client compute.Client, cat *catalog.Catalog) *Parser {
	return &Parser{client: client, cat: cat}
}

type parseRequest struct {
	Text           string   `json:"text"`
	Tasks          []string `json:"tasks"`
	ReferenceTests []string `json:"reference_tests"`
}

type parseResponse struct {
	// Values arrive as strings or numbers depending on the pipeline
	// version, so decode lazily.
	TestResults map[string]json.RawMessage `json:"test_results"`
}

// Parse extracts numeric test values from report text. Entries whose name
// cannot be normalized to a catalog key, or whose value cannot be coerced
// to a number, are dropped with a warning; they never fail the parse.
// A failed service call fails the whole parse.
func (p *Parser) Parse(ctx context.Context, text string) (map[string]float64, error) {
	req := parseRequest{
		Text:           text,
		Tasks:          []string{"extract_medical_data"},
		ReferenceTests: p.cat.Tests(),
	}

	var resp parseResponse
	if err := p.client.Compute(ctx, "medical-parser", req, &resp); err != nil {
		return nil, err
	}

	results := make(map[string]float64, len(resp.TestResults))
	for rawName, rawValue := range resp.TestResults {
		canonical, ok := p.cat.Normalize(rawName)
		if !ok {
			slog.Warn("parse: dropping unrecognized test", "test", rawName)
			continue
		}
		value, err := ParseNumber(decodeRawValue(rawValue))
		if err != nil {
			slog.Warn("parse: dropping non-numeric value",
				"test", rawName, "value", string(rawValue), "error", err)
			continue
		}
		results[canonical] = value
	}
	return results, nil
}

// decodeRawValue renders a JSON string or number as its plain text form.
func decodeRawValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// ParseNumber coerces a possibly locale-formatted numeric string to a
// float. A comma decimal separator ("12,5") is accepted alongside the
// period form. Additional locales belong here, not in pipeline code.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing number %q: %w", s, err)
	}
	return v, nil
}
