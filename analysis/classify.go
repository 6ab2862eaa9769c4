package analysis

import (
	"sort"

	"github.com/psverma/medreport/catalog"
)

// Status classifies a value against its reference range.
type Status string

const (
	StatusLow    Status = "LOW"
	StatusNormal Status = "NORMAL"
	StatusHigh   Status = "HIGH"
)

// TestAnalysis is a single classified test result.
type TestAnalysis struct {
	Test      string  `json:"test"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Status    Status  `json:"status"`
	Reference string  `json:"reference"`
}

// classifyValue computes the status of a value against [min,max].
// Boundary values are NORMAL: LOW requires strictly below min, HIGH
// strictly above max.
func classifyValue(value float64, ref catalog.Reference) Status {
	switch {
	case value < ref.Min:
		return StatusLow
	case value > ref.Max:
		return StatusHigh
	default:
		return StatusNormal
	}
}

// Classify turns parsed results into per-test analyses. Only tests with a
// catalog reference entry appear in the output (the parser guarantees this
// for its own results). Output is ordered by canonical test name so runs
// are deterministic.
func Classify(results map[string]float64, cat *catalog.Catalog) []TestAnalysis {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]TestAnalysis, 0, len(names))
	for _, name := range names {
		ref, ok := cat.Reference(name)
		if !ok {
			continue
		}
		value := results[name]
		out = append(out, TestAnalysis{
			Test:      name,
			Value:     value,
			Unit:      ref.Unit,
			Status:    classifyValue(value, ref),
			Reference: ref.String(),
		})
	}
	return out
}
