// Package advice shapes recommendation requests for the external advice
// pipeline and passes its categorized guidance through.
package advice

import (
	"context"

	"github.com/psverma/medreport/analysis"
	"github.com/psverma/medreport/compute"
)

// Recommendation is the categorized guidance returned by the advice
// service. The content is opaque to this module.
type Recommendation struct {
	Diet      []string `json:"diet"`
	Lifestyle []string `json:"lifestyle"`
	Warnings  []string `json:"warnings"`
}

// Generator requests recommendations from the advice pipeline.
type Generator struct {
	client compute.Client
}

// NewGenerator creates a recommendation generator.
func NewGenerator(client compute.Client) *Generator {
	return &Generator{client: client}
}

type adviceRequest struct {
	Analysis    []analysis.TestAnalysis `json:"analysis"`
	Tasks       []string                `json:"tasks"`
	Preferences preferences             `json:"preferences"`
}

type preferences struct {
	Cuisine string `json:"cuisine"`
}

// Generate sends the classified analysis and a cuisine preference to the
// advice pipeline. Missing categories come back as empty slices rather
// than nil; service failures propagate to the caller.
func (g *Generator) Generate(ctx context.Context, analyses []analysis.TestAnalysis, cuisine string) (Recommendation, error) {
	req := adviceRequest{
		Analysis:    analyses,
		Tasks:       []string{"generate_medical_recommendations"},
		Preferences: preferences{Cuisine: cuisine},
	}

	var rec Recommendation
	if err := g.client.Compute(ctx, "medical-advice", req, &rec); err != nil {
		return Recommendation{}, err
	}

	if rec.Diet == nil {
		rec.Diet = []string{}
	}
	if rec.Lifestyle == nil {
		rec.Lifestyle = []string{}
	}
	if rec.Warnings == nil {
		rec.Warnings = []string{}
	}
	return rec, nil
}
