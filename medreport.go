// Package medreport analyzes medical reports: it extracts diagnostic test
// values from a document, classifies them against clinical reference
// ranges, detects emergency conditions, infers the patient's region, and
// produces personalized dietary and lifestyle recommendations.
package medreport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/psverma/medreport/advice"
	"github.com/psverma/medreport/analysis"
	"github.com/psverma/medreport/catalog"
	"github.com/psverma/medreport/compute"
	"github.com/psverma/medreport/extract"
	"github.com/psverma/medreport/location"
	"github.com/psverma/medreport/store"
)

// Analyzer is the main entry point for the report analysis pipeline.
type Analyzer interface {
	// Analyze runs the full pipeline on a document file and returns the
	// assembled report.
	Analyze(ctx context.Context, path string, opts ...AnalyzeOption) (*Report, error)

	// AnalyzeText runs the pipeline on already-extracted text, skipping
	// the extraction stage.
	AnalyzeText(ctx context.Context, text string, opts ...AnalyzeOption) (*Report, error)

	// ListReports returns previously analyzed reports, newest first.
	// Requires the report history store.
	ListReports(ctx context.Context) ([]StoredReport, error)

	// GetReport returns a stored report by ID.
	GetReport(ctx context.Context, id int64) (StoredReport, error)

	// DeleteReport removes a stored report by ID.
	DeleteReport(ctx context.Context, id int64) error

	// Close cleanly shuts down the analyzer.
	Close() error
}

// Report is the result of one pipeline run. It is assembled once and not
// mutated afterwards.
type Report struct {
	Filename       string                  `json:"filename,omitempty"`
	Format         string                  `json:"format,omitempty"`
	Method         string                  `json:"method,omitempty"`
	Analysis       []analysis.TestAnalysis `json:"analysis"`
	Emergency      analysis.Finding        `json:"emergency"`
	Location       location.Info           `json:"location"`
	Recommendation advice.Recommendation   `json:"recommendation"`

	// ReportID is set when the report history store is enabled.
	ReportID int64 `json:"report_id,omitempty"`
}

// StoredReport is a previously analyzed report loaded from history.
type StoredReport struct {
	ID             int64                   `json:"id"`
	Filename       string                  `json:"filename"`
	Format         string                  `json:"format"`
	Method         string                  `json:"method"`
	Analysis       []analysis.TestAnalysis `json:"analysis"`
	Emergency      analysis.Finding        `json:"emergency"`
	Location       location.Info           `json:"location"`
	Recommendation advice.Recommendation   `json:"recommendation"`
	CreatedAt      string                  `json:"created_at"`
}

// AnalyzeOption configures a single pipeline run.
type AnalyzeOption func(*analyzeOptions)

type analyzeOptions struct {
	cuisine             string
	skipLocation        bool
	skipRecommendations bool
}

// WithCuisine overrides the cuisine preference sent to the advice
// service. By default the resolved state is used.
func WithCuisine(cuisine string) AnalyzeOption {
	return func(o *analyzeOptions) { o.cuisine = cuisine }
}

// WithoutLocation skips location resolution; the report carries the
// "not found" sentinels and recommendations use the default cuisine.
func WithoutLocation() AnalyzeOption {
	return func(o *analyzeOptions) { o.skipLocation = true }
}

// WithoutRecommendations skips the advice service call.
func WithoutRecommendations() AnalyzeOption {
	return func(o *analyzeOptions) { o.skipRecommendations = true }
}

// analyzer is the concrete implementation of Analyzer.
type analyzer struct {
	cfg      Config
	cat      *catalog.Catalog
	registry *extract.Registry
	parser   *analysis.Parser
	resolver *location.Resolver
	advisor  *advice.Generator
	history  *store.Store // nil when history is disabled
}

// New creates an analyzer from configuration. All collaborator state is
// held by the returned value; nothing ambient is shared between
// analyzers, so independent instances can run in parallel.
func New(cfg Config) (Analyzer, error) {
	if cfg.Compute.BaseURL == "" {
		return nil, fmt.Errorf("%w: compute base URL is required", ErrInvalidConfig)
	}
	if cfg.Country == "" {
		cfg.Country = "India"
	}
	if cfg.DefaultCuisine == "" {
		cfg.DefaultCuisine = "Indian"
	}

	cat := catalog.Default()
	if len(cfg.References) > 0 {
		cat = catalog.New(cfg.References, cfg.Aliases)
	}

	registry := extract.NewRegistry()
	if cfg.OCR.BaseURL != "" {
		registry.SetOCR(extract.OCRConfig{
			BaseURL:  cfg.OCR.BaseURL,
			APIKey:   cfg.OCR.APIKey,
			Language: cfg.OCR.Language,
		})
	}

	client := compute.NewClient(compute.Config{
		BaseURL: cfg.Compute.BaseURL,
		APIKey:  cfg.Compute.APIKey,
		UserID:  cfg.Compute.UserID,
		Timeout: cfg.Compute.Timeout,
	})

	// Location resolution needs both collaborators; without them the
	// pipeline still runs and reports the sentinels.
	var resolver *location.Resolver
	if cfg.Recognizer.BaseURL != "" {
		resolver = location.NewResolver(
			location.NewHTTPRecognizer(location.RecognizerConfig{
				BaseURL: cfg.Recognizer.BaseURL,
				APIKey:  cfg.Recognizer.APIKey,
			}),
			location.NewHTTPGeocoder(location.GeocoderConfig{
				BaseURL: cfg.Geocode.BaseURL,
				APIKey:  cfg.Geocode.APIKey,
			}),
			cfg.Country,
		)
	}

	var history *store.Store
	if dbPath := cfg.resolveDBPath(); dbPath != "" {
		s, err := store.New(dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening report history: %w", err)
		}
		history = s
	}

	return &analyzer{
		cfg:      cfg,
		cat:      cat,
		registry: registry,
		parser:   analysis.NewParser(client, cat),
		resolver: resolver,
		advisor:  advice.NewGenerator(client),
		history:  history,
	}, nil
}

// Analyze runs extraction and then the text pipeline.
func (a *analyzer) Analyze(ctx context.Context, path string, opts ...AnalyzeOption) (*Report, error) {
	filename := filepath.Base(path)
	format := extract.Format(path)

	slog.Info("analyze: extracting text", "file", filename, "format", format)
	extractStart := time.Now()

	res, err := a.registry.Extract(ctx, path)
	if err != nil {
		if _, gerr := a.registry.Get(format); gerr != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
		}
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	slog.Info("analyze: extraction complete",
		"file", filename, "method", res.Method, "pages", res.Pages,
		"elapsed", time.Since(extractStart).Round(time.Millisecond))

	report, err := a.run(ctx, res.Text, opts)
	if err != nil {
		return nil, err
	}
	report.Filename = filename
	report.Format = format
	report.Method = res.Method

	a.saveReport(ctx, report)
	return report, nil
}

// AnalyzeText runs the pipeline on pre-extracted text.
func (a *analyzer) AnalyzeText(ctx context.Context, text string, opts ...AnalyzeOption) (*Report, error) {
	report, err := a.run(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	a.saveReport(ctx, report)
	return report, nil
}

// run is the text-to-report pipeline: parse, classify, check emergency,
// resolve location, generate recommendations. Stages are sequential; the
// first failure aborts the run.
func (a *analyzer) run(ctx context.Context, text string, opts []AnalyzeOption) (*Report, error) {
	options := &analyzeOptions{}
	for _, o := range opts {
		o(options)
	}

	parseStart := time.Now()
	results, err := a.parser.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseService, err)
	}
	if len(results) == 0 {
		slog.Info("analyze: no recognized test values in document")
		return nil, ErrNoTestResults
	}
	slog.Info("analyze: parsing complete",
		"tests", len(results), "elapsed", time.Since(parseStart).Round(time.Millisecond))

	analyses := analysis.Classify(results, a.cat)
	emergency := analysis.CheckEmergency(analyses)
	if emergency.IsEmergency {
		slog.Warn("analyze: emergency condition detected", "message", emergency.Message)
	}

	loc := location.Info{Location: location.NoLocation, State: location.NoState}
	if !options.skipLocation && a.resolver != nil {
		loc, err = a.resolver.Resolve(ctx, text)
		if err != nil {
			switch {
			case errors.Is(err, location.ErrRecognizer):
				return nil, fmt.Errorf("%w: %w", ErrRecognizerService, err)
			default:
				return nil, fmt.Errorf("%w: %w", ErrGeocodeService, err)
			}
		}
		slog.Info("analyze: location resolved", "location", loc.Location, "state", loc.State)
	}

	rec := advice.Recommendation{Diet: []string{}, Lifestyle: []string{}, Warnings: []string{}}
	if !options.skipRecommendations {
		cuisine := options.cuisine
		if cuisine == "" {
			cuisine = a.cfg.DefaultCuisine
			if loc.State != location.NoState {
				cuisine = loc.State
			}
		}
		rec, err = a.advisor.Generate(ctx, analyses, cuisine)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAdviceService, err)
		}
		slog.Info("analyze: recommendations generated",
			"cuisine", cuisine,
			"diet", len(rec.Diet), "lifestyle", len(rec.Lifestyle), "warnings", len(rec.Warnings))
	}

	return &Report{
		Analysis:       analyses,
		Emergency:      emergency,
		Location:       loc,
		Recommendation: rec,
	}, nil
}

// saveReport persists the report when history is enabled. Failures are
// logged, not fatal: the caller already has the report.
func (a *analyzer) saveReport(ctx context.Context, r *Report) {
	if a.history == nil {
		return
	}

	analysisJSON, _ := json.Marshal(r.Analysis)
	recJSON, _ := json.Marshal(r.Recommendation)

	id, err := a.history.SaveReport(ctx, store.Report{
		Filename:         r.Filename,
		Format:           r.Format,
		Method:           r.Method,
		IsEmergency:      r.Emergency.IsEmergency,
		EmergencyMessage: r.Emergency.Message,
		LocationName:     r.Location.Location,
		StateName:        r.Location.State,
		Analysis:         string(analysisJSON),
		Recommendation:   string(recJSON),
	})
	if err != nil {
		slog.Warn("analyze: saving report to history failed", "error", err)
		return
	}
	r.ReportID = id
}

// ListReports returns stored reports, newest first.
func (a *analyzer) ListReports(ctx context.Context) ([]StoredReport, error) {
	if a.history == nil {
		return nil, nil
	}
	rows, err := a.history.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StoredReport, len(rows))
	for i, row := range rows {
		out[i] = storedFromRow(row)
	}
	return out, nil
}

// GetReport returns a stored report by ID.
func (a *analyzer) GetReport(ctx context.Context, id int64) (StoredReport, error) {
	if a.history == nil {
		return StoredReport{}, ErrReportNotFound
	}
	row, err := a.history.GetReport(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return StoredReport{}, ErrReportNotFound
	}
	if err != nil {
		return StoredReport{}, err
	}
	return storedFromRow(row), nil
}

// DeleteReport removes a stored report by ID.
func (a *analyzer) DeleteReport(ctx context.Context, id int64) error {
	if a.history == nil {
		return ErrReportNotFound
	}
	err := a.history.DeleteReport(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrReportNotFound
	}
	return err
}

// Close shuts down the analyzer.
func (a *analyzer) Close() error {
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}

func storedFromRow(row store.Report) StoredReport {
	sr := StoredReport{
		ID:        row.ID,
		Filename:  row.Filename,
		Format:    row.Format,
		Method:    row.Method,
		Emergency: analysis.Finding{IsEmergency: row.IsEmergency, Message: row.EmergencyMessage},
		Location:  location.Info{Location: row.LocationName, State: row.StateName},
		CreatedAt: row.CreatedAt,
	}
	_ = json.Unmarshal([]byte(row.Analysis), &sr.Analysis)
	_ = json.Unmarshal([]byte(row.Recommendation), &sr.Recommendation)
	return sr
}
