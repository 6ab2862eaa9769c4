// Command analyze runs the report analysis pipeline on a single document
// and prints the results to the terminal.
//
// Usage:
//
//	go run ./cmd/analyze \
//	  -file ./labs.pdf \
//	  -cuisine "South Indian"
//
// Service endpoints and credentials come from a JSON config file
// (-config) or environment variables (MEDREPORT_COMPUTE_BASE_URL,
// MEDREPORT_COMPUTE_API_KEY, GOOGLE_MAPS_API_KEY, ...).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/psverma/medreport"
	"github.com/psverma/medreport/analysis"
)

func main() {
	var (
		filePath   = flag.String("file", "", "Path to the report document (pdf, xlsx, txt, or image)")
		configPath = flag.String("config", "", "Path to config file (JSON)")
		cuisine    = flag.String("cuisine", "", "Cuisine preference for dietary recommendations (default: resolved state)")
		noLocation = flag.Bool("no-location", false, "Skip location resolution")
		noAdvice   = flag.Bool("no-advice", false, "Skip recommendation generation")
		noStore    = flag.Bool("no-store", false, "Do not save the report to history")
		asJSON     = flag.Bool("json", false, "Print the report as JSON instead of text")
		verbose    = flag.Bool("v", false, "Verbose logging")
		timeout    = flag.Duration("timeout", 10*time.Minute, "Overall analysis timeout")
	)
	flag.Parse()

	if *filePath == "" {
		log.Fatal("-file flag is required")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := medreport.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			log.Fatalf("opening config: %v", err)
		}
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			f.Close()
			log.Fatalf("parsing config: %v", err)
		}
		f.Close()
	}
	applyEnv(&cfg)
	if *noStore {
		cfg.StorageDir = "none"
	}

	analyzer, err := medreport.New(cfg)
	if err != nil {
		log.Fatalf("creating analyzer: %v", err)
	}
	defer analyzer.Close()

	var opts []medreport.AnalyzeOption
	if *cuisine != "" {
		opts = append(opts, medreport.WithCuisine(*cuisine))
	}
	if *noLocation {
		opts = append(opts, medreport.WithoutLocation())
	}
	if *noAdvice {
		opts = append(opts, medreport.WithoutRecommendations())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	report, err := analyzer.Analyze(ctx, *filePath, opts...)
	if err != nil {
		log.Fatalf("analyzing %s: %v", *filePath, err)
	}
	fmt.Fprintf(os.Stderr, "Analyzed %s in %s\n\n", *filePath, time.Since(start).Round(time.Millisecond))

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("encoding report: %v", err)
		}
		return
	}

	printReport(report)
}

// applyEnv overlays environment variables onto the config.
func applyEnv(cfg *medreport.Config) {
	if v := os.Getenv("MEDREPORT_COMPUTE_BASE_URL"); v != "" {
		cfg.Compute.BaseURL = v
	}
	if v := os.Getenv("MEDREPORT_COMPUTE_API_KEY"); v != "" {
		cfg.Compute.APIKey = v
	}
	if v := os.Getenv("MEDREPORT_COMPUTE_USER_ID"); v != "" {
		cfg.Compute.UserID = v
	}
	if v := os.Getenv("MEDREPORT_OCR_BASE_URL"); v != "" {
		cfg.OCR.BaseURL = v
	}
	if v := os.Getenv("MEDREPORT_OCR_API_KEY"); v != "" {
		cfg.OCR.APIKey = v
	}
	if v := os.Getenv("MEDREPORT_RECOGNIZER_BASE_URL"); v != "" {
		cfg.Recognizer.BaseURL = v
	}
	if v := os.Getenv("MEDREPORT_GEOCODE_API_KEY"); v != "" {
		cfg.Geocode.APIKey = v
	}
	if cfg.Compute.APIKey == "" {
		cfg.Compute.APIKey = os.Getenv("BHASHINI_API_KEY")
	}
	if cfg.Compute.UserID == "" {
		cfg.Compute.UserID = os.Getenv("BHASHINI_USER_ID")
	}
	if cfg.Geocode.APIKey == "" {
		cfg.Geocode.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	}
	if v := os.Getenv("MEDREPORT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
}

func printReport(r *medreport.Report) {
	if r.Emergency.IsEmergency {
		fmt.Println("!!! EMERGENCY !!!")
		fmt.Println(r.Emergency.Message)
		fmt.Println()
	}

	fmt.Println("=== Test Results ===")
	for _, a := range r.Analysis {
		marker := " "
		if a.Status != analysis.StatusNormal {
			marker = "*"
		}
		fmt.Printf("%s %-12s %g %s  [%s]  (normal: %s)\n",
			marker, a.Test, a.Value, a.Unit, a.Status, a.Reference)
	}

	fmt.Println()
	fmt.Printf("Location: %s\n", r.Location.Location)
	fmt.Printf("State:    %s\n", r.Location.State)

	printList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Printf("\n%s\n", title)
		for _, item := range items {
			fmt.Printf("  - %s\n", item)
		}
	}
	printList("=== Dietary Recommendations ===", r.Recommendation.Diet)
	printList("=== Lifestyle Recommendations ===", r.Recommendation.Lifestyle)
	printList("=== Warnings ===", r.Recommendation.Warnings)

	if r.ReportID != 0 {
		fmt.Printf("\nSaved to history as report %d\n", r.ReportID)
	}
}
