package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/psverma/medreport"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON)")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := medreport.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			slog.Error("opening config", "error", err)
			os.Exit(1)
		}
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			f.Close()
			slog.Error("parsing config", "error", err)
			os.Exit(1)
		}
		f.Close()
	}

	// Override from environment variables.
	if v := os.Getenv("MEDREPORT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
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
	if v := os.Getenv("MEDREPORT_RECOGNIZER_API_KEY"); v != "" {
		cfg.Recognizer.APIKey = v
	}
	if v := os.Getenv("MEDREPORT_GEOCODE_BASE_URL"); v != "" {
		cfg.Geocode.BaseURL = v
	}
	if v := os.Getenv("MEDREPORT_GEOCODE_API_KEY"); v != "" {
		cfg.Geocode.APIKey = v
	}
	if v := os.Getenv("MEDREPORT_COUNTRY"); v != "" {
		cfg.Country = v
	}

	// Fallback: check well-known provider env vars for API keys.
	if cfg.Geocode.APIKey == "" {
		cfg.Geocode.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	}
	if cfg.Compute.APIKey == "" {
		cfg.Compute.APIKey = os.Getenv("BHASHINI_API_KEY")
	}
	if cfg.Compute.UserID == "" {
		cfg.Compute.UserID = os.Getenv("BHASHINI_USER_ID")
	}

	apiKey := os.Getenv("MEDREPORT_API_KEY")
	corsOrigins := os.Getenv("MEDREPORT_CORS_ORIGINS")

	analyzer, err := medreport.New(cfg)
	if err != nil {
		slog.Error("creating analyzer", "error", err)
		os.Exit(1)
	}
	defer analyzer.Close()

	h := newHandler(analyzer)
	mux := http.NewServeMux()

	mux.HandleFunc("POST /analyze", h.handleAnalyze)
	mux.HandleFunc("GET /reports", h.handleListReports)
	mux.HandleFunc("GET /reports/{id}", h.handleGetReport)
	mux.HandleFunc("DELETE /reports/{id}", h.handleDeleteReport)
	mux.HandleFunc("GET /health", h.handleHealth)

	// Middleware chain: recovery -> cors -> auth -> logging -> mux
	var handler http.Handler = mux
	handler = logMiddleware(handler)
	handler = authMiddleware(apiKey, handler)
	handler = corsMiddleware(corsOrigins, handler)
	handler = recoveryMiddleware(handler)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // analysis of scanned documents can be long
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
