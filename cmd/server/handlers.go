package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/psverma/medreport"
)

type handler struct {
	analyzer medreport.Analyzer
}

func newHandler(a medreport.Analyzer) *handler {
	return &handler{analyzer: a}
}

// POST /analyze
// Accepts multipart file upload or JSON with file path or raw text.
func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	// Try multipart upload first
	if err := r.ParseMultipartForm(50 << 20); err == nil { // 50MB max
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()

			// Sanitise filename to prevent path traversal.
			safeName := filepath.Base(header.Filename)

			tmpPath := filepath.Join(os.TempDir(), safeName)
			dst, err := os.Create(tmpPath)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to process file")
				slog.Error("creating temp file", "error", err)
				return
			}
			if _, err := io.Copy(dst, file); err != nil {
				dst.Close()
				writeError(w, http.StatusInternalServerError, "failed to save file")
				slog.Error("saving uploaded file", "error", err)
				return
			}
			dst.Close()
			defer os.Remove(tmpPath)

			opts := analyzeOptions(r.FormValue("cuisine"), r.FormValue("skip_location") == "true")
			report, err := h.analyzer.Analyze(ctx, tmpPath, opts...)
			if err != nil {
				writeAnalyzeError(w, err)
				return
			}

			writeJSON(w, http.StatusOK, report)
			return
		}
	}

	// Try JSON body with path or text
	var req struct {
		Path         string `json:"path,omitempty"`
		Text         string `json:"text,omitempty"`
		Cuisine      string `json:"cuisine,omitempty"`
		SkipLocation bool   `json:"skip_location,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: expected multipart file or JSON with 'path' or 'text'")
		return
	}

	opts := analyzeOptions(req.Cuisine, req.SkipLocation)

	if req.Text != "" {
		report, err := h.analyzer.AnalyzeText(ctx, req.Text, opts...)
		if err != nil {
			writeAnalyzeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path or text is required")
		return
	}

	// Validate that path is a real file (prevents directory traversal probing).
	absPath, err := filepath.Abs(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusBadRequest, "path must be an existing file")
		return
	}

	report, err := h.analyzer.Analyze(ctx, absPath, opts...)
	if err != nil {
		writeAnalyzeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func analyzeOptions(cuisine string, skipLocation bool) []medreport.AnalyzeOption {
	var opts []medreport.AnalyzeOption
	if cuisine != "" {
		opts = append(opts, medreport.WithCuisine(cuisine))
	}
	if skipLocation {
		opts = append(opts, medreport.WithoutLocation())
	}
	return opts
}

// writeAnalyzeError maps pipeline errors to HTTP statuses. Client-caused
// failures are 4xx; collaborator failures are 502.
func writeAnalyzeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, medreport.ErrUnsupportedFormat):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, medreport.ErrNoTestResults):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, medreport.ErrExtractionFailed):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, medreport.ErrParseService),
		errors.Is(err, medreport.ErrRecognizerService),
		errors.Is(err, medreport.ErrGeocodeService),
		errors.Is(err, medreport.ErrAdviceService):
		writeError(w, http.StatusBadGateway, "analysis service unavailable")
		slog.Error("analyze error", "error", err)
	default:
		writeError(w, http.StatusInternalServerError, "analysis failed")
		slog.Error("analyze error", "error", err)
	}
}

// GET /reports
func (h *handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.analyzer.ListReports(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		slog.Error("list reports error", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
	})
}

// GET /reports/{id}
func (h *handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := h.analyzer.GetReport(r.Context(), id)
	if errors.Is(err, medreport.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load report")
		slog.Error("get report error", "report_id", id, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// DELETE /reports/{id}
func (h *handler) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	if err := h.analyzer.DeleteReport(r.Context(), id); err != nil {
		if errors.Is(err, medreport.ErrReportNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "delete failed")
		slog.Error("delete report error", "report_id", id, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
