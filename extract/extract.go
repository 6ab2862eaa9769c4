// Package extract converts source documents (digital PDFs, spreadsheets,
// scanned images) into plain text for the analysis pipeline.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNoText is returned when a document is structurally readable but
// yields no extractable text (e.g. a scanned PDF with no text layer).
var ErrNoText = errors.New("no extractable text")

// Result is the plain text produced from a document.
type Result struct {
	Text   string
	Pages  int
	Method string // "native" or "ocr"
}

// Extractor converts a specific document format into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Result, error)
	SupportedFormats() []string
}

// Registry maps file formats to extractors.
type Registry struct {
	extractors map[string]Extractor
	ocr        *OCRExtractor
}

// NewRegistry creates a registry with the built-in native extractors.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	for _, e := range []Extractor{&PDFExtractor{}, &XLSXExtractor{}, &TextExtractor{}} {
		for _, f := range e.SupportedFormats() {
			r.extractors[f] = e
		}
	}
	return r
}

// SetOCR registers the remote OCR service for image formats. It also
// enables the scanned-PDF fallback: PDFs with no text layer are re-sent
// through OCR instead of failing.
func (r *Registry) SetOCR(cfg OCRConfig) {
	ocr := NewOCRExtractor(cfg)
	r.ocr = ocr
	for _, f := range ocr.SupportedFormats() {
		r.extractors[f] = ocr
	}
}

// Register adds or replaces the extractor for a format.
func (r *Registry) Register(format string, e Extractor) {
	r.extractors[format] = e
}

// Get returns the extractor for a format.
func (r *Registry) Get(format string) (Extractor, error) {
	e, ok := r.extractors[format]
	if !ok {
		return nil, fmt.Errorf("no extractor for format: %s", format)
	}
	return e, nil
}

// Extract picks an extractor by file extension and runs it. A PDF with no
// text layer falls back to the OCR service when one is configured.
func (r *Registry) Extract(ctx context.Context, path string) (*Result, error) {
	format := Format(path)
	e, err := r.Get(format)
	if err != nil {
		return nil, err
	}

	res, err := e.Extract(ctx, path)
	if errors.Is(err, ErrNoText) && format == "pdf" && r.ocr != nil {
		return r.ocr.Extract(ctx, path)
	}
	return res, err
}

// Format returns the lower-cased extension of a path without the dot.
func Format(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
