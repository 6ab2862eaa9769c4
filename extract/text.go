package extract

import (
	"context"
	"fmt"
	"os"
)

// TextExtractor handles plain text (.txt) reports.
type TextExtractor struct{}

func (t *TextExtractor) SupportedFormats() []string { return []string{"txt"} }

func (t *TextExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrNoText)
	}
	return &Result{Text: string(data), Pages: 1, Method: "native"}, nil
}
