package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor pulls the text layer out of digital PDFs. Scanned PDFs
// without a text layer return ErrNoText so the registry can try OCR.
type PDFExtractor struct{}

func (p *PDFExtractor) SupportedFormats() []string { return []string{"pdf"} }

func (p *PDFExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	if totalPages == 0 {
		return nil, fmt.Errorf("%w: PDF has no pages", ErrNoText)
	}

	var sb strings.Builder
	pages := 0
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
		pages++
	}

	if pages == 0 {
		return nil, fmt.Errorf("%w: no text layer in %d pages", ErrNoText, totalPages)
	}

	return &Result{Text: sb.String(), Pages: pages, Method: "native"}, nil
}
