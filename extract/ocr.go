package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// OCRConfig configures the remote OCR service.
type OCRConfig struct {
	BaseURL  string
	APIKey   string
	Language string
}

// OCRExtractor uploads a document to the OCR service and concatenates the
// per-page recognition output. Pages are joined with a newline.
type OCRExtractor struct {
	cfg    OCRConfig
	client *http.Client
}

// NewOCRExtractor creates an OCR extractor. The timeout is generous
// because recognition is compute-bound on the service side.
func NewOCRExtractor(cfg OCRConfig) *OCRExtractor {
	return &OCRExtractor{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (o *OCRExtractor) SupportedFormats() []string {
	return []string{"png", "jpg", "jpeg", "tif", "tiff", "bmp"}
}

type ocrResponse struct {
	Pages []string `json:"pages"`
}

func (o *OCRExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	if o.cfg.BaseURL == "" {
		return nil, fmt.Errorf("OCR service not configured")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if o.cfg.Language != "" {
		writer.WriteField("language", o.cfg.Language)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", o.cfg.BaseURL+"/recognize", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if o.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading OCR response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OCR service error %d: %s", resp.StatusCode, string(respBody))
	}

	var out ocrResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decoding OCR response: %w", err)
	}

	pages := make([]string, 0, len(out.Pages))
	for _, p := range out.Pages {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: OCR recognized no text", ErrNoText)
	}

	return &Result{
		Text:   strings.Join(pages, "\n"),
		Pages:  len(pages),
		Method: "ocr",
	}, nil
}
