package medreport

import "errors"

var (
	// ErrUnsupportedFormat is returned for document formats with no extractor.
	ErrUnsupportedFormat = errors.New("medreport: unsupported document format")

	// ErrExtractionFailed is returned when the document cannot be read or
	// recognized (corrupted file, zero pages, OCR failure).
	ErrExtractionFailed = errors.New("medreport: text extraction failed")

	// ErrParseService is returned when the medical parsing service call fails.
	ErrParseService = errors.New("medreport: medical parsing service failed")

	// ErrNoTestResults is returned when the document yields no recognized
	// test values. A terminal, reportable condition rather than a crash.
	ErrNoTestResults = errors.New("medreport: no valid test results")

	// ErrRecognizerService is returned when the entity recognition service
	// call fails.
	ErrRecognizerService = errors.New("medreport: entity recognition service failed")

	// ErrGeocodeService is returned when the geocoding service call fails.
	ErrGeocodeService = errors.New("medreport: geocoding service failed")

	// ErrAdviceService is returned when the recommendation service call fails.
	ErrAdviceService = errors.New("medreport: recommendation service failed")

	// ErrReportNotFound is returned when a stored report ID does not exist.
	ErrReportNotFound = errors.New("medreport: report not found")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("medreport: invalid configuration")
)
