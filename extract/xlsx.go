package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor flattens spreadsheet lab reports into tab-separated text.
type XLSXExtractor struct{}

func (x *XLSXExtractor) SupportedFormats() []string { return []string{"xlsx", "xls"} }

func (x *XLSXExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	sheets := 0
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		sheets++
	}

	if sheets == 0 {
		return nil, fmt.Errorf("%w: no data in workbook", ErrNoText)
	}

	return &Result{Text: sb.String(), Pages: sheets, Method: "native"}, nil
}
