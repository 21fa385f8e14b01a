package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"contract-backend/internal/staging"
)

// ErrExtractionFailed wraps any failure to open a document or read one of its pages.
var ErrExtractionFailed = errors.New("extraction failed")

// Text normalizes a staged payload and extracts the text of the PDF it holds.
// A payload that is neither raw bytes nor a well-formed wrapped buffer fails with
// staging.ErrInvalidStagedData.
func Text(ctx context.Context, payload staging.Payload) (string, error) {
	data, err := staging.Normalize(payload)
	if err != nil {
		return "", err
	}
	return PDF(ctx, data)
}

// PDF walks pages 1..N in order. Text fragments of a page are joined with single
// spaces and pages are joined with newlines. Library: github.com/ledongthuc/pdf.
func PDF(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := extractPDF(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	total := reader.NumPage()
	if total < 1 {
		return "", errors.New("document has no pages")
	}

	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			return "", fmt.Errorf("page %d: not found", i)
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, joinFragments(rows))
	}
	return strings.Join(pages, "\n"), nil
}

func joinFragments(rows pdf.Rows) string {
	var parts []string
	for _, row := range rows {
		for _, fragment := range row.Content {
			if fragment.S == "" {
				continue
			}
			parts = append(parts, fragment.S)
		}
	}
	return strings.Join(parts, " ")
}
