// Package extract pulls plain text out of uploaded documents.
package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"secondbrain/internal/apperr"
)

type PDFResult struct {
	Text      string
	PageCount int
	WordCount int
}

// PDFText extracts plain text from a PDF. Pages that fail to decode are
// skipped rather than failing the whole document.
func PDFText(data []byte) (*PDFResult, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperr.Validation("file is not a readable PDF")
	}

	var sb strings.Builder
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	return &PDFResult{
		Text:      text,
		PageCount: pages,
		WordCount: len(strings.Fields(text)),
	}, nil
}
