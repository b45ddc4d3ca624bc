package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF walks every page of the document. Pages that yield no text are
// omitted from the output but still counted; the reported page count is the
// total number of pages in the file.
func extractPDF(data []byte, filename string) (res *Result, err error) {
	// The pdf package panics on some malformed inputs instead of returning
	// an error; fold those into the corrupted-file classification.
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &CorruptedFileError{
				Filename: filename,
				Reason:   fmt.Sprintf("failed to parse PDF: %v", r),
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &CorruptedFileError{
			Filename: filename,
			Reason:   fmt.Sprintf("failed to parse PDF: %v", err),
		}
	}

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		// A page with no content stream is still a valid page; it just
		// contributes no text. Only NewReader failures are fatal.
		if text := pagePlainText(page); text != "" {
			pages = append(pages, text)
		}
	}

	return &Result{Text: strings.Join(pages, "\n\n"), PageCount: total}, nil
}

// pagePlainText returns the page's text, or "" when the page has none or the
// pdf package cannot decode it. Per-page faults, including panics, never fail
// the document.
func pagePlainText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
