// Package extractor turns raw document bytes into plain text. It is a pure
// function of its inputs: no I/O, no shared state, and every failure comes
// back as a classified error value rather than a panic.
package extractor

import "fmt"

// Result is the outcome of a successful extraction. Extract returns either a
// Result or an error, never both.
type Result struct {
	Text      string
	PageCount int
}

const (
	ContentTypePDF      = "application/pdf"
	ContentTypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeText     = "text/plain"
	ContentTypeMarkdown = "text/markdown"
)

const (
	formatPDF  = "pdf"
	formatDOCX = "docx"
	formatText = "text"
)

var supportedContentTypes = map[string]string{
	ContentTypePDF:      formatPDF,
	ContentTypeDOCX:     formatDOCX,
	ContentTypeText:     formatText,
	ContentTypeMarkdown: formatText,
}

// Supported reports whether the declared content type can be extracted.
func Supported(contentType string) bool {
	_, ok := supportedContentTypes[contentType]
	return ok
}

// Extract dispatches on the declared content type. Markdown is treated as
// plain text; no markup interpretation happens here. Failures are classified:
// UnsupportedFormatError for unknown types (without touching the bytes),
// CorruptedFileError for unparseable files, and a generic error carrying the
// filename for anything unforeseen. A fault inside a format handler never
// escapes as a panic.
func Extract(data []byte, contentType, filename string) (res *Result, err error) {
	format, ok := supportedContentTypes[contentType]
	if !ok {
		return nil, &UnsupportedFormatError{Filename: filename, ContentType: contentType}
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("extraction failed for %s: %v", filename, r)
		}
	}()

	switch format {
	case formatPDF:
		return extractPDF(data, filename)
	case formatDOCX:
		return extractDOCX(data, filename)
	default:
		return extractText(data)
	}
}
