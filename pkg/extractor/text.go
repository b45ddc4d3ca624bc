package extractor

import (
	"strings"
	"unicode/utf8"
)

// extractText decodes the bytes as UTF-8, falling back to Latin-1. The
// fallback is total: every byte is a valid Latin-1 code point, so a text file
// can never fail extraction.
func extractText(data []byte) (*Result, error) {
	if utf8.Valid(data) {
		return &Result{Text: string(data), PageCount: 1}, nil
	}

	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(rune(b))
	}

	return &Result{Text: sb.String(), PageCount: 1}, nil
}
