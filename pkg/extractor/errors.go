package extractor

import (
	"errors"
	"fmt"
)

// CorruptedFileError reports a file whose bytes could not be parsed as the
// declared format.
type CorruptedFileError struct {
	Filename string
	Reason   string
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Filename)
}

// UnsupportedFormatError reports a declared content type outside the
// supported set.
type UnsupportedFormatError struct {
	Filename    string
	ContentType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %s: %s", e.ContentType, e.Filename)
}

func IsCorruptedFile(err error) bool {
	var ce *CorruptedFileError
	return errors.As(err, &ce)
}

func IsUnsupportedFormat(err error) bool {
	var ue *UnsupportedFormatError
	return errors.As(err, &ue)
}
