// Package upload holds the stateless request-level checks for incoming
// files. It owns no state; the store learns about a file only after these
// checks pass.
package upload

import (
	"errors"
	"strings"
)

// MaxFileSize is the upload cap, 10 MiB.
const MaxFileSize = 10 << 20

// AllowedContentType is the only accepted MIME type.
const AllowedContentType = "application/pdf"

var (
	ErrNoFile       = errors.New("no file provided")
	ErrNotPDF       = errors.New("only PDF files are allowed")
	ErrTooLarge     = errors.New("file size exceeds maximum allowed size of 10MB")
	ErrBadExtension = errors.New("file must have .pdf extension")
)

// Validate applies the upload checks in the order the user sees them
// reported: presence, MIME type, size, extension.
func Validate(filename string, size int64, contentType string) error {
	if filename == "" || size == 0 {
		return ErrNoFile
	}
	if contentType != AllowedContentType {
		return ErrNotPDF
	}
	if size > MaxFileSize {
		return ErrTooLarge
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return ErrBadExtension
	}
	return nil
}
