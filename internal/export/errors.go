package export

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for an export format other than pdf or png.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrRenderFailed is returned when the document could not be drawn.
	ErrRenderFailed = errors.New("failed to render invoice")

	// ErrWriteFailed is returned when the rendered file could not be saved.
	ErrWriteFailed = errors.New("failed to save invoice file")

	// ErrMissingCredentials is returned when no Google credentials are configured for the sheet register.
	ErrMissingCredentials = errors.New("missing Google credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")

	// ErrInvalidSheetURL is returned when GOOGLE_SHEET_URL is not a spreadsheet link.
	ErrInvalidSheetURL = errors.New("invalid Google Sheets URL format")
)

// ExportError wraps export failures with the invoice and operation involved.
type ExportError struct {
	Op      string
	Invoice string
	Err     error
	Details string
}

func (e *ExportError) Error() string {
	msg := fmt.Sprintf("export: %s failed for %s", e.Op, e.Invoice)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

func (e *ExportError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
