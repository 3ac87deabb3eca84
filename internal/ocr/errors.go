package ocr

import (
	"errors"
	"fmt"
)

// Common OCR processing errors
var (
	// ErrImageTooLarge is returned when the photo exceeds the Vision API size limit.
	ErrImageTooLarge = errors.New("image exceeds the maximum size (20MB)")

	// ErrUnsupportedImage is returned when the data is not a JPEG, PNG, GIF or WebP image.
	ErrUnsupportedImage = errors.New("unsupported or corrupted image")

	// ErrOCRFailed is returned when the Google Cloud Vision API fails to process the image.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrNoText is returned when no handwriting or print was found in the photo.
	ErrNoText = errors.New("image contains no readable text")
)

// Error wraps errors with additional context about the OCR processing failure.
type Error struct {
	// Op is the operation that failed (e.g., "ExtractText", "NewVisionExtractor").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapError wraps an error as an *Error if it isn't already one.
func WrapError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *Error
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return &Error{Op: op, Err: err, Details: details}
}
