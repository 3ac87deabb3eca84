// Package ocr reads photographed order notes using Google Cloud Vision API.
//
// Customers often send a picture of a handwritten order ("20 bags Dangote,
// deliver to Ikeja"). The extracted text is handed to the parser package
// like any typed order.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// Cloud Vision API Limitations:
//   - Maximum image size: 20MB
//   - Supported formats here: JPEG, PNG, GIF, WebP
//
// Implementation Details:
//   - Uses DOCUMENT_TEXT_DETECTION, which handles dense and handwritten text
//   - Sends the image inline (no Cloud Storage upload)
package ocr

import (
	"context"
	"io"
	"time"
)

// TextExtractor pulls text out of an image.
type TextExtractor interface {
	// ExtractText returns the text found in the image in reading order.
	ExtractText(ctx context.Context, image io.Reader) (string, error)

	// ExtractTextWithMetadata returns the text plus confidence information.
	ExtractTextWithMetadata(ctx context.Context, image io.Reader) (*Result, error)

	Close() error
}

// Result contains the results of OCR processing with metadata.
type Result struct {
	// Text is the extracted text content in reading order.
	Text string `json:"text"`

	// MimeType is the detected image type, e.g. image/jpeg.
	MimeType string `json:"mime_type"`

	// Confidence is the average block confidence (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	// LanguageCodes contains the languages detected on the page.
	LanguageCodes []string `json:"language_codes,omitempty"`

	ProcessedAt        time.Time     `json:"processed_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
}
