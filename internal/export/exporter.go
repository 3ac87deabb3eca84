// Package export presents finalized invoices outside the store: as chat
// text and share links, as PDF and PNG files, and as rows of a Google Sheet.
//
// None of these outputs feed back into the store; an export failure never
// changes an invoice.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// Format is a file export format.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// ParseFormat accepts pdf, png and the alias image.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "png", "image":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FileName returns Invoice-<number>.<ext>.
func FileName(inv models.Invoice, format Format) string {
	return fmt.Sprintf("Invoice-%s.%s", inv.InvoiceNumber, format)
}

// Exporter writes invoice files to disk.
type Exporter struct {
	business Business
	log      zerolog.Logger
}

func NewExporter(business Business) *Exporter {
	return &Exporter{
		business: business,
		log:      logger.WithComponent("export"),
	}
}

// Render draws the invoice in the given format to w.
func (e *Exporter) Render(w io.Writer, inv models.Invoice, format Format) error {
	switch format {
	case FormatPDF:
		return RenderPDF(w, inv, e.business)
	case FormatPNG:
		return RenderPNG(w, inv, e.business)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Export renders the invoice and saves it as dir/FileName(inv, format),
// returning the written path. Nothing is written if rendering fails.
func (e *Exporter) Export(ctx context.Context, inv models.Invoice, format Format, dir string) (string, error) {
	const op = "Export"

	if err := ctx.Err(); err != nil {
		return "", &ExportError{Op: op, Invoice: inv.InvoiceNumber, Err: err}
	}

	if format != FormatPDF && format != FormatPNG {
		return "", &ExportError{Op: op, Invoice: inv.InvoiceNumber, Err: ErrUnsupportedFormat, Details: string(format)}
	}

	var buf bytes.Buffer
	if err := e.Render(&buf, inv, format); err != nil {
		return "", &ExportError{Op: op, Invoice: inv.InvoiceNumber, Err: fmt.Errorf("%w: %v", ErrRenderFailed, err), Details: string(format)}
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &ExportError{Op: op, Invoice: inv.InvoiceNumber, Err: fmt.Errorf("%w: %v", ErrWriteFailed, err), Details: dir}
	}

	path := filepath.Join(dir, FileName(inv, format))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", &ExportError{Op: op, Invoice: inv.InvoiceNumber, Err: fmt.Errorf("%w: %v", ErrWriteFailed, err), Details: path}
	}

	e.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("format", string(format)).
		Str("path", path).
		Int("bytes", buf.Len()).
		Msg("Invoice exported")

	return path, nil
}
