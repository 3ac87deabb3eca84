// Package invoice implements the invoice computation and lifecycle model.
//
// An order is composed in a Draft (by hand or by merging a ParsedResult from
// the external parser), priced by ComputeTotals on every read, and turned into
// an immutable models.Invoice by a Finalizer. Persisting finalized invoices is
// the job of the store package.
//
// Amounts use shopspring/decimal so that percentage discounts are exact:
// a 2% discount on 130,000 is 2,600, not 2599.9999.
//
// Lifecycle:
//   - Draft: created with one blank row, mutated freely, reset or consumed
//   - Finalize: validates, copies and freezes the draft into an Invoice
//   - Invoice: only its Status may change afterwards
package invoice

import (
	"context"
	"io"
)

// Parser turns free-form input into a partial draft. Implementations live in
// the parser package; the draft only relies on this contract.
type Parser interface {
	// ParseText extracts draft fields from a typed or transcribed order.
	ParseText(ctx context.Context, text string) (*ParsedResult, error)

	// ParseAudio extracts draft fields from a voice note with the declared mime type.
	ParseAudio(ctx context.Context, audio io.Reader, mimeType string) (*ParsedResult, error)
}
