package parser

import (
	"context"
	"io"
	"sync/atomic"

	"invoicer/internal/invoice"
)

// Guard lets one request through at a time and rejects the rest with
// ErrParseInFlight instead of queueing them.
type Guard struct {
	next     invoice.Parser
	inFlight atomic.Bool
}

var _ invoice.Parser = (*Guard)(nil)

func NewGuard(next invoice.Parser) *Guard {
	return &Guard{next: next}
}

// Busy reports whether a request is outstanding.
func (g *Guard) Busy() bool {
	return g.inFlight.Load()
}

func (g *Guard) ParseText(ctx context.Context, text string) (*invoice.ParsedResult, error) {
	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, NewParseError("ParseText", ErrParseInFlight, "")
	}
	defer g.inFlight.Store(false)
	return g.next.ParseText(ctx, text)
}

func (g *Guard) ParseAudio(ctx context.Context, audio io.Reader, mimeType string) (*invoice.ParsedResult, error) {
	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, NewParseError("ParseAudio", ErrParseInFlight, "")
	}
	defer g.inFlight.Store(false)
	return g.next.ParseAudio(ctx, audio, mimeType)
}
