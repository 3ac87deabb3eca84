package parser

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/invoice"
)

// blockingParser holds every call until release is closed.
type blockingParser struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingParser) ParseText(ctx context.Context, text string) (*invoice.ParsedResult, error) {
	b.started <- struct{}{}
	<-b.release
	notes := text
	return &invoice.ParsedResult{Notes: &notes}, nil
}

func (b *blockingParser) ParseAudio(ctx context.Context, audio io.Reader, mimeType string) (*invoice.ParsedResult, error) {
	return b.ParseText(ctx, "audio")
}

func TestGuardRejectsConcurrentRequests(t *testing.T) {
	inner := &blockingParser{started: make(chan struct{}), release: make(chan struct{})}
	g := NewGuard(inner)

	done := make(chan error, 1)
	go func() {
		_, err := g.ParseText(context.Background(), "first")
		done <- err
	}()
	<-inner.started
	assert.True(t, g.Busy())

	_, err := g.ParseText(context.Background(), "second")
	assert.ErrorIs(t, err, ErrParseInFlight)
	_, err = g.ParseAudio(context.Background(), nil, "audio/ogg")
	assert.ErrorIs(t, err, ErrParseInFlight)

	close(inner.release)
	require.NoError(t, <-done)
	assert.False(t, g.Busy())

	go func() { <-inner.started }()
	result, err := g.ParseText(context.Background(), "third")
	require.NoError(t, err)
	assert.Equal(t, "third", *result.Notes)
}
