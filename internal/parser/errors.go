package parser

import (
	"errors"
	"fmt"
)

// Common parser errors
var (
	// ErrMissingCredentials is returned when no OpenAI API key is configured.
	ErrMissingCredentials = errors.New("missing OpenAI credentials: set OPENAI_API_KEY")

	// ErrEmptyInput is returned for blank text or an empty audio payload.
	ErrEmptyInput = errors.New("nothing to parse")

	// ErrEmptyResponse is returned when the model answers with no content.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrMalformedResponse is returned when the model output is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed response from model")

	// ErrUnsupportedAudio is returned for a mime type the transcription API cannot take.
	ErrUnsupportedAudio = errors.New("unsupported audio format")

	// ErrParseInFlight is returned by Guard while another request is outstanding.
	ErrParseInFlight = errors.New("a parse request is already in progress")
)

// ParseError wraps parser failures with the operation that failed.
type ParseError struct {
	Op      string
	Err     error
	Details string
}

func (e *ParseError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("parser: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("parser: %s failed: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewParseError(op string, err error, details string) *ParseError {
	return &ParseError{Op: op, Err: err, Details: details}
}
