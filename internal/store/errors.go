package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a KV backend when the key has never been written.
	ErrNotFound = errors.New("key not found")

	// ErrInvalidStatus is returned when a status change names an unknown status.
	ErrInvalidStatus = errors.New("invalid invoice status")

	// ErrHistoryUnreadable is returned by a mutation when the stored history
	// could not be read and so cannot be preserved before it is overwritten.
	ErrHistoryUnreadable = errors.New("invoice history unreadable")
)

// StoreError wraps storage failures with the operation and slot involved.
type StoreError struct {
	Op      string
	Err     error
	Details string
}

func (e *StoreError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("store: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("store: %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapStoreError wraps err as a StoreError unless it already is one.
func WrapStoreError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{Op: op, Err: err, Details: details}
}
