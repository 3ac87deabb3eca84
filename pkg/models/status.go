package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the payment state of a finalized invoice. Any status may move to any other.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusPaid, StatusCancelled}

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus parses a status name case-insensitively. "canceled" is accepted as an alias.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if s == "canceled" {
		s = StatusCancelled
	}
	if !s.Valid() {
		return "", fmt.Errorf("unknown invoice status %q (want pending, paid or cancelled)", value)
	}
	return s, nil
}

// UnmarshalJSON degrades unknown values to pending so older records never
// fail to load. An absent field leaves the zero value; callers normalize it.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*s = StatusPending
		return nil
	}
	parsed, err := ParseStatus(str)
	if err != nil {
		*s = StatusPending
		return nil
	}
	*s = parsed
	return nil
}
