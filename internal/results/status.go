package results

import (
	"fmt"
	"strings"
)

// Status is the outcome of a single recorded step. The set is closed: only
// PASS, FAIL and WARNING exist, and anything else is rejected at the boundary.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusWarning Status = "WARNING"
)

// AllStatuses lists the valid statuses in report order.
var AllStatuses = []Status{StatusPass, StatusFail, StatusWarning}

// ParseStatus converts a canonical status string into a Status.
// Matching is exact; "pass" or "Passed" are rejected rather than coerced.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusFail, StatusWarning:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// CSSClass returns the lowercase class name used by the HTML report badges.
func (s Status) CSSClass() string {
	return strings.ToLower(string(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	st, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
