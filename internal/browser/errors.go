package browser

import (
	"errors"
	"fmt"
)

// ErrLaunch is wrapped by every error returned when the browser process
// cannot be started or does not answer. Nothing can be recorded without a
// browser, so callers treat it as fatal.
var ErrLaunch = errors.New("browser launch failed")

// DriverError describes a failed driver operation. Selector is empty for
// operations that do not target an element (navigation, screenshots).
type DriverError struct {
	Op       string
	Selector string
	Err      error
}

func (e *DriverError) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("browser: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("browser: %s %q: %v", e.Op, e.Selector, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }
