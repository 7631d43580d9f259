package artifacts

import "fmt"

// Reasons reported in CaptureError.
const (
	ReasonNoTarget   = "no target"
	ReasonScreenshot = "screenshot failed"
	ReasonEmpty      = "empty image"
	ReasonWrite      = "write failed"
	ReasonPanic      = "panic during capture"
)

// CaptureError describes a screenshot that could not be saved. It is never
// fatal to a run; callers record the step without an artifact.
type CaptureError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("capture %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("capture %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }
