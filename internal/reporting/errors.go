package reporting

import "fmt"

// ReportWriteError reports that a rendered report could not be written. It
// never changes a run's verdict; callers log it and move on.
type ReportWriteError struct {
	Path string
	Err  error
}

func (e *ReportWriteError) Error() string {
	return fmt.Sprintf("failed to write report %s: %v", e.Path, e.Err)
}

func (e *ReportWriteError) Unwrap() error { return e.Err }
