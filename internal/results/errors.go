package results

import "errors"

var (
	// ErrInvalidStatus is returned when a status outside PASS, FAIL, WARNING is supplied.
	ErrInvalidStatus = errors.New("invalid step status")
	// ErrReportSealed is returned by AddResult once the report has been finalized.
	ErrReportSealed = errors.New("run report already finalized")
	// ErrNotStarted is returned when finalizing a report that has no start time.
	ErrNotStarted = errors.New("run report has no start time")
)
