// File: internal/results/run.go
package results

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"
)

// Summary holds the per-status counts of a run.
type Summary struct {
	Total   int `json:"total"`
	Pass    int `json:"pass"`
	Fail    int `json:"fail"`
	Warning int `json:"warning"`
}

// RunReport is the ordered, append-only log of step outcomes for one run.
//
// The report is created at run start, grows through AddResult, and is sealed
// by Finalize. After sealing, AddResult fails with ErrReportSealed. The same
// clock stamps the start time, every result, and the end time so durations
// are computed from one source.
type RunReport struct {
	mu sync.Mutex

	id    string
	clock clock.PassiveClock

	startTime time.Time
	endTime   time.Time
	sealed    bool

	results []StepResult
	// tally is maintained incrementally on append. Summary() never reads it;
	// it exists so the incremental and full-scan counts can be compared.
	tally Summary
}

// NewRunReport starts a new run using clk for all timestamps.
// A nil clock falls back to the real wall clock.
func NewRunReport(clk clock.PassiveClock) *RunReport {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &RunReport{
		id:        uuid.New().String(),
		clock:     clk,
		startTime: clk.Now(),
	}
}

// ID returns the unique identifier of the run.
func (r *RunReport) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// StartTime returns the time the run started.
func (r *RunReport) StartTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startTime
}

// EndTime returns the end time and whether the report has been finalized.
func (r *RunReport) EndTime() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endTime, r.sealed
}

// Sealed reports whether Finalize has been called.
func (r *RunReport) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}

// AddResult appends a new step outcome stamped with the current clock reading.
// Names are not required to be unique. An invalid status or a sealed report
// leaves the result list untouched.
func (r *RunReport) AddResult(name string, status Status, message, artifactPath string) (StepResult, error) {
	if !status.Valid() {
		return StepResult{}, fmt.Errorf("step %q: %w: %q", name, ErrInvalidStatus, string(status))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return StepResult{}, fmt.Errorf("step %q: %w", name, ErrReportSealed)
	}

	ts := r.now()
	if n := len(r.results); n > 0 {
		if last := r.results[n-1].timestamp; ts.Before(last) {
			ts = last
		}
	} else if ts.Before(r.startTime) {
		ts = r.startTime
	}

	res := StepResult{
		name:         name,
		status:       status,
		message:      message,
		artifactPath: artifactPath,
		timestamp:    ts,
	}
	r.results = append(r.results, res)
	r.tally.add(status)
	return res, nil
}

// AddResultString parses a raw status string before appending. It is the
// entry point for callers holding untyped statuses.
func (r *RunReport) AddResultString(name, status, message, artifactPath string) (StepResult, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return StepResult{}, fmt.Errorf("step %q: %w", name, err)
	}
	return r.AddResult(name, st, message, artifactPath)
}

// Results returns a copy of the recorded results in execution order.
func (r *RunReport) Results() []StepResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StepResult, len(r.results))
	copy(out, r.results)
	return out
}

// Len returns the number of recorded results.
func (r *RunReport) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

// Summary counts results per status with a single pass over the list.
// It does not mutate the report and may be called after Finalize.
func (r *RunReport) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return summarize(r.results)
}

// Tally returns the counts maintained incrementally during AddResult.
func (r *RunReport) Tally() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tally
}

// Finalize seals the report and records the end time. The first call reads
// the clock; later calls return the stored end time unchanged.
func (r *RunReport) Finalize() (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.startTime.IsZero() {
		return time.Time{}, ErrNotStarted
	}
	if r.sealed {
		return r.endTime, nil
	}

	end := r.now()
	if end.Before(r.startTime) {
		end = r.startTime
	}
	if n := len(r.results); n > 0 && end.Before(r.results[n-1].timestamp) {
		end = r.results[n-1].timestamp
	}
	r.endTime = end
	r.sealed = true
	return end, nil
}

// Duration returns end minus start. Before Finalize it measures up to now.
func (r *RunReport) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return r.endTime.Sub(r.startTime)
	}
	return r.now().Sub(r.startTime)
}

func (r *RunReport) now() time.Time {
	if r.clock == nil {
		return time.Now()
	}
	return r.clock.Now()
}

func (s *Summary) add(st Status) {
	s.Total++
	switch st {
	case StatusPass:
		s.Pass++
	case StatusFail:
		s.Fail++
	case StatusWarning:
		s.Warning++
	}
}

func summarize(rs []StepResult) Summary {
	var s Summary
	for _, res := range rs {
		s.add(res.status)
	}
	return s
}
