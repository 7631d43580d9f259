package results

import (
	"fmt"
	"io"
	"time"
)

// Snapshot is an immutable view of a RunReport at a point in time. Renderers
// consume snapshots so that output is a pure function of the captured state.
type Snapshot struct {
	RunID     string       `json:"run_id"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Sealed    bool         `json:"sealed"`
	Summary   Summary      `json:"summary"`
	Results   []StepResult `json:"results"`
}

// Duration returns EndTime - StartTime, or zero when the run was never sealed.
func (s *Snapshot) Duration() time.Duration {
	if !s.Sealed || s.EndTime.Before(s.StartTime) {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// DurationSeconds is the duration as fractional seconds.
func (s *Snapshot) DurationSeconds() float64 {
	return s.Duration().Seconds()
}

// Snapshot copies the current state of the report.
func (r *RunReport) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs := make([]StepResult, len(r.results))
	copy(rs, r.results)
	return Snapshot{
		RunID:     r.id,
		StartTime: r.startTime,
		EndTime:   r.endTime,
		Sealed:    r.sealed,
		Summary:   summarize(rs),
		Results:   rs,
	}
}

// snapshotRecord is the wire form of a Snapshot. The stored summary is not
// read back; it is recomputed from the results.
type snapshotRecord struct {
	RunID     string       `json:"run_id"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Sealed    bool         `json:"sealed"`
	Results   []stepRecord `json:"results"`
}

// replayClock reads back stored timestamps while a report is rebuilt.
type replayClock struct{ at time.Time }

func (c *replayClock) Now() time.Time                  { return c.at }
func (c *replayClock) Since(t time.Time) time.Duration { return c.at.Sub(t) }

// Restore rebuilds a sealed RunReport from a stored snapshot. Each result is
// appended again through AddResultString at its stored timestamp, so a
// restored run passes the same checks as a live one.
func Restore(s Snapshot) (*RunReport, error) {
	if s.StartTime.IsZero() {
		return nil, ErrNotStarted
	}
	end := s.EndTime
	if end.IsZero() {
		end = s.StartTime
		if n := len(s.Results); n > 0 {
			end = s.Results[n-1].timestamp
		}
	}
	if end.Before(s.StartTime) {
		return nil, fmt.Errorf("run %s: end time %s precedes start time %s", s.RunID, end, s.StartTime)
	}

	clk := &replayClock{at: s.StartTime}
	r := &RunReport{
		id:        s.RunID,
		clock:     clk,
		startTime: s.StartTime,
		results:   make([]StepResult, 0, len(s.Results)),
	}
	for i, res := range s.Results {
		clk.at = res.timestamp
		if _, err := r.AddResultString(res.name, string(res.status), res.message, res.artifactPath); err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
	}
	clk.at = end
	if _, err := r.Finalize(); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeSnapshot reads a JSON-encoded snapshot, as written by the JSON
// reporter. Statuses are checked after decoding so an unknown one surfaces
// as ErrInvalidStatus rather than as a syntax error.
func DecodeSnapshot(rd io.Reader) (Snapshot, error) {
	var rec snapshotRecord
	if err := json.NewDecoder(rd).Decode(&rec); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode run snapshot: %w", err)
	}

	rs := make([]StepResult, 0, len(rec.Results))
	for i, sr := range rec.Results {
		res, err := sr.result()
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to decode run snapshot: result %d: %w", i, err)
		}
		rs = append(rs, res)
	}
	return Snapshot{
		RunID:     rec.RunID,
		StartTime: rec.StartTime,
		EndTime:   rec.EndTime,
		Sealed:    rec.Sealed,
		Summary:   summarize(rs),
		Results:   rs,
	}, nil
}
