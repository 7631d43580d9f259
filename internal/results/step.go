package results

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StepResult is the recorded outcome of one step. Values are immutable once
// created; they are only produced by RunReport.AddResult or by decoding a
// stored run.
type StepResult struct {
	name         string
	status       Status
	message      string
	artifactPath string
	timestamp    time.Time
}

func (r StepResult) Name() string         { return r.name }
func (r StepResult) Status() Status       { return r.status }
func (r StepResult) Message() string      { return r.message }
func (r StepResult) ArtifactPath() string { return r.artifactPath }
func (r StepResult) Timestamp() time.Time { return r.timestamp }

// HasArtifact reports whether a screenshot was attached to the step.
func (r StepResult) HasArtifact() bool { return r.artifactPath != "" }

// stepRecord is the wire form of a StepResult. The status stays a plain
// string so it can be validated outside the decoder.
type stepRecord struct {
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Message      string    `json:"message"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func (rec stepRecord) result() (StepResult, error) {
	st, err := ParseStatus(rec.Status)
	if err != nil {
		return StepResult{}, fmt.Errorf("step %q: %w", rec.Name, err)
	}
	return StepResult{
		name:         rec.Name,
		status:       st,
		message:      rec.Message,
		artifactPath: rec.ArtifactPath,
		timestamp:    rec.Timestamp,
	}, nil
}

// MarshalJSON implements json.Marshaler.
func (r StepResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(stepRecord{
		Name:         r.name,
		Status:       string(r.status),
		Message:      r.message,
		ArtifactPath: r.artifactPath,
		Timestamp:    r.timestamp,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Unknown statuses are rejected.
func (r *StepResult) UnmarshalJSON(data []byte) error {
	var rec stepRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to decode step result: %w", err)
	}
	res, err := rec.result()
	if err != nil {
		return err
	}
	*r = res
	return nil
}
