package schemas

// Outcome labels a captured screenshot with how the run was going when it was
// taken. The values appear verbatim in screenshot file names.
type Outcome string

const (
	OutcomePassed Outcome = "passed"
	OutcomeFailed Outcome = "failed"
)

// OutcomeFor maps a success flag to its label.
func OutcomeFor(success bool) Outcome {
	if success {
		return OutcomePassed
	}
	return OutcomeFailed
}

// ReportFormat identifies an output format of the report renderer.
type ReportFormat string

const (
	FormatHTML  ReportFormat = "html"
	FormatJSON  ReportFormat = "json"
	FormatJUnit ReportFormat = "junit"
)

// Extension returns the file extension conventionally used for the format.
func (f ReportFormat) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatJUnit:
		return ".xml"
	default:
		return ".html"
	}
}
