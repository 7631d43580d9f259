package reporting

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/internal/results"
)

// junitClassName groups every step under one class in CI dashboards.
const junitClassName = "ebay-flow"

// JUnitReporter writes the run as a JUnit XML test suite, one test case per
// step. FAIL steps carry a <failure>; WARNING steps pass with a note in
// <system-out> and a status property.
type JUnitReporter struct {
	writer io.WriteCloser
	opts   Options
	logger *zap.Logger

	mu   sync.Mutex
	snap *results.Snapshot
}

func NewJUnitReporter(writer io.WriteCloser, opts Options) *JUnitReporter {
	opts = opts.withDefaults()
	return &JUnitReporter{writer: writer, opts: opts, logger: opts.Logger.Named("junit_reporter")}
}

func (r *JUnitReporter) Write(snap *results.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("junit reporter: nil snapshot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap
	return nil
}

func (r *JUnitReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snap == nil {
		r.writer.Close()
		return fmt.Errorf("junit reporter: nothing was written")
	}

	doc := BuildJUnit(r.snap, r.opts.withDefaults())
	_, writeErr := doc.WriteTo(r.writer)
	closeErr := r.writer.Close()

	if writeErr != nil {
		r.logger.Error("Failed to write JUnit XML.", zap.Error(writeErr))
		return fmt.Errorf("failed to write junit report: %w", writeErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer.", zap.Error(closeErr))
		return closeErr
	}
	return nil
}

// BuildJUnit converts a snapshot to a JUnit XML document.
func BuildJUnit(snap *results.Snapshot, opts Options) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	seconds := formatSeconds(snap.Duration())
	suites := doc.CreateElement("testsuites")
	suites.CreateAttr("name", opts.Title)
	suites.CreateAttr("tests", strconv.Itoa(snap.Summary.Total))
	suites.CreateAttr("failures", strconv.Itoa(snap.Summary.Fail))
	suites.CreateAttr("time", seconds)

	suite := suites.CreateElement("testsuite")
	suite.CreateAttr("name", opts.Title)
	suite.CreateAttr("id", snap.RunID)
	suite.CreateAttr("tests", strconv.Itoa(snap.Summary.Total))
	suite.CreateAttr("failures", strconv.Itoa(snap.Summary.Fail))
	suite.CreateAttr("errors", "0")
	suite.CreateAttr("skipped", "0")
	suite.CreateAttr("time", seconds)
	suite.CreateAttr("timestamp", snap.StartTime.In(opts.Location).Format("2006-01-02T15:04:05"))

	props := suite.CreateElement("properties")
	addProperty(props, "warnings", strconv.Itoa(snap.Summary.Warning))
	if opts.Subtitle != "" {
		addProperty(props, "subtitle", opts.Subtitle)
	}

	prev := snap.StartTime
	for _, res := range snap.Results {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("name", res.Name())
		tc.CreateAttr("classname", junitClassName)
		tc.CreateAttr("time", formatSeconds(res.Timestamp().Sub(prev)))
		prev = res.Timestamp()

		tcProps := tc.CreateElement("properties")
		addProperty(tcProps, "status", res.Status().String())
		if res.HasArtifact() {
			addProperty(tcProps, "screenshot", res.ArtifactPath())
		}

		switch res.Status() {
		case results.StatusFail:
			failure := tc.CreateElement("failure")
			failure.CreateAttr("message", res.Message())
			failure.CreateAttr("type", res.Status().String())
			failure.SetText(res.Message())
		case results.StatusWarning:
			tc.CreateElement("system-out").SetText("WARNING: " + res.Message())
		default:
			if res.Message() != "" {
				tc.CreateElement("system-out").SetText(res.Message())
			}
		}
	}

	doc.Indent(2)
	return doc
}

func addProperty(parent *etree.Element, name, value string) {
	p := parent.CreateElement("property")
	p.CreateAttr("name", name)
	p.CreateAttr("value", value)
}

func formatSeconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
