// -- internal/reporting/reporter.go --
package reporting

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
	"github.com/xkilldash9x/ebay-flow/internal/artifacts"
	"github.com/xkilldash9x/ebay-flow/internal/results"
)

// Reporter defines the interface for writing a run to an output.
type Reporter interface {
	// Write hands the reporter the run to render.
	Write(snap *results.Snapshot) error
	// Close renders the report and releases the output.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// atomicFile buffers everything written to it and moves the complete file into
// place on Close. Nothing is created if nothing was written.
type atomicFile struct {
	path    string
	buf     bytes.Buffer
	written bool
	closed  bool
}

func (f *atomicFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	f.written = true
	return f.buf.Write(p)
}

func (f *atomicFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if !f.written {
		return nil
	}
	if err := artifacts.WriteFileAtomic(f.path, f.buf.Bytes(), 0o644); err != nil {
		return &ReportWriteError{Path: f.path, Err: err}
	}
	return nil
}

// New creates a reporter for format writing to outputPath. An empty path or
// "stdout" writes to standard output. The file is only created when the
// reporter is closed.
func New(format, outputPath string, opts Options) (Reporter, error) {
	var writer io.WriteCloser
	if outputPath == "" || outputPath == "stdout" {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		writer = &atomicFile{path: outputPath}
	}

	switch schemas.ReportFormat(strings.ToLower(format)) {
	case schemas.FormatHTML:
		return NewHTMLReporter(writer, opts), nil
	case schemas.FormatJSON:
		return NewJSONReporter(writer, opts), nil
	case schemas.FormatJUnit:
		return NewJUnitReporter(writer, opts), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
