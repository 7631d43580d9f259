package reporting

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
	"github.com/xkilldash9x/ebay-flow/internal/results"
)

// Generate finalizes report, renders it as HTML, and writes it to outputPath.
// The file is replaced atomically. A failure to create the directory or write
// the file is returned as *ReportWriteError.
func Generate(report *results.RunReport, outputPath string, opts Options) error {
	snap, err := seal(report)
	if err != nil {
		return err
	}
	return write(schemas.FormatHTML, &snap, outputPath, opts)
}

// GenerateAll finalizes report and writes one file per format. The HTML report
// goes to htmlPath; other formats are written next to it with the same base
// name and their own extension. It returns the paths that were written and
// the joined errors of the ones that were not.
func GenerateAll(report *results.RunReport, htmlPath string, formats []string, opts Options) ([]string, error) {
	snap, err := seal(report)
	if err != nil {
		return nil, err
	}
	return WriteAll(&snap, htmlPath, formats, opts)
}

// WriteAll renders an existing snapshot in every requested format.
func WriteAll(snap *results.Snapshot, htmlPath string, formats []string, opts Options) ([]string, error) {
	var (
		written []string
		errs    []error
		seen    = make(map[schemas.ReportFormat]bool)
	)
	for _, f := range formats {
		format := schemas.ReportFormat(strings.ToLower(f))
		if seen[format] {
			continue
		}
		seen[format] = true

		path := PathFor(htmlPath, format)
		if err := write(format, snap, path, opts); err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}

// PathFor derives the output path of format from the HTML report path.
func PathFor(htmlPath string, format schemas.ReportFormat) string {
	if format == schemas.FormatHTML {
		return htmlPath
	}
	return strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + format.Extension()
}

func seal(report *results.RunReport) (results.Snapshot, error) {
	if report == nil {
		return results.Snapshot{}, fmt.Errorf("cannot generate report: %w", results.ErrNotStarted)
	}
	if _, err := report.Finalize(); err != nil {
		return results.Snapshot{}, fmt.Errorf("cannot generate report: %w", err)
	}
	return report.Snapshot(), nil
}

func write(format schemas.ReportFormat, snap *results.Snapshot, path string, opts Options) error {
	opts = opts.withDefaults()
	if opts.LinkBase == "" {
		opts.LinkBase = filepath.Dir(path)
	}

	r, err := New(string(format), path, opts)
	if err != nil {
		return err
	}
	if err := r.Write(snap); err != nil {
		r.Close()
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}

	opts.Logger.Info("Report generated.",
		zap.String("format", string(format)),
		zap.String("path", path),
		zap.Int("steps", snap.Summary.Total),
		zap.Int("failed", snap.Summary.Fail),
	)
	return nil
}
