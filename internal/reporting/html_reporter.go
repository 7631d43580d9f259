// File: internal/reporting/html_reporter.go
package reporting

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/internal/results"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

const (
	generatedLayout = "2006-01-02 15:04:05"
	stepLayout      = "2006-01-02 15:04:05.000"
)

// htmlData is the view model handed to the template. Everything is computed
// up front so the template stays free of logic.
type htmlData struct {
	Title       string
	Subtitle    string
	RunID       string
	Summary     results.Summary
	Duration    string
	Results     []htmlResult
	LogExcerpt  string
	GeneratedAt string
}

type htmlResult struct {
	Name        string
	Status      string
	StatusClass string
	Message     string
	Timestamp   string
	Href        string
	ImageData   template.URL
	FileName    string
	Missing     bool
}

// RenderHTML renders snap as a self-contained HTML document. The output is a
// pure function of snap and opts; the generation time shown is the run's end
// time, or the last step time for a run that was never finalized.
func RenderHTML(w io.Writer, snap *results.Snapshot, opts Options) error {
	opts = opts.withDefaults()
	if err := reportTemplate.Execute(w, buildHTMLData(snap, opts)); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}

func buildHTMLData(snap *results.Snapshot, opts Options) htmlData {
	data := htmlData{
		Title:       opts.Title,
		Subtitle:    opts.Subtitle,
		RunID:       snap.RunID,
		Summary:     snap.Summary,
		Duration:    fmt.Sprintf("%.2f", snap.DurationSeconds()),
		Results:     make([]htmlResult, 0, len(snap.Results)),
		LogExcerpt:  opts.LogExcerpt,
		GeneratedAt: renderTime(snap).In(opts.Location).Format(generatedLayout),
	}

	for _, res := range snap.Results {
		hr := htmlResult{
			Name:        res.Name(),
			Status:      res.Status().String(),
			StatusClass: res.Status().CSSClass(),
			Message:     res.Message(),
			Timestamp:   res.Timestamp().In(opts.Location).Format(stepLayout),
		}
		if res.HasArtifact() {
			resolveArtifact(&hr, res.ArtifactPath(), opts)
		}
		data.Results = append(data.Results, hr)
	}
	return data
}

// resolveArtifact decides how a step's screenshot is shown: inlined, linked,
// or marked unavailable.
func resolveArtifact(hr *htmlResult, path string, opts Options) {
	if opts.VerifyArtifacts && !opts.ArtifactExists(path) {
		opts.Logger.Warn("Screenshot referenced by step is missing.", zap.String("step", hr.Name), zap.String("path", path))
		hr.Missing = true
		return
	}

	if opts.EmbedScreenshots {
		uri, err := dataURI(path)
		if err == nil {
			hr.ImageData = uri
			hr.FileName = filepath.Base(path)
			return
		}
		opts.Logger.Warn("Could not embed screenshot; linking instead.", zap.String("path", path), zap.Error(err))
	}

	hr.Href = linkPath(opts.LinkBase, path)
}

func dataURI(path string) (template.URL, error) {
	img, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".webp":
		mime = "image/webp"
	}
	// Data URIs built from file bytes are safe to mark trusted.
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img)), nil
}

// linkPath makes path relative to base when possible and always returns a
// forward-slash URL path.
func linkPath(base, path string) string {
	if base == "" {
		return filepath.ToSlash(path)
	}
	if rel, err := filepath.Rel(base, path); err == nil {
		return filepath.ToSlash(rel)
	}
	absBase, err1 := filepath.Abs(base)
	absPath, err2 := filepath.Abs(path)
	if err1 == nil && err2 == nil {
		if rel, err := filepath.Rel(absBase, absPath); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

func renderTime(snap *results.Snapshot) time.Time {
	if snap.Sealed {
		return snap.EndTime
	}
	if n := len(snap.Results); n > 0 {
		return snap.Results[n-1].Timestamp()
	}
	return snap.StartTime
}

// HTMLReporter implements Reporter for the HTML format. It keeps the last
// snapshot written and renders it on Close.
type HTMLReporter struct {
	writer io.WriteCloser
	opts   Options
	logger *zap.Logger

	mu   sync.Mutex
	snap *results.Snapshot
}

// NewHTMLReporter creates a reporter that renders HTML into writer.
func NewHTMLReporter(writer io.WriteCloser, opts Options) *HTMLReporter {
	opts = opts.withDefaults()
	return &HTMLReporter{
		writer: writer,
		opts:   opts,
		logger: opts.Logger.Named("html_reporter"),
	}
}

// Write records the snapshot to render.
func (r *HTMLReporter) Write(snap *results.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("html reporter: nil snapshot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap
	return nil
}

// Close renders the report and closes the underlying writer.
func (r *HTMLReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snap == nil {
		r.writer.Close()
		return fmt.Errorf("html reporter: nothing was written")
	}

	var buf bytes.Buffer
	renderErr := RenderHTML(&buf, r.snap, r.opts)
	if renderErr == nil {
		_, renderErr = r.writer.Write(buf.Bytes())
	}
	closeErr := r.writer.Close()

	if renderErr != nil {
		r.logger.Error("Failed to render HTML report.", zap.Error(renderErr))
		return renderErr
	}
	if closeErr != nil {
		r.logger.Error("Failed to close report output.", zap.Error(closeErr))
		return closeErr
	}

	r.logger.Debug("Rendered HTML report.", zap.Int("steps", len(r.snap.Results)), zap.Int("bytes", buf.Len()))
	return nil
}
