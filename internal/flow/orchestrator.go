// File: internal/flow/orchestrator.go
// Description: Drives the search-and-filter flow against a browser tab and
// records one outcome per step. It is injected with its collaborators so the
// whole sequence can be exercised against a mock driver.

package flow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
	"github.com/xkilldash9x/ebay-flow/internal/artifacts"
	"github.com/xkilldash9x/ebay-flow/internal/config"
	"github.com/xkilldash9x/ebay-flow/internal/pages"
	"github.com/xkilldash9x/ebay-flow/internal/results"
)

// Result is the outcome of one run. Success only reflects the must-pass
// steps: the home page loaded and search results were displayed.
type Result struct {
	Success        bool
	OriginalCount  int
	FilteredCount  int
	FilterApplied  bool
	ScreenshotPath string
}

// Dependencies are the collaborators of an Orchestrator. Console receives
// the count banners and may be nil.
type Dependencies struct {
	Driver   schemas.Driver
	Report   *results.RunReport
	Capturer *artifacts.Capturer
	Logger   *zap.Logger
	Console  io.Writer
}

// Orchestrator runs the flow once.
type Orchestrator struct {
	cfg      config.FlowConfig
	driver   schemas.Driver
	report   *results.RunReport
	capturer *artifacts.Capturer
	logger   *zap.Logger
	console  io.Writer

	home    *pages.HomePage
	results *pages.SearchResultsPage
}

// New validates deps and builds the page objects for cfg.
func New(cfg config.FlowConfig, deps Dependencies) (*Orchestrator, error) {
	if deps.Driver == nil || deps.Report == nil || deps.Capturer == nil || deps.Logger == nil {
		return nil, fmt.Errorf("cannot initialize flow with nil dependencies")
	}

	logger := deps.Logger.Named("flow")
	pageLogger := deps.Logger.Named("pages")
	return &Orchestrator{
		cfg:      cfg,
		driver:   deps.Driver,
		report:   deps.Report,
		capturer: deps.Capturer,
		logger:   logger,
		console:  deps.Console,
		home:     pages.NewHomePage(deps.Driver, pageLogger, cfg.HomeURL, cfg.Timeouts),
		results:  pages.NewSearchResultsPage(deps.Driver, pageLogger, cfg.Timeouts),
	}, nil
}

// Run executes every step in order. Failures are recorded in the report and
// never returned; the final screenshot is always attempted. A panic inside a
// step is recovered and recorded as a failed automation step.
func (o *Orchestrator) Run(ctx context.Context) (res Result) {
	o.logger.Info("Starting search and filter flow.",
		zap.String("run_id", o.report.ID()),
		zap.String("home_url", o.home.HomeURL()),
		zap.String("search_term", o.cfg.SearchTerm),
		zap.String("transmission", o.cfg.Filters.Transmission))

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Unexpected error during automation.", zap.Any("panic", r), zap.Stack("stack"))
			o.record(StepAutomation, results.StatusFail, fmt.Sprintf("Unexpected error: %v", r), "")
			res.Success = false
		}
		o.finish(ctx, &res)
	}()

	res.Success = o.runSteps(ctx, &res)
	return res
}

// runSteps performs everything up to the final screenshot and reports
// whether both must-pass steps passed.
func (o *Orchestrator) runSteps(ctx context.Context, res *Result) bool {
	term := o.cfg.SearchTerm

	// Steps 1 and 2: home page.
	if err := o.home.NavigateToHome(ctx); err != nil {
		o.recordDriverError(StepNavigateHome, err)
		o.recordMustPassFailure(ctx, StepHomeLoaded, "Home page could not be opened")
		return false
	}
	homeLoaded := o.home.IsHomePageLoaded(ctx)
	if homeLoaded {
		o.record(StepHomeLoaded, results.StatusPass, "eBay home page validated successfully", "")
	} else {
		o.recordMustPassFailure(ctx, StepHomeLoaded, "Failed to validate eBay home page")
	}
	if o.interrupted(ctx) {
		return false
	}

	// Steps 3 and 4: search.
	if err := o.home.SearchForItem(ctx, term); err != nil {
		o.recordDriverError(SearchStep(term), err)
		o.recordMustPassFailure(ctx, StepResultsDisplayed, "Search did not complete")
		return false
	}
	resultsShown := o.results.AreSearchResultsDisplayed(ctx)
	if resultsShown {
		o.record(StepResultsDisplayed, results.StatusPass, "Search results are displayed on the page", "")
	} else {
		o.recordMustPassFailure(ctx, StepResultsDisplayed, "No search results were displayed")
	}
	if o.interrupted(ctx) {
		return false
	}

	// Step 5: result count.
	res.OriginalCount = o.results.SearchResultCount(ctx)
	if res.OriginalCount > 0 {
		formatted := FormatCount(res.OriginalCount)
		o.record(StepResultCount, results.StatusPass, "Total search results: "+formatted, "")
		banner(o.console, "SEARCH RESULTS COUNT: "+formatted)
	} else {
		o.record(StepResultCount, results.StatusWarning, "Could not retrieve accurate result count", "")
	}

	// Step 6: keyword check. Informational, does not affect success.
	if o.results.ResultsContainKeyword(ctx, term) {
		o.record(KeywordStep(term), results.StatusPass, fmt.Sprintf("Results contain the search keyword '%s'", term), "")
	} else {
		o.record(KeywordStep(term), results.StatusFail, fmt.Sprintf("Results do not contain keyword '%s'", term), "")
	}
	if o.interrupted(ctx) {
		return false
	}

	// Step 7: transmission filter.
	if value := o.cfg.Filters.Transmission; value != "" {
		o.applyFilter(ctx, value, res)
	}

	return homeLoaded && resultsShown
}

func (o *Orchestrator) applyFilter(ctx context.Context, value string, res *Result) {
	count, applied := o.results.ApplyTransmissionAndGetCount(ctx, value)
	res.FilterApplied = applied
	if !applied {
		o.record(FilterStep(value), results.StatusWarning, fmt.Sprintf("Could not apply %s transmission filter", value), "")
		return
	}

	o.record(FilterStep(value), results.StatusPass, fmt.Sprintf("Successfully applied %s transmission filter", value), "")
	res.FilteredCount = count
	if count > 0 {
		o.logger.Info("Filtered results count.", zap.Int("count", count), zap.String("transmission", value))
		banner(o.console, fmt.Sprintf("FILTERED RESULTS COUNT (%s): %s", value, FormatCount(count)))
	}
	if res.OriginalCount > 0 && count > res.OriginalCount {
		o.record(StepFilteredCount, results.StatusWarning,
			fmt.Sprintf("Filtered count %s exceeds original count %s", FormatCount(count), FormatCount(res.OriginalCount)), "")
	}
}

// captureTimeout bounds a screenshot when no default timeout is configured.
const captureTimeout = 30 * time.Second

// captureContext detaches screenshots from ctx. The tab outlives an
// interrupted run, so the evidence is still taken.
func (o *Orchestrator) captureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := o.cfg.Timeouts.Default
	if timeout <= 0 {
		timeout = captureTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// finish takes the final screenshot. A capture failure is recorded as a
// warning with no artifact and never changes the verdict.
func (o *Orchestrator) finish(ctx context.Context, res *Result) {
	captureCtx, cancel := o.captureContext(ctx)
	defer cancel()

	path, err := o.capturer.CaptureStep(captureCtx, o.driver, "final_results", schemas.OutcomeFor(res.Success))
	if err != nil {
		o.record(StepFinalScreenshot, results.StatusWarning, fmt.Sprintf("Final screenshot could not be captured: %v", err), "")
	} else {
		res.ScreenshotPath = path
		o.record(StepFinalScreenshot, results.StatusPass, "Final screenshot captured", path)
	}

	if res.Success {
		o.logger.Info("Automation completed successfully.", zap.String("run_id", o.report.ID()))
	} else {
		o.logger.Warn("Automation completed with issues.", zap.String("run_id", o.report.ID()))
	}
}

// interrupted records a failed automation step when ctx has ended.
func (o *Orchestrator) interrupted(ctx context.Context) bool {
	err := ctx.Err()
	if err == nil {
		return false
	}
	msg := "Run interrupted"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "Run deadline exceeded"
	}
	o.record(StepAutomation, results.StatusFail, fmt.Sprintf("%s: %v", msg, err), "")
	return true
}

func (o *Orchestrator) recordDriverError(step string, err error) {
	o.record(step, results.StatusFail, fmt.Sprintf("Unexpected error: %v", err), "")
}

// recordMustPassFailure records a failed must-pass step with a screenshot of
// whatever the tab is showing, when one can be taken.
func (o *Orchestrator) recordMustPassFailure(ctx context.Context, step, message string) {
	captureCtx, cancel := o.captureContext(ctx)
	defer cancel()

	path, _ := o.capturer.CaptureStep(captureCtx, o.driver, step, schemas.OutcomeFailed)
	o.record(step, results.StatusFail, message, path)
}

func (o *Orchestrator) record(step string, status results.Status, message, artifact string) {
	fields := []zap.Field{zap.String("step", step), zap.Stringer("status", status), zap.String("message", message)}
	if artifact != "" {
		fields = append(fields, zap.String("artifact", artifact))
	}

	switch status {
	case results.StatusFail:
		o.logger.Error("Step failed.", fields...)
	case results.StatusWarning:
		o.logger.Warn("Step finished with warning.", fields...)
	default:
		o.logger.Info("Step passed.", fields...)
	}

	if _, err := o.report.AddResult(step, status, message, artifact); err != nil {
		o.logger.Error("Failed to record step result.", zap.String("step", step), zap.Error(err))
	}
}
