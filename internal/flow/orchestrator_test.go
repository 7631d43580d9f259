// File: internal/flow/orchestrator_test.go
package flow_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/xkilldash9x/ebay-flow/internal/artifacts"
	"github.com/xkilldash9x/ebay-flow/internal/browser"
	"github.com/xkilldash9x/ebay-flow/internal/config"
	"github.com/xkilldash9x/ebay-flow/internal/flow"
	"github.com/xkilldash9x/ebay-flow/internal/mocks"
	"github.com/xkilldash9x/ebay-flow/internal/pages"
	"github.com/xkilldash9x/ebay-flow/internal/results"
)

const homeURL = "https://www.ebay.com/"

var (
	baseTime  = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	pngHeader = []byte("\x89PNG\r\n\x1a\n")
)

const resultsMarkup = `<ul class="srp-results">
  <li><div class="su-card-container"><div class="su-card-container__header">
    <span class="su-styled-text primary">2019 Mazda MX-5 Miata Club</span></div></div></li>
  <li><div class="su-card-container"><div class="su-card-container__header">
    <span class="su-styled-text primary">Mazda MX-5 soft top</span></div></div></li>
</ul>`

func flowConfig() config.FlowConfig {
	return config.FlowConfig{
		HomeURL:    homeURL,
		SearchTerm: "mazda mx-5",
		Filters:    config.FiltersConfig{Transmission: "Manual"},
		Timeouts: config.TimeoutsConfig{
			Default: 30 * time.Second,
			Home:    15 * time.Second,
			Results: 20 * time.Second,
			Filter:  15 * time.Second,
		},
	}
}

// expectHappyPath registers a driver that satisfies every step. Tests that
// need different behaviour register their expectations first; testify uses
// the first matching expectation.
func expectHappyPath(d *mocks.MockDriver) {
	anyCtx := mock.Anything
	d.On("Navigate", anyCtx, homeURL).Return(nil).Maybe()
	d.On("WaitForVisible", anyCtx, pages.SearchInputSelector, 15*time.Second).Return(true).Maybe()
	d.On("Fill", anyCtx, pages.SearchInputSelector, "mazda mx-5").Return(nil).Maybe()
	d.On("Click", anyCtx, pages.SearchButtonSelector).Return(nil).Maybe()
	d.On("WaitForLoad", anyCtx).Return(nil).Maybe()
	d.On("WaitForVisible", anyCtx, pages.ResultItemsSelector, 20*time.Second).Return(true).Maybe()
	d.On("LocatorCount", anyCtx, pages.ResultItemsSelector).Return(60, nil).Maybe()
	d.On("TextContent", anyCtx, pages.ResultCountSelector).Return("1,234 results for mazda mx-5", nil).Once()
	d.On("TextContent", anyCtx, pages.ResultCountSelector).Return("412 results for mazda mx-5", nil).Maybe()
	d.On("OuterHTML", anyCtx, pages.ResultsListSelector).Return(resultsMarkup, nil).Maybe()
	d.On("WaitForVisible", anyCtx, pages.FilterPanelSelector, 15*time.Second).Return(true).Maybe()
	d.On("ScrollToBottom", anyCtx).Return(nil).Maybe()
	d.On("ClickText", anyCtx, pages.TransmissionSection).Return(true, nil).Maybe()
	d.On("ClickText", anyCtx, "Manual").Return(true, nil).Maybe()
	d.On("Screenshot", anyCtx).Return(pngHeader, nil).Maybe()
}

type harness struct {
	driver   *mocks.MockDriver
	report   *results.RunReport
	console  *bytes.Buffer
	shotsDir string
	flow     *flow.Orchestrator
}

func newHarness(t *testing.T, cfg config.FlowConfig, setup func(d *mocks.MockDriver)) *harness {
	t.Helper()
	clk := testingclock.NewFakeClock(baseTime)
	logger := zaptest.NewLogger(t)

	h := &harness{
		driver:   mocks.NewMockDriver(),
		report:   results.NewRunReport(clk),
		console:  &bytes.Buffer{},
		shotsDir: filepath.Join(t.TempDir(), "screenshots"),
	}
	if setup != nil {
		setup(h.driver)
	}
	expectHappyPath(h.driver)

	o, err := flow.New(cfg, flow.Dependencies{
		Driver:   h.driver,
		Report:   h.report,
		Capturer: artifacts.NewCapturer(h.shotsDir, clk, logger),
		Logger:   logger,
		Console:  h.console,
	})
	require.NoError(t, err)
	h.flow = o
	return h
}

type step struct {
	name   string
	status results.Status
}

func steps(r *results.RunReport) []step {
	var out []step
	for _, res := range r.Results() {
		out = append(out, step{res.Name(), res.Status()})
	}
	return out
}

func TestNew_NilDependencies(t *testing.T) {
	_, err := flow.New(flowConfig(), flow.Dependencies{})
	assert.Error(t, err)
}

func TestRun_HappyPath(t *testing.T) {
	h := newHarness(t, flowConfig(), nil)

	res := h.flow.Run(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, 1234, res.OriginalCount)
	assert.Equal(t, 412, res.FilteredCount)
	assert.True(t, res.FilterApplied)
	assert.Equal(t, filepath.Join(h.shotsDir, "final_results_passed_20250314_093000.png"), res.ScreenshotPath)
	assert.FileExists(t, res.ScreenshotPath)

	assert.Equal(t, []step{
		{flow.StepHomeLoaded, results.StatusPass},
		{flow.StepResultsDisplayed, results.StatusPass},
		{flow.StepResultCount, results.StatusPass},
		{"Validate results contain 'mazda mx-5'", results.StatusPass},
		{"Filter by Transmission -> Manual", results.StatusPass},
		{flow.StepFinalScreenshot, results.StatusPass},
	}, steps(h.report))

	rs := h.report.Results()
	assert.Equal(t, "Total search results: 1,234", rs[2].Message())
	assert.Equal(t, res.ScreenshotPath, rs[5].ArtifactPath())
	assert.Equal(t, results.Summary{Total: 6, Pass: 6}, h.report.Summary())

	assert.Contains(t, h.console.String(), "SEARCH RESULTS COUNT: 1,234")
	assert.Contains(t, h.console.String(), "FILTERED RESULTS COUNT (Manual): 412")
	assert.False(t, h.report.Sealed(), "the caller finalizes the report when rendering")
}

func TestRun_HomePageNotLoaded(t *testing.T) {
	h := newHarness(t, flowConfig(), func(d *mocks.MockDriver) {
		d.On("WaitForVisible", mock.Anything, pages.SearchInputSelector, 15*time.Second).Return(false)
	})

	res := h.flow.Run(context.Background())

	assert.False(t, res.Success)
	rs := h.report.Results()
	require.NotEmpty(t, rs)
	assert.Equal(t, flow.StepHomeLoaded, rs[0].Name())
	assert.Equal(t, results.StatusFail, rs[0].Status())
	assert.NotEmpty(t, rs[0].ArtifactPath(), "must-pass failures carry a screenshot")
	assert.FileExists(t, rs[0].ArtifactPath())

	// The search re-navigates and the rest of the flow still runs.
	h.driver.AssertNumberOfCalls(t, "Navigate", 2)
	assert.Equal(t, flow.StepFinalScreenshot, rs[len(rs)-1].Name())
	assert.Equal(t, filepath.Join(h.shotsDir, "final_results_failed_20250314_093000.png"), res.ScreenshotPath)
}

func TestRun_NavigationError(t *testing.T) {
	cause := &browser.DriverError{Op: "navigate", Err: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	h := newHarness(t, flowConfig(), func(d *mocks.MockDriver) {
		d.On("Navigate", mock.Anything, homeURL).Return(cause)
	})

	res := h.flow.Run(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, []step{
		{flow.StepNavigateHome, results.StatusFail},
		{flow.StepHomeLoaded, results.StatusFail},
		{flow.StepFinalScreenshot, results.StatusPass},
	}, steps(h.report))
	assert.Contains(t, h.report.Results()[0].Message(), "ERR_NAME_NOT_RESOLVED")
	h.driver.AssertNotCalled(t, "Fill", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_SearchError(t *testing.T) {
	cause := &browser.DriverError{Op: "fill", Selector: pages.SearchInputSelector, Err: context.DeadlineExceeded}
	h := newHarness(t, flowConfig(), func(d *mocks.MockDriver) {
		d.On("Fill", mock.Anything, pages.SearchInputSelector, "mazda mx-5").Return(cause)
	})

	res := h.flow.Run(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, []step{
		{flow.StepHomeLoaded, results.StatusPass},
		{"Search for 'mazda mx-5'", results.StatusFail},
		{flow.StepResultsDisplayed, results.StatusFail},
		{flow.StepFinalScreenshot, results.StatusPass},
	}, steps(h.report))
}

func TestRun_NoResults(t *testing.T) {
	h := newHarness(t, flowConfig(), func(d *mocks.MockDriver) {
		d.On("WaitForVisible", mock.Anything, pages.ResultItemsSelector, 20*time.Second).Return(false)
		d.On("TextContent", mock.Anything, pages.ResultCountSelector).Return("0 results found", nil)
		d.On("OuterHTML", mock.Anything, pages.ResultsListSelector).Return("", errors.New("no node"))
		d.On("WaitForVisible", mock.Anything, pages.FilterPanelSelector, 15*time.Second).Return(false)
	})

	res := h.flow.Run(context.Background())

	assert.False(t, res.Success)
	assert.Zero(t, res.OriginalCount)
	assert.False(t, res.FilterApplied)
	assert.Equal(t, []step{
		{flow.StepHomeLoaded, results.StatusPass},
		{flow.StepResultsDisplayed, results.StatusFail},
		{flow.StepResultCount, results.StatusWarning},
		{"Validate results contain 'mazda mx-5'", results.StatusFail},
		{"Filter by Transmission -> Manual", results.StatusWarning},
		{flow.StepFinalScreenshot, results.StatusPass},
	}, steps(h.report))
	assert.NotContains(t, h.console.String(), "SEARCH RESULTS COUNT")
}

func TestRun_KeywordAndFilterDoNotAffectSuccess(t *testing.T) {
	h := newHarness(t, flowConfig(), func(d *mocks.MockDriver) {
		d.On("OuterHTML", mock.Anything, pages.ResultsListSelector).Return(`<ul class="srp-results"></ul>`, nil)
		d.On("ClickText", mock.Anything, "Manual").Return(false, nil)
	})

	res := h.flow.Run(context.Background())

	assert.True(t, res.Success)
	assert.False(t, res.FilterApplied)
	assert.Equal(t, results.Summary{Total: 6, Pass: 4, Fail: 1, Warning: 1}, h.report.Summary())
}

func TestRun_FilteredCountExceedsOriginal(t *testing.T) {
	h := newHarness(t, flowConfig(), func(d *mocks.MockDriver) {
		d.On("TextContent", mock.Anything, pages.ResultCountSelector).Return("100 results", nil).Once()
		d.On("TextContent", mock.Anything, pages.ResultCountSelector).Return("2,500 results", nil).Once()
	})

	res := h.flow.Run(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, 2500, res.FilteredCount)
	rs := h.report.Results()
	require.Len(t, rs, 7)
	assert.Equal(t, flow.StepFilteredCount, rs[5].Name())
	assert.Equal(t, results.StatusWarning, rs[5].Status())
	assert.Equal(t, "Filtered count 2,500 exceeds original count 100", rs[5].Message())
}

func TestRun_NoTransmissionConfigured(t *testing.T) {
	cfg := flowConfig()
	cfg.Filters.Transmission = ""
	h := newHarness(t, cfg, nil)

	res := h.flow.Run(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, 5, h.report.Len())
	h.driver.AssertNotCalled(t, "ClickText", mock.Anything, mock.Anything)
}

func TestRun_CaptureFailureIsWarning(t *testing.T) {
	h := newHarness(t, flowConfig(), func(d *mocks.MockDriver) {
		d.On("Screenshot", mock.Anything).Return(nil, errors.New("target closed"))
	})

	res := h.flow.Run(context.Background())

	assert.True(t, res.Success, "a capture failure never changes the verdict")
	assert.Empty(t, res.ScreenshotPath)

	rs := h.report.Results()
	last := rs[len(rs)-1]
	assert.Equal(t, flow.StepFinalScreenshot, last.Name())
	assert.Equal(t, results.StatusWarning, last.Status())
	assert.Empty(t, last.ArtifactPath())
	assert.Contains(t, last.Message(), "target closed")

	_, err := os.Stat(h.shotsDir)
	assert.True(t, os.IsNotExist(err), "no screenshot directory is created when nothing is written")
}

func TestRun_PanicIsRecorded(t *testing.T) {
	h := newHarness(t, flowConfig(), func(d *mocks.MockDriver) {
		d.On("Navigate", mock.Anything, homeURL).Return(nil).Run(func(mock.Arguments) {
			panic("driver exploded")
		})
	})

	var res flow.Result
	require.NotPanics(t, func() { res = h.flow.Run(context.Background()) })

	assert.False(t, res.Success)
	assert.Equal(t, []step{
		{flow.StepAutomation, results.StatusFail},
		{flow.StepFinalScreenshot, results.StatusPass},
	}, steps(h.report))
	assert.Equal(t, "Unexpected error: driver exploded", h.report.Results()[0].Message())
}

func TestRun_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness(t, flowConfig(), func(d *mocks.MockDriver) {
		d.On("Navigate", mock.Anything, homeURL).Return(nil).Run(func(mock.Arguments) { cancel() })
		d.On("WaitForVisible", mock.Anything, pages.SearchInputSelector, 15*time.Second).Return(false)
	})

	res := h.flow.Run(ctx)

	assert.False(t, res.Success)
	assert.Equal(t, []step{
		{flow.StepHomeLoaded, results.StatusFail},
		{flow.StepAutomation, results.StatusFail},
		{flow.StepFinalScreenshot, results.StatusPass},
	}, steps(h.report))
	rs := h.report.Results()
	assert.Contains(t, rs[1].Message(), "Run interrupted")

	// The tab is still open, so both screenshots are taken after the cancel.
	require.NotEmpty(t, rs[0].ArtifactPath())
	assert.FileExists(t, rs[0].ArtifactPath())
	require.NotEmpty(t, rs[2].ArtifactPath())
	assert.FileExists(t, rs[2].ArtifactPath())
	assert.Equal(t, rs[2].ArtifactPath(), res.ScreenshotPath)
	h.driver.AssertNumberOfCalls(t, "Screenshot", 2)
	h.driver.AssertNotCalled(t, "Fill", mock.Anything, mock.Anything, mock.Anything)
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", flow.FormatCount(0))
	assert.Equal(t, "999", flow.FormatCount(999))
	assert.Equal(t, "1,234", flow.FormatCount(1234))
	assert.Equal(t, "12,345,678", flow.FormatCount(12345678))
}
