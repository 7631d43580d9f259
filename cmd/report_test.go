package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/xkilldash9x/ebay-flow/internal/reporting"
	"github.com/xkilldash9x/ebay-flow/internal/results"
)

// writeSavedRun records a short run and saves it in JSON form under dir.
func writeSavedRun(t *testing.T, dir string) string {
	t.Helper()
	clk := testingclock.NewFakeClock(runStart)
	report := results.NewRunReport(clk)

	add := func(name string, status results.Status, msg string) {
		clk.Step(time.Second)
		_, err := report.AddResult(name, status, msg, "")
		require.NoError(t, err)
	}
	add("Validate eBay home page loaded", results.StatusPass, "eBay home page validated successfully")
	add("Get search result count", results.StatusWarning, "Could not retrieve accurate result count")
	add("Validate results contain 'mazda'", results.StatusFail, "Results do not contain keyword <mazda> & co")

	htmlPath := filepath.Join(dir, "saved", "run.html")
	written, err := reporting.GenerateAll(report, htmlPath, []string{"json"}, reporting.Options{})
	require.NoError(t, err)
	require.Len(t, written, 1)
	return written[0]
}

func TestReportCommand_Rerender(t *testing.T) {
	dir := resetForTest(t)
	input := writeSavedRun(t, dir)
	output := filepath.Join(dir, "rerendered", "report.html")

	out, err := executeCommand(t, "report", "--input", input, "--output", output, "--format", "html,junit")

	require.NoError(t, err)
	assert.Contains(t, out, "Report written to "+output)
	assert.FileExists(t, filepath.Join(dir, "rerendered", "report.xml"))

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)

	assert.Equal(t, "eBay Automation Test Report", strings.TrimSpace(doc.Find("title").Text()))
	body := doc.Text()
	assert.Contains(t, body, "Validate eBay home page loaded")
	assert.Contains(t, body, "Results do not contain keyword <mazda> & co")
}

func TestReportCommand_InvalidInput(t *testing.T) {
	t.Run("MissingFlag", func(t *testing.T) {
		resetForTest(t)
		_, err := executeCommand(t, "report")
		assert.ErrorContains(t, err, `required flag(s) "input" not set`)
	})

	t.Run("MissingFile", func(t *testing.T) {
		dir := resetForTest(t)
		_, err := executeCommand(t, "report", "--input", filepath.Join(dir, "nope.json"), "--output", filepath.Join(dir, "r.html"))
		assert.ErrorContains(t, err, "failed to open run report")
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		dir := resetForTest(t)
		input := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(input, []byte(`{
  "run_id": "r1",
  "start_time": "2025-03-14T09:30:00Z",
  "end_time": "2025-03-14T09:31:00Z",
  "sealed": true,
  "results": [{"name": "x", "status": "MAYBE", "message": "", "artifact_path": "", "timestamp": "2025-03-14T09:30:10Z"}]
}`), 0o644))

		_, err := executeCommand(t, "report", "--input", input, "--output", filepath.Join(dir, "r.html"))
		assert.ErrorIs(t, err, results.ErrInvalidStatus)
		assert.NoFileExists(t, filepath.Join(dir, "r.html"))
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		dir := resetForTest(t)
		input := filepath.Join(dir, "reversed.json")
		require.NoError(t, os.WriteFile(input, []byte(`{
  "run_id": "r2",
  "start_time": "2025-03-14T09:31:00Z",
  "end_time": "2025-03-14T09:30:00Z",
  "sealed": true,
  "results": []
}`), 0o644))

		_, err := executeCommand(t, "report", "--input", input, "--output", filepath.Join(dir, "r.html"))
		assert.ErrorContains(t, err, "invalid run report")
	})
}

func TestLoadSnapshot_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := writeSavedRun(t, dir)

	snap, err := loadSnapshot(input)
	require.NoError(t, err)

	assert.True(t, snap.Sealed)
	assert.Equal(t, results.Summary{Total: 3, Pass: 1, Fail: 1, Warning: 1}, snap.Summary)
	assert.Equal(t, runStart.Add(3*time.Second), snap.EndTime.UTC())
}
