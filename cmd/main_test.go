// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/xkilldash9x/ebay-flow/internal/observability"
)

// resetForTest provides the single source of truth for resetting test state.
// It returns a temporary directory that every artifact path points into.
func resetForTest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// 1. Reset package-level variables.
	cfgFile = ""
	origLaunch, origClock := launchBrowser, runClock
	t.Cleanup(func() {
		launchBrowser, runClock = origLaunch, origClock
	})

	// 2. Keep the logger quiet and let the command initialize it again.
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
	t.Setenv("EBAYFLOW_LOGGER_LEVEL", "error")

	// 3. Nothing a test writes may land in the working directory.
	t.Setenv("EBAYFLOW_ARTIFACTS_SCREENSHOTS_DIR", filepath.Join(dir, "screenshots"))
	t.Setenv("EBAYFLOW_ARTIFACTS_REPORTS_DIR", filepath.Join(dir, "reports"))
	t.Setenv("EBAYFLOW_ARTIFACTS_LOGS_DIR", filepath.Join(dir, "logs"))

	// 4. Re-initialize the root command to its pristine state. Defining the
	// flags resets envFile, so it is pointed at the temp dir afterwards.
	rootCmd = newRootCmd()
	envFile = filepath.Join(dir, ".env")
	return dir
}

// executeCommand runs the root command with args and returns everything it
// printed.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
