// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
	"github.com/xkilldash9x/ebay-flow/internal/artifacts"
	"github.com/xkilldash9x/ebay-flow/internal/browser"
	"github.com/xkilldash9x/ebay-flow/internal/config"
	"github.com/xkilldash9x/ebay-flow/internal/flow"
	"github.com/xkilldash9x/ebay-flow/internal/observability"
	"github.com/xkilldash9x/ebay-flow/internal/reporting"
	"github.com/xkilldash9x/ebay-flow/internal/results"
)

// ErrRunFailed is returned by the run command when a must-pass step failed.
// The report has already been written when it is returned.
var ErrRunFailed = errors.New("flow run failed")

// Function variables for dependency injection in tests.
var (
	launchBrowser = func(ctx context.Context, logger *zap.Logger, cfg config.Interface) (schemas.BrowserManager, error) {
		m, err := browser.NewManager(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	runClock clock.PassiveClock = clock.RealClock{}
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the search and filter flow once and writes a report",
		Long: `Opens the eBay home page in Chromium, searches for the configured term, checks the
results, applies the transmission filter, and records one outcome per step. A report
and a session log are written for every run that got a browser. The command exits
non-zero when the home page or the search results could not be validated.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{sessionLogAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}

			if err := applyRunFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return runFlow(ctx, cmd.OutOrStdout(), observability.GetLogger(), cfg)
		},
	}

	runCmd.Flags().String("search-term", "", "Term typed into the search box. (Overrides config/env)")
	runCmd.Flags().String("transmission", "", "Transmission filter value; empty skips the filter. (Overrides config/env)")
	runCmd.Flags().Bool("headless", true, "Run Chromium without a window. (Overrides config/env)")
	runCmd.Flags().Duration("slow-mo", 0, "Minimum delay between browser actions. (Overrides config/env)")
	runCmd.Flags().StringP("report", "o", "", "HTML report path, relative paths land in artifacts.reports_dir. (Overrides config/env)")
	runCmd.Flags().StringSliceP("format", "f", nil, "Report formats to write: html, json, junit. (Overrides config/env)")

	return runCmd
}

// applyRunFlags copies every flag the user actually set onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg config.Interface) error {
	flags := cmd.Flags()

	if flags.Changed("search-term") {
		v, err := flags.GetString("search-term")
		if err != nil {
			return err
		}
		cfg.SetSearchTerm(v)
	}
	if flags.Changed("transmission") {
		v, err := flags.GetString("transmission")
		if err != nil {
			return err
		}
		cfg.SetTransmission(v)
	}
	if flags.Changed("headless") {
		v, err := flags.GetBool("headless")
		if err != nil {
			return err
		}
		cfg.SetBrowserHeadless(v)
	}
	if flags.Changed("slow-mo") {
		v, err := flags.GetDuration("slow-mo")
		if err != nil {
			return err
		}
		cfg.SetBrowserSlowMo(v)
	}
	if flags.Changed("report") {
		v, err := flags.GetString("report")
		if err != nil {
			return err
		}
		cfg.SetReportFile(v)
	}
	if flags.Changed("format") {
		v, err := flags.GetStringSlice("format")
		if err != nil {
			return err
		}
		cfg.SetReportFormats(v)
	}
	return nil
}

// runFlow contains the core, testable logic of the run command. A browser
// that cannot be started aborts the run before anything is recorded. From
// then on every outcome ends up in the report and only the verdict decides
// the returned error.
func runFlow(ctx context.Context, out io.Writer, logger *zap.Logger, cfg config.Interface) error {
	flowCfg := cfg.Flow()
	logger.Info("Starting run.",
		zap.String("search_term", flowCfg.SearchTerm),
		zap.String("transmission", flowCfg.Filters.Transmission),
		zap.Bool("headless", cfg.Browser().Headless),
		zap.String("log_file", cfg.Logger().LogFile),
	)

	mgr, err := launchBrowser(ctx, logger, cfg)
	if err != nil {
		logger.Error("Browser could not be started; no report will be written.", zap.Error(err))
		return fmt.Errorf("failed to start browser: %w", err)
	}

	page, err := mgr.NewPage(ctx)
	if err != nil {
		shutdownBrowser(ctx, logger, mgr, nil, flowCfg.Timeouts.Shutdown)
		return fmt.Errorf("failed to open browser tab: %w", err)
	}

	report := results.NewRunReport(runClock)
	orch, err := flow.New(flowCfg, flow.Dependencies{
		Driver:   page,
		Report:   report,
		Capturer: artifacts.NewCapturer(cfg.Artifacts().ScreenshotsDir, runClock, logger),
		Logger:   logger,
		Console:  out,
	})
	if err != nil {
		shutdownBrowser(ctx, logger, mgr, page, flowCfg.Timeouts.Shutdown)
		return fmt.Errorf("failed to initialize flow: %w", err)
	}

	res := orch.Run(ctx)
	shutdownBrowser(ctx, logger, mgr, page, flowCfg.Timeouts.Shutdown)

	summary := report.Summary()
	logger.Info("Run finished.",
		zap.String("run_id", report.ID()),
		zap.Bool("success", res.Success),
		zap.Int("original_count", res.OriginalCount),
		zap.Int("filtered_count", res.FilteredCount),
		zap.Int("passed", summary.Pass),
		zap.Int("failed", summary.Fail),
		zap.Int("warnings", summary.Warning),
	)

	htmlPath := reportPath(cfg)
	written := writeRunReports(report, htmlPath, cfg, logger)
	if len(written) > 0 {
		fmt.Fprintf(out, "Check '%s' for detailed test report\n", written[0])
	}
	if logFile := cfg.Logger().LogFile; logFile != "" {
		fmt.Fprintf(out, "Session log: %s\n", logFile)
	}

	if !res.Success {
		return fmt.Errorf("%w: %d of %d steps failed", ErrRunFailed, summary.Fail, summary.Total)
	}
	return nil
}

// shutdownBrowser closes page, when there is one, and the browser. It runs on
// a context detached from ctx so an interrupted run still cleans up.
func shutdownBrowser(ctx context.Context, logger *zap.Logger, mgr schemas.BrowserManager, page schemas.Driver, timeout time.Duration) {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if page != nil {
		if err := page.Close(shutdownCtx); err != nil {
			logger.Warn("Error while closing browser tab.", zap.Error(err))
		}
	}
	if err := mgr.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Error during browser manager shutdown.", zap.Error(err))
	}
}

// writeRunReports seals report and writes every configured format. Failures
// are logged; they never change the verdict of the run.
func writeRunReports(report *results.RunReport, htmlPath string, cfg config.Interface, logger *zap.Logger) []string {
	// Flush so the excerpt includes everything logged so far.
	observability.Sync()

	var excerpt string
	if logFile := cfg.Logger().LogFile; logFile != "" {
		tail, err := observability.TailFile(logFile, cfg.Report().LogExcerptBytes)
		if err != nil {
			logger.Warn("Session log could not be read for the report.", zap.String("path", logFile), zap.Error(err))
		}
		excerpt = tail
	}

	opts, err := reportOptions(cfg, logger, excerpt)
	if err != nil {
		logger.Error("Failed to prepare report options.", zap.Error(err))
		return nil
	}

	written, err := reporting.GenerateAll(report, htmlPath, cfg.Report().Formats, opts)
	if err != nil {
		logger.Error("Failed to write report.", zap.String("path", htmlPath), zap.Error(err))
	}
	return written
}

func reportOptions(cfg config.Interface, logger *zap.Logger, excerpt string) (reporting.Options, error) {
	rc := cfg.Report()
	loc, err := rc.Location()
	if err != nil {
		return reporting.Options{}, err
	}
	return reporting.Options{
		Title:            rc.Title,
		Subtitle:         rc.Subtitle,
		EmbedScreenshots: rc.EmbedScreenshots,
		VerifyArtifacts:  rc.VerifyArtifacts,
		LogExcerpt:       excerpt,
		Location:         loc,
		Logger:           logger,
	}, nil
}

// reportPath resolves report.file. A bare file name is placed in
// artifacts.reports_dir; anything with a directory is used as given.
func reportPath(cfg config.Interface) string {
	file := cfg.Report().File
	if filepath.IsAbs(file) || filepath.Dir(file) != "." {
		return file
	}
	return filepath.Join(cfg.Artifacts().ReportsDir, file)
}
