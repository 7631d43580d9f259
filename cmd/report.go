// File: cmd/report.go
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/internal/config"
	"github.com/xkilldash9x/ebay-flow/internal/observability"
	"github.com/xkilldash9x/ebay-flow/internal/reporting"
	"github.com/xkilldash9x/ebay-flow/internal/results"
)

// newReportCmd creates and configures the `report` command.
func newReportCmd() *cobra.Command {
	var (
		input   string
		output  string
		logFile string
		formats []string
	)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Re-renders a report from the JSON file of a previous run",
		Long: `Reads a JSON report written by 'run --format json' and renders it again, for example
as HTML in another time zone or as JUnit XML for a CI system. Title, subtitle and time
zone come from the current configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			return runReport(cmd.OutOrStdout(), observability.GetLogger(), cfg, input, output, logFile, formats)
		},
	}

	reportCmd.Flags().StringVarP(&input, "input", "i", "", "JSON report of a previous run (required)")
	_ = reportCmd.MarkFlagRequired("input")
	reportCmd.Flags().StringVarP(&output, "output", "o", "", "HTML output path; other formats are written next to it. If unset, JSON is printed to stdout.")
	reportCmd.Flags().StringVar(&logFile, "log", "", "Session log whose tail is embedded in the report")
	reportCmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"html"}, "Formats to write: html, json, junit. Ignored when printing to stdout.")

	return reportCmd
}

// runReport contains the core, testable logic of the report command.
func runReport(out io.Writer, logger *zap.Logger, cfg config.Interface, input, output, logFile string, formats []string) error {
	logger.Info("Re-rendering report.", zap.String("input", input), zap.String("output", output))

	snap, err := loadSnapshot(input)
	if err != nil {
		return err
	}

	var excerpt string
	if logFile != "" {
		if excerpt, err = observability.TailFile(logFile, cfg.Report().LogExcerptBytes); err != nil {
			return err
		}
	}

	opts, err := reportOptions(cfg, logger, excerpt)
	if err != nil {
		return err
	}

	if output == "" {
		return printReportToStdout(&snap, opts)
	}

	written, err := reporting.WriteAll(&snap, output, formats, opts)
	for _, path := range written {
		fmt.Fprintf(out, "Report written to %s\n", path)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// loadSnapshot decodes input and rebuilds it as a sealed run, so a file that
// was edited by hand is checked the same way a live run is.
func loadSnapshot(input string) (results.Snapshot, error) {
	f, err := os.Open(input)
	if err != nil {
		return results.Snapshot{}, fmt.Errorf("failed to open run report: %w", err)
	}
	defer f.Close()

	snap, err := results.DecodeSnapshot(f)
	if err != nil {
		return results.Snapshot{}, err
	}
	report, err := results.Restore(snap)
	if err != nil {
		return results.Snapshot{}, fmt.Errorf("invalid run report %s: %w", input, err)
	}
	return report.Snapshot(), nil
}

// printReportToStdout writes the run as JSON to standard output.
func printReportToStdout(snap *results.Snapshot, opts reporting.Options) error {
	reporter, err := reporting.New("json", "stdout", opts)
	if err != nil {
		return err
	}
	if err := reporter.Write(snap); err != nil {
		reporter.Close()
		return err
	}
	return reporter.Close()
}
