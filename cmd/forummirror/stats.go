package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/forummirror/internal/config"
	"github.com/nao1215/forummirror/internal/database"
	"github.com/nao1215/forummirror/internal/report"
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report on the mirrored data without crawling",
		Long: `Stats reports entity totals and recent thread activity from the
local database. It never touches the network.

Examples:
  # Human-readable summary
  forummirror stats

  # JSON output for tooling
  forummirror stats --json

  # Markdown report written to a file
  forummirror stats --markdown -o report.md`,
		RunE: runStatsCmd,
	}

	cmd.Flags().StringP("db-dir", "d", "",
		"Directory holding the SQLite database (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path")
	cmd.Flags().IntP("recent", "r", 10,
		"Number of recently active threads to include")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	if cmd.Flags().Changed("db-dir") {
		cfg.DBDir, err = cmd.Flags().GetString("db-dir")
		if err != nil {
			return err
		}
	}
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	recent, err := cmd.Flags().GetInt("recent")
	if err != nil {
		return err
	}

	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}

	// The database must already exist; stats never creates one.
	store, err := database.Open(cfg.DBDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database (run 'forummirror mirror' first): %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	counts, err := store.EntityCounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count stored entities: %w", err)
	}

	threads, err := store.RecentThreads(ctx, recent)
	if err != nil {
		return fmt.Errorf("failed to list recent threads: %w", err)
	}

	summary := report.NewSummary(cfg.ForumURL, counts).WithRecentThreads(threads)

	output, closeOutput, err := openReportOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer := newSummaryWriter(cfg, output)
	if _, err := writer.Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// newSummaryWriter picks the report writer matching the requested format.
func newSummaryWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithShowEmpty(true))
	}
}

// openReportOutput opens the report destination. An empty path means
// stdout; the returned close function is a no-op in that case.
func openReportOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
