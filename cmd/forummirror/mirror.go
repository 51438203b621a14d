package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/forummirror/internal/config"
	"github.com/nao1215/forummirror/internal/crawl"
	"github.com/nao1215/forummirror/internal/database"
	"github.com/nao1215/forummirror/internal/fetch"
	"github.com/nao1215/forummirror/internal/log"
	"github.com/nao1215/forummirror/internal/report"
	"github.com/spf13/cobra"
)

// NewMirrorCmd creates the mirror command.
func NewMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror [forum-url]",
		Short: "Mirror a forum into the local database",
		Long: `Mirror walks the forum's room listings, follows each thread, and
stores users, rooms, threads, and posts in the local SQLite database.

Posts are identified by their forum-assigned ids. Threads whose latest
advertised post is already stored are skipped without fetching, so a
repeated run only ingests what changed.

A randomized pause separates listing-page fetches to keep the load on
the forum polite. Press Ctrl-C to stop; everything ingested up to that
point stays in the database and a summary is printed.

Examples:
  # Mirror the default forum
  forummirror mirror

  # Mirror a specific forum
  forummirror mirror https://forum.example.net/

  # Slow down between listing fetches
  forummirror mirror --min-delay 2s --max-delay 5s

  # Use a custom configuration file
  forummirror mirror -c myconfig.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: runMirrorCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().Duration("min-delay", config.DefaultMinDelay,
		"Minimum pause between listing-page fetches")
	cmd.Flags().Duration("max-delay", config.DefaultMaxDelay,
		"Maximum pause between listing-page fetches (0 disables the pause)")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with requests")
	cmd.Flags().StringP("db-dir", "d", "",
		"Directory holding the SQLite database (default: XDG data directory)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .forummirror in current or home directory)")

	return cmd
}

// runMirrorCmd executes the mirror command.
func runMirrorCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.Setup(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runMirror(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags and the
// optional configuration file. Flags changed on the command line win
// over file values, which win over defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Overlay the configuration file first so explicit flags can
	// still override its values below.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("min-delay") {
		cfg.MinDelay, err = cmd.Flags().GetDuration("min-delay")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-delay") {
		cfg.MaxDelay, err = cmd.Flags().GetDuration("max-delay")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("db-dir") {
		cfg.DBDir, err = cmd.Flags().GetString("db-dir")
		if err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if len(args) > 0 {
		cfg.ForumURL = args[0]
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runMirror executes the mirror run and always prints a summary of
// what was ingested, even when the run was interrupted.
func runMirror(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting mirror",
		"forumURL", cfg.ForumURL,
		"dbDir", cfg.DBDir,
		"minDelay", cfg.MinDelay,
		"maxDelay", cfg.MaxDelay,
	)

	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	logger.Info("database ready", "path", store.Path())

	fetcher := fetch.New(
		&http.Client{Timeout: cfg.Timeout},
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithDelayRange(cfg.MinDelay, cfg.MaxDelay),
	)

	mirror := crawl.NewMirror(fetcher, store, crawl.WithLogger(logger))

	fmt.Printf("Mirroring %s...\n", cfg.ForumURL)
	startTime := time.Now()

	stats, runErr := mirror.Run(ctx, cfg.ForumURL)
	interrupted := errors.Is(runErr, context.Canceled) || ctx.Err() != nil

	elapsed := time.Since(startTime)
	if interrupted {
		fmt.Printf("Mirror interrupted after %s\n", elapsed.Round(time.Millisecond))
	} else {
		fmt.Printf("Mirror completed in %s\n", elapsed.Round(time.Millisecond))
	}

	// The run context may be cancelled; the summary queries still
	// have to go through.
	summaryCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	counts, err := store.EntityCounts(summaryCtx)
	if err != nil {
		return fmt.Errorf("failed to count stored entities: %w", err)
	}

	summary := report.NewSummary(cfg.ForumURL, counts).WithRun(stats, interrupted)
	writer := report.NewSimpleWriter(os.Stdout)
	if _, err := writer.Write(summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if runErr != nil && !interrupted {
		return runErr
	}
	return nil
}
