// Package main provides the entry point for the forummirror CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for forummirror.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forummirror",
		Short: "Incremental forum mirror",
		Long: `forummirror maintains an incremental local mirror of a web forum.

It walks the forum's room listings, follows each thread, and stores
users, rooms, threads, and posts in a local SQLite database. Posts
are identified by their forum-assigned ids, so re-running the mirror
only ingests what is new since the last run.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewMirrorCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
