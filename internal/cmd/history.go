package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/getset/internal/history"
	"github.com/harrison/getset/internal/logger"
)

// NewHistoryCommand creates and returns the history subcommand
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Long: `List recent runs recorded in the history database, newest first.

Runs are recorded when history.enabled is set in .getset/config.yaml.`,
		Args:         cobra.NoArgs,
		RunE:         historyCommand,
		SilenceUsage: true,
	}

	cmd.Flags().IntP("limit", "n", 10, "Number of runs to show")
	cmd.Flags().String("config", "", "Path to config file (default: .getset/config.yaml)")
	cmd.Flags().Duration("prune", 0, "Delete runs older than this age before listing (e.g. 720h)")

	return cmd
}

func historyCommand(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return err
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if prune, _ := cmd.Flags().GetDuration("prune"); prune > 0 {
		deleted, err := store.Prune(ctx, time.Now().Add(-prune))
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		fmt.Fprintf(out, "Pruned %d runs older than %s\n", deleted, logger.FormatDuration(prune))
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	for _, run := range runs {
		printRun(out, run)
	}
	return nil
}

func printRun(out io.Writer, run *history.Run) {
	status := "✓"
	if !run.Success {
		status = "✗"
	}

	fmt.Fprintf(out, "%s %s %8s  %s", run.StartedAt.Local().Format("2006-01-02 15:04:05"), status, logger.FormatSeconds(run.Total), run.File)
	if run.Filter != "" {
		fmt.Fprintf(out, " --step %q", run.Filter)
	}
	fmt.Fprintf(out, " (%d steps)\n", len(run.Steps))

	failedStep := false
	for _, step := range run.Steps {
		if !step.Success {
			failedStep = true
			fmt.Fprintf(out, "    ✗ %s: %s\n", step.Title, step.Status)
		}
	}
	// Runs stopped before a step failed (no match, interrupt) show the error.
	if run.Error != "" && !failedStep {
		fmt.Fprintf(out, "    %s\n", run.Error)
	}
}
