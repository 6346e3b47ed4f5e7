package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// reportedError marks an error whose message has already been shown to the
// user; the entry point only sets the exit code for it.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

// IsReported reports whether err was already printed by the command.
func IsReported(err error) bool {
	var re *reportedError
	return errors.As(err, &re)
}

// NewRootCommand creates and returns the root cobra command for getset
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "getset [file]",
		Short: "Run commands from a command file sequentially",
		Long: `getset runs the shell commands listed in a command file one after
another, streaming their output, and stops at the first command that fails.

Command files may be TOML (the default, getset.toml), YAML or Markdown.
Use --step to run only the steps whose title contains a substring.`,
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCommand,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error once
		SilenceErrors: true,
	}

	addRunFlags(cmd)

	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
