package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/getset/internal/parser"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a command file without running it",
		Long: `Parse and validate a command file, checking that:
  - the file can be read and parsed (TOML, YAML or Markdown)
  - at least one command is defined
  - every command has a title and command text
  - a platformx section, if present, has a secret_key

The steps are listed in the order they would run.

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := parser.DefaultFile
			if len(args) == 1 {
				file = args[0]
			}
			return validateFile(file, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	return cmd
}

// validateFile parses path and lists its steps on output.
func validateFile(path string, output io.Writer) error {
	cf, err := parser.ParseFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "%s is valid (%s, %d steps)\n", path, parser.DetectFormat(path), len(cf.Commands))
	for i, c := range cf.Commands {
		fmt.Fprintf(output, "  %d. %s\n", i+1, c.Title)
	}
	if cf.Telemetry != nil {
		fmt.Fprintf(output, "Telemetry: enabled (namespace %s)\n", cf.Telemetry.Namespace())
	}
	return nil
}
