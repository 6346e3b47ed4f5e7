package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/getset/internal/filelock"
	"github.com/harrison/getset/internal/parser"
)

const tomlTemplate = `# Commands run top to bottom; the first failure stops the run.

[[commands]]
title = "Check tools"
command = "git --version"

[[commands]]
title = "Install dependencies"
command = """
echo "install your dependencies here"
"""

# [platformx]
# secret_key = "..."
# event_namespace = "getset"
`

const yamlTemplate = `# Commands run top to bottom; the first failure stops the run.
commands:
  - title: Check tools
    command: git --version
  - title: Install dependencies
    command: |
      echo "install your dependencies here"

# platformx:
#   secret_key: "..."
#   event_namespace: getset
`

const markdownTemplate = "# Setup\n\n" +
	"Each level 2 heading is a step; the first code block below it is the command.\n\n" +
	"## Check tools\n\n```sh\ngit --version\n```\n\n" +
	"## Install dependencies\n\n```sh\necho \"install your dependencies here\"\n```\n"

// NewInitCommand creates and returns the init subcommand
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Create a starter command file",
		Long: `Write a starter command file (default getset.toml). The format follows
the file extension: .toml, .yaml/.yml or .md.

An existing file is left untouched unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := parser.DefaultFile
			if len(args) == 1 {
				file = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")

			if err := writeTemplate(cmd, file, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", file)
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")

	return cmd
}

func templateFor(format parser.Format) string {
	switch format {
	case parser.FormatYAML:
		return yamlTemplate
	case parser.FormatMarkdown:
		return markdownTemplate
	default:
		return tomlTemplate
	}
}

func writeTemplate(cmd *cobra.Command, file string, force bool) error {
	err := filelock.WriteFile(cmd.Context(), file, []byte(templateFor(parser.DetectFormat(file))), force)
	if errors.Is(err, filelock.ErrExists) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", file)
	}
	return err
}
