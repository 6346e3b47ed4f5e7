package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/getset/internal/config"
	"github.com/harrison/getset/internal/executor"
	"github.com/harrison/getset/internal/history"
	"github.com/harrison/getset/internal/logger"
	"github.com/harrison/getset/internal/models"
	"github.com/harrison/getset/internal/parser"
	"github.com/harrison/getset/internal/telemetry"
)

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("verbose", "v", false, "Show command text, failure details and debug logging")
	cmd.Flags().Bool("report", false, "Show a per-step timing report at the end")
	cmd.Flags().String("step", "", "Run only steps whose title contains this substring (case-insensitive)")
	cmd.Flags().String("config", "", "Path to config file (default: .getset/config.yaml)")
	cmd.Flags().String("log-dir", "", "Directory for run logs (empty disables file logging)")
	cmd.Flags().String("log-level", "", "Diagnostic log level: trace, debug, info, warn, error")
	cmd.Flags().String("pty", "", "Pseudo-terminal mode: auto, always or never")
	cmd.Flags().String("shell", "", "Shell that runs each command with -c (default: sh)")
	cmd.Flags().Bool("no-telemetry", false, "Do not send telemetry events even if the command file configures them")
}

// loadConfig reads the config file at path, or .getset/config.yaml when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// changedString returns a pointer to the flag value only when the user set it.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func runCommand(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// CLI flags take precedence over config file settings
	cfg.MergeWithFlags(
		changedString(cmd, "log-level"),
		changedString(cmd, "log-dir"),
		changedString(cmd, "shell"),
		changedString(cmd, "pty"),
	)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	report, _ := cmd.Flags().GetBool("report")
	step, _ := cmd.Flags().GetString("step")
	noTelemetry, _ := cmd.Flags().GetBool("no-telemetry")

	file := parser.DefaultFile
	if len(args) == 1 {
		file = args[0]
	}

	cf, err := parser.ParseFile(file)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Determine log level: verbose flag overrides config
	logLevel := cfg.LogLevel
	if verbose {
		logLevel = "debug"
	}

	consoleLog := logger.NewConsoleLoggerWithErr(cmd.OutOrStdout(), cmd.ErrOrStderr(), logLevel)
	multiLog := &multiLogger{loggers: []executor.Logger{consoleLog}}

	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLoggerWithLevel(cfg.LogDir, logLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer func() {
			if err := fileLog.Close(); err != nil {
				consoleLog.LogWarn(fmt.Sprintf("failed to close run log: %v", err))
			}
		}()
		multiLog.loggers = append(multiLog.loggers, fileLog)
		consoleLog.LogDebug(fmt.Sprintf("writing run log to %s", fileLog.Path()))
	}
	consoleLog.LogTrace(fmt.Sprintf("loaded %d steps from %s (%s)", len(cf.Commands), cf.FilePath, parser.DetectFormat(file)))

	strategy, err := newStrategy(cmd, cfg, multiLog)
	if err != nil {
		return err
	}
	runner := executor.NewCommandRunner(strategy, multiLog)

	var notifier executor.Notifier
	if cf.Telemetry != nil && noTelemetry {
		multiLog.LogInfo("telemetry disabled by --no-telemetry")
	}
	if cf.Telemetry != nil && !noTelemetry {
		var opts []telemetry.Option
		if cfg.TelemetryEndpoint != "" {
			opts = append(opts, telemetry.WithEndpoint(cfg.TelemetryEndpoint))
		}
		client := telemetry.NewClient(*cf.Telemetry, telemetry.CollectGlobals(ctx), opts...)
		consoleLog.LogDebug(fmt.Sprintf("telemetry enabled (run %s)", client.RunID()))
		notifier = client
	}

	orch := executor.NewOrchestrator(runner, multiLog, notifier)

	started := time.Now()
	summary, runErr := orch.Run(ctx, cf.Commands, executor.RunOptions{
		Filter:  step,
		Verbose: verbose,
		Report:  report,
	})

	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg, history.NewRun(cf.FilePath, step, started, summary, runErr)); err != nil {
			multiLog.LogError(fmt.Sprintf("failed to record run history: %v", err))
		}
	}

	if runErr != nil {
		// The orchestrator has already reported failures of a started run.
		if summary != nil {
			return &reportedError{err: runErr}
		}
		return runErr
	}
	return nil
}

// newStrategy builds the execution strategy for the command's streams. When
// the streams are not files (tests, embedding) output is relayed through pipes.
func newStrategy(cmd *cobra.Command, cfg *config.Config, log executor.Logger) (executor.Strategy, error) {
	mode, err := executor.ParseMode(cfg.PTY)
	if err != nil {
		return nil, err
	}

	stdout, outIsFile := cmd.OutOrStdout().(*os.File)
	stderr, errIsFile := cmd.ErrOrStderr().(*os.File)
	stdin, inIsFile := cmd.InOrStdin().(*os.File)
	if !outIsFile || !errIsFile || !inIsFile {
		return &executor.PipedStrategy{
			Shell:         cfg.Shell,
			Stdin:         cmd.InOrStdin(),
			Stdout:        cmd.OutOrStdout(),
			Stderr:        cmd.ErrOrStderr(),
			MaxLineLength: cfg.MaxLineLength,
		}, nil
	}

	return executor.NewStrategy(executor.StrategyConfig{
		Mode:          mode,
		Shell:         cfg.Shell,
		MaxLineLength: cfg.MaxLineLength,
		Stdin:         stdin,
		Stdout:        stdout,
		Stderr:        stderr,
		OnFallback: func(err error) {
			log.LogDebug(fmt.Sprintf("pseudo-terminal unavailable, using pipes: %v", err))
		},
	}), nil
}

func recordHistory(ctx context.Context, cfg *config.Config, run *history.Run) error {
	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return err
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	// An interrupted run is still recorded.
	return store.Record(context.WithoutCancel(ctx), run)
}

// multiLogger implements executor.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []executor.Logger
}

// LogCommandStart forwards to all loggers
func (ml *multiLogger) LogCommandStart(entry models.CommandEntry, verbose bool) {
	for _, l := range ml.loggers {
		l.LogCommandStart(entry, verbose)
	}
}

// LogCommandResult forwards to all loggers
func (ml *multiLogger) LogCommandResult(entry models.CommandEntry, outcome models.ExecutionOutcome) {
	for _, l := range ml.loggers {
		l.LogCommandResult(entry, outcome)
	}
}

// LogMatches forwards to all loggers
func (ml *multiLogger) LogMatches(filter string, matches []models.CommandEntry) {
	for _, l := range ml.loggers {
		l.LogMatches(filter, matches)
	}
}

// LogFailure forwards to all loggers
func (ml *multiLogger) LogFailure(err error, verbose bool) {
	for _, l := range ml.loggers {
		l.LogFailure(err, verbose)
	}
}

// LogSummary forwards to all loggers
func (ml *multiLogger) LogSummary(summary models.RunSummary, report bool) {
	for _, l := range ml.loggers {
		l.LogSummary(summary, report)
	}
}

// LogDebug forwards to all loggers
func (ml *multiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

// LogInfo forwards to the loggers that have an info level
func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		if il, ok := l.(interface{ LogInfo(string) }); ok {
			il.LogInfo(message)
		}
	}
}

// LogError forwards to the loggers that have an error level
func (ml *multiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		if el, ok := l.(interface{ LogError(string) }); ok {
			el.LogError(message)
		}
	}
}
