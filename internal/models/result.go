package models

import "time"

// ExecutionOutcome is produced once per attempted command.
type ExecutionOutcome struct {
	Success  bool          // Exit status was zero
	Elapsed  time.Duration // Spawn to wait completion
	ExitCode int           // -1 when killed by a signal or never started
}

// RunResult is a report row; only successful commands produce one.
type RunResult struct {
	Title    string
	Duration time.Duration
}

// RunSummary aggregates a whole run.
type RunSummary struct {
	Results     []RunResult   // Successful commands in execution order
	Attempted   int           // Commands started, including a failing one
	Total       time.Duration // Wall time across all attempted commands
	Failed      *RunFailure   // Set when the run stopped on a failing command
	Interrupted bool          // Cancelled between commands; Failed stays nil
}

// RunFailure describes the command that halted a run.
type RunFailure struct {
	Title    string
	Status   string
	Duration time.Duration
}

// Success reports whether every selected command ran and succeeded.
func (s *RunSummary) Success() bool {
	return s != nil && s.Failed == nil && !s.Interrupted
}

// StepTotal sums the durations of the successful commands.
func (s *RunSummary) StepTotal() time.Duration {
	var total time.Duration
	for _, r := range s.Results {
		total += r.Duration
	}
	return total
}
