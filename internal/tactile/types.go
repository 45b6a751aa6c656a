// Package tactile runs external programs for the verification harness.
// It is the only place polyguard touches os/exec: commands go in, a
// structured ExecutionResult comes out, and every run is bounded by a
// timeout and an output cap.
package tactile

import (
	"strings"
	"time"
)

// Command represents a command to be executed.
type Command struct {
	// Binary is the executable to run (e.g., "python3", "./judge").
	Binary string `json:"binary"`

	// Arguments are the command-line arguments.
	Arguments []string `json:"arguments"`

	// WorkingDirectory is the directory to execute in.
	// If empty, uses the executor's default working directory.
	WorkingDirectory string `json:"working_directory,omitempty"`

	// Environment variables to set (in KEY=VALUE format).
	// These are merged with the executor's allowed environment.
	Environment []string `json:"environment,omitempty"`

	// Stdin provides literal input to the command's standard input.
	Stdin string `json:"stdin,omitempty"`

	// StdinFile is opened and streamed to standard input. It takes
	// precedence over Stdin.
	StdinFile string `json:"stdin_file,omitempty"`

	// Limits specifies resource constraints for execution.
	Limits *ResourceLimits `json:"limits,omitempty"`

	// Tags are arbitrary key-value pairs for categorization and audit.
	Tags map[string]string `json:"tags,omitempty"`
}

// CommandString returns the full command as a string (for display/logging).
func (c Command) CommandString() string {
	if len(c.Arguments) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Arguments, " ")
}

// FromArgv builds a command from an argv slice such as a configured
// validator or judge. An empty slice yields a command with no binary,
// which Validate rejects.
func FromArgv(argv []string) Command {
	if len(argv) == 0 {
		return Command{}
	}
	return Command{
		Binary:    argv[0],
		Arguments: append([]string(nil), argv[1:]...),
	}
}

// ResourceLimits defines constraints on command execution.
type ResourceLimits struct {
	// TimeoutMs is the maximum execution time in milliseconds.
	// Zero means use the executor's default timeout.
	TimeoutMs int64 `json:"timeout_ms,omitempty"`

	// MaxOutputBytes limits captured stdout and stderr, each.
	// Zero means use the executor's default.
	MaxOutputBytes int64 `json:"max_output_bytes,omitempty"`
}

// ExecutionResult is the comprehensive output of command execution.
type ExecutionResult struct {
	// Success indicates whether the execution infrastructure worked.
	// A command that runs but returns a non-zero exit code, or is killed on
	// timeout, still has Success=true.
	Success bool `json:"success"`

	// ExitCode is the command's exit code (-1 if not available).
	ExitCode int `json:"exit_code"`

	// Stdout is the captured standard output.
	Stdout string `json:"stdout"`

	// Stderr is the captured standard error.
	Stderr string `json:"stderr"`

	// Duration is how long the command ran.
	Duration time.Duration `json:"duration"`

	// StartedAt is when execution began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when execution completed.
	FinishedAt time.Time `json:"finished_at"`

	// Killed indicates the command was forcibly terminated.
	Killed bool `json:"killed"`

	// KillReason explains why the command was killed.
	KillReason string `json:"kill_reason,omitempty"`

	// Truncated indicates output was truncated due to size limits.
	Truncated bool `json:"truncated"`

	// TruncatedBytes is how many bytes were discarded.
	TruncatedBytes int64 `json:"truncated_bytes,omitempty"`

	// Error contains any infrastructure-level error message.
	Error string `json:"error,omitempty"`

	// Command is the command after defaults were merged.
	Command *Command `json:"command,omitempty"`
}

// Output returns stdout followed by stderr.
func (r *ExecutionResult) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// TimedOut reports whether the command was killed by its deadline.
func (r *ExecutionResult) TimedOut() bool {
	return r.Killed && strings.HasPrefix(r.KillReason, "timeout")
}

// AuditEventType identifies a point in a command's lifecycle.
type AuditEventType string

const (
	AuditEventStart    AuditEventType = "start"
	AuditEventComplete AuditEventType = "complete"
	AuditEventKilled   AuditEventType = "killed"
	AuditEventError    AuditEventType = "error"
)

// AuditEvent is emitted by executors that accept an audit callback.
type AuditEvent struct {
	Type         AuditEventType
	Timestamp    time.Time
	Command      Command
	Result       *ExecutionResult
	ExecutorName string
}

// ExecutorConfig holds executor defaults.
type ExecutorConfig struct {
	// DefaultWorkingDir is used when a command does not set one.
	DefaultWorkingDir string

	// DefaultTimeout applies when a command has no TimeoutMs.
	DefaultTimeout time.Duration

	// MaxTimeout caps any requested timeout.
	MaxTimeout time.Duration

	// MaxOutputBytes caps each captured stream.
	MaxOutputBytes int64

	// AllowedEnvironment lists host variables passed to children.
	AllowedEnvironment []string

	// KillGrace bounds how long to wait for output pipes after a kill.
	KillGrace time.Duration
}

// DefaultExecutorConfig returns sensible defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		DefaultWorkingDir:  ".",
		DefaultTimeout:     30 * time.Second,
		MaxTimeout:         30 * time.Minute,
		MaxOutputBytes:     64 * 1024 * 1024, // 64MB
		AllowedEnvironment: []string{"PATH", "HOME", "LANG", "LC_ALL", "TMPDIR"},
		KillGrace:          2 * time.Second,
	}
}

// Merge combines this config with command-specific settings.
// Command settings override config defaults.
func (c ExecutorConfig) Merge(cmd Command) Command {
	result := cmd

	if result.WorkingDirectory == "" {
		result.WorkingDirectory = c.DefaultWorkingDir
	}

	limits := ResourceLimits{}
	if cmd.Limits != nil {
		limits = *cmd.Limits
	}
	if limits.TimeoutMs <= 0 {
		limits.TimeoutMs = c.DefaultTimeout.Milliseconds()
	}
	if c.MaxTimeout > 0 && limits.TimeoutMs > c.MaxTimeout.Milliseconds() {
		limits.TimeoutMs = c.MaxTimeout.Milliseconds()
	}
	if limits.MaxOutputBytes <= 0 {
		limits.MaxOutputBytes = c.MaxOutputBytes
	}
	result.Limits = &limits

	return result
}
