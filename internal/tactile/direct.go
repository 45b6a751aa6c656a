package tactile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"polyguard/internal/logging"
)

// DirectExecutor executes commands directly on the host using os/exec.
// It is safe for concurrent use.
type DirectExecutor struct {
	mu     sync.RWMutex
	config ExecutorConfig

	// auditCallback is called for execution events
	auditCallback func(AuditEvent)
}

// NewDirectExecutor creates a new direct executor with default config.
func NewDirectExecutor() *DirectExecutor {
	return NewDirectExecutorWithConfig(DefaultExecutorConfig())
}

// NewDirectExecutorWithConfig creates a new direct executor with custom config.
func NewDirectExecutorWithConfig(config ExecutorConfig) *DirectExecutor {
	logging.TactileDebug("Creating DirectExecutor with config: timeout=%s, maxOutput=%d bytes",
		config.DefaultTimeout, config.MaxOutputBytes)
	return &DirectExecutor{
		config: config,
	}
}

// SetAuditCallback sets the callback for audit events.
func (e *DirectExecutor) SetAuditCallback(callback func(AuditEvent)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.auditCallback = callback
}

// emitAudit emits an audit event if a callback is registered.
func (e *DirectExecutor) emitAudit(typ AuditEventType, cmd Command, result *ExecutionResult) {
	e.mu.RLock()
	callback := e.auditCallback
	e.mu.RUnlock()

	if callback != nil {
		callback(AuditEvent{
			Type:         typ,
			Timestamp:    time.Now(),
			Command:      cmd,
			Result:       result,
			ExecutorName: "direct",
		})
	}
}

// Validate checks if a command can be executed.
func (e *DirectExecutor) Validate(cmd Command) error {
	if strings.TrimSpace(cmd.Binary) == "" {
		return fmt.Errorf("binary is required")
	}
	return nil
}

// Execute runs a command directly on the host. Only an invalid command
// produces an error; every other failure is described by the result.
func (e *DirectExecutor) Execute(ctx context.Context, cmd Command) (*ExecutionResult, error) {
	if err := e.Validate(cmd); err != nil {
		logging.TactileWarn("Command validation failed: %s %v - %v", cmd.Binary, cmd.Arguments, err)
		return nil, err
	}

	cmd = e.config.Merge(cmd)
	timeout := time.Duration(cmd.Limits.TimeoutMs) * time.Millisecond

	logging.TactileDebug("Executing: %s (dir=%s, timeout=%s)", cmd.CommandString(), cmd.WorkingDirectory, timeout)

	result := &ExecutionResult{
		ExitCode: -1,
		Command:  &cmd,
	}
	e.emitAudit(AuditEventStart, cmd, nil)

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	execCmd := exec.CommandContext(execCtx, cmd.Binary, cmd.Arguments...)
	execCmd.Dir = cmd.WorkingDirectory
	execCmd.Env = e.buildEnvironment(cmd.Environment)
	execCmd.WaitDelay = e.config.KillGrace

	switch {
	case cmd.StdinFile != "":
		f, err := os.Open(cmd.StdinFile)
		if err != nil {
			result.Error = fmt.Sprintf("open stdin file: %v", err)
			logging.TactileError("Cannot open stdin for %s: %v", cmd.Binary, err)
			e.emitAudit(AuditEventError, cmd, result)
			return result, nil
		}
		defer f.Close()
		execCmd.Stdin = f
	case cmd.Stdin != "":
		execCmd.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: cmd.Limits.MaxOutputBytes}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: cmd.Limits.MaxOutputBytes}
	execCmd.Stdout = stdoutLimited
	execCmd.Stderr = stderrLimited

	result.StartedAt = time.Now()
	err := execCmd.Run()
	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if stdoutLimited.truncated || stderrLimited.truncated {
		result.Truncated = true
		result.TruncatedBytes = stdoutLimited.discarded + stderrLimited.discarded
		logging.TactileWarn("Command output truncated: %d bytes discarded", result.TruncatedBytes)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.Success = true
		result.ExitCode = 0
	case ctx.Err() != nil:
		result.Success = true
		result.Killed = true
		result.KillReason = "context canceled"
		e.emitAudit(AuditEventKilled, cmd, result)
	case errors.Is(execCtx.Err(), context.DeadlineExceeded):
		result.Success = true
		result.Killed = true
		result.KillReason = fmt.Sprintf("timeout after %s", timeout)
		logging.TactileWarn("Command killed (timeout): %s after %s", cmd.Binary, timeout)
		e.emitAudit(AuditEventKilled, cmd, result)
	case errors.As(err, &exitErr):
		result.Success = true
		result.ExitCode = exitErr.ExitCode()
		logging.TactileDebug("Command exited non-zero: %s -> %d", cmd.Binary, result.ExitCode)
	default:
		result.Error = err.Error()
		logging.TactileError("Command failed: %s - %v", cmd.Binary, err)
		e.emitAudit(AuditEventError, cmd, result)
		return result, nil
	}

	if !result.Killed {
		e.emitAudit(AuditEventComplete, cmd, result)
	}
	logging.TactileDebug("Command completed: %s -> exit=%d, duration=%s, stdout=%d bytes",
		cmd.Binary, result.ExitCode, result.Duration, len(result.Stdout))

	return result, nil
}

// buildEnvironment creates the environment variable list.
func (e *DirectExecutor) buildEnvironment(cmdEnv []string) []string {
	env := make([]string, 0, len(e.config.AllowedEnvironment)+len(cmdEnv))

	for _, key := range e.config.AllowedEnvironment {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}

	return append(env, cmdEnv...)
}

// limitedWriter is an io.Writer that limits total bytes written.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
	discarded int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		lw.discarded += int64(n)
		return n, nil // Pretend we wrote it
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		lw.discarded += int64(n) - remaining
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err // Return original length to avoid "short write" errors
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
