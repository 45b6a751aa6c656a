package tactile

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX sh")
	}
}

func TestDirectExecutor_Execute(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary:    "echo",
		Arguments: []string{"hello"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Errorf("Expected success, got failure: %s", result.Error)
	}
	if result.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", result.ExitCode)
	}
	if !strings.Contains(result.Output(), "hello") {
		t.Errorf("Expected output to contain 'hello', got: %s", result.Output())
	}
}

func TestDirectExecutor_StdinFile(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	path := filepath.Join(t.TempDir(), "case.in")
	if err := os.WriteFile(path, []byte("2\n26\n11\n"), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	result, err := executor.Execute(context.Background(), Command{
		Binary:    "cat",
		StdinFile: path,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Stdout != "2\n26\n11\n" {
		t.Errorf("unexpected stdout %q", result.Stdout)
	}
}

func TestDirectExecutor_MissingStdinFile(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary:    "cat",
		StdinFile: filepath.Join(t.TempDir(), "absent.in"),
	})
	if err != nil {
		t.Fatalf("Execute returned error instead of result: %v", err)
	}
	if result.Success {
		t.Errorf("Expected infrastructure failure")
	}
	if !strings.Contains(result.Error, "stdin") {
		t.Errorf("Expected stdin error, got %q", result.Error)
	}
}

func TestDirectExecutor_LiteralStdin(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary: "cat",
		Stdin:  "secure\n",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Stdout != "secure\n" {
		t.Errorf("unexpected stdout %q", result.Stdout)
	}
}

func TestDirectExecutor_Timeout(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	start := time.Now()
	result, err := executor.Execute(context.Background(), Command{
		Binary:    "sleep",
		Arguments: []string{"10"},
		Limits:    &ResourceLimits{TimeoutMs: 300},
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Killed || !result.TimedOut() {
		t.Errorf("Expected command to be killed on timeout, got %+v", result)
	}
	if !strings.Contains(result.KillReason, "timeout") {
		t.Errorf("Expected kill reason to mention timeout, got: %s", result.KillReason)
	}
	if elapsed > 5*time.Second {
		t.Errorf("Timeout didn't work, elapsed: %v", elapsed)
	}
}

func TestDirectExecutor_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary:    "sh",
		Arguments: []string{"-c", "exit 42"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Errorf("Expected success=true for non-zero exit, got: %s", result.Error)
	}
	if result.ExitCode != 42 {
		t.Errorf("Expected exit code 42, got %d", result.ExitCode)
	}
}

func TestDirectExecutor_InvalidCommand(t *testing.T) {
	executor := NewDirectExecutor()

	result, err := executor.Execute(context.Background(), Command{Binary: "nonexistent_command_12345"})
	if err != nil {
		t.Fatalf("Execute returned error instead of result: %v", err)
	}
	if result.Success {
		t.Errorf("Expected failure for invalid command")
	}
	if result.Error == "" {
		t.Errorf("Expected error message for invalid command")
	}
}

func TestDirectExecutor_Validate(t *testing.T) {
	executor := NewDirectExecutor()
	if err := executor.Validate(Command{}); err == nil {
		t.Error("Expected error for empty binary")
	}
	if _, err := executor.Execute(context.Background(), Command{Binary: "  "}); err == nil {
		t.Error("Expected Execute to reject blank binary")
	}
	if err := executor.Validate(Command{Binary: "true"}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestDirectExecutor_OutputTruncation(t *testing.T) {
	skipOnWindows(t)
	config := DefaultExecutorConfig()
	config.MaxOutputBytes = 8
	executor := NewDirectExecutorWithConfig(config)

	result, err := executor.Execute(context.Background(), Command{
		Binary:    "sh",
		Arguments: []string{"-c", "printf 'not secure\\n1234\\n'"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Truncated {
		t.Errorf("Expected truncation")
	}
	if result.Stdout != "not secu" {
		t.Errorf("unexpected truncated stdout %q", result.Stdout)
	}
	if result.TruncatedBytes != 8 {
		t.Errorf("Expected 8 discarded bytes, got %d", result.TruncatedBytes)
	}
}

func TestDirectExecutor_ContextCancellation(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	result, err := executor.Execute(ctx, Command{
		Binary:    "sleep",
		Arguments: []string{"10"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Killed {
		t.Errorf("Expected command to be killed")
	}
	if result.TimedOut() {
		t.Errorf("Cancellation must not be reported as a timeout")
	}
}

func TestDirectExecutor_Environment(t *testing.T) {
	skipOnWindows(t)
	t.Setenv("POLYGUARD_TEST_ALLOWED", "yes")
	t.Setenv("POLYGUARD_TEST_HIDDEN", "no")

	config := DefaultExecutorConfig()
	config.AllowedEnvironment = []string{"PATH", "POLYGUARD_TEST_ALLOWED"}
	executor := NewDirectExecutorWithConfig(config)

	result, err := executor.Execute(context.Background(), Command{
		Binary:      "sh",
		Arguments:   []string{"-c", "echo \"$POLYGUARD_TEST_ALLOWED|$POLYGUARD_TEST_HIDDEN|$EXTRA\""},
		Environment: []string{"EXTRA=1"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "yes||1" {
		t.Errorf("unexpected environment %q", result.Stdout)
	}
}

func TestDirectExecutor_AuditCallback(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	var mu sync.Mutex
	var events []AuditEventType
	executor.SetAuditCallback(func(ev AuditEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev.Type)
	})

	if _, err := executor.Execute(context.Background(), Command{Binary: "true"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, err := executor.Execute(context.Background(), Command{
		Binary:    "sleep",
		Arguments: []string{"5"},
		Limits:    &ResourceLimits{TimeoutMs: 100},
	}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []AuditEventType{AuditEventStart, AuditEventComplete, AuditEventStart, AuditEventKilled}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, events[i], want[i])
		}
	}
}

func TestCommand_CommandString(t *testing.T) {
	if got := (Command{Binary: "judge"}).CommandString(); got != "judge" {
		t.Errorf("unexpected %q", got)
	}
	if got := (Command{Binary: "python3", Arguments: []string{"validate.py", "-v"}}).CommandString(); got != "python3 validate.py -v" {
		t.Errorf("unexpected %q", got)
	}
}

func TestFromArgv(t *testing.T) {
	cmd := FromArgv([]string{"java", "-cp", ".", "Judge"})
	if cmd.Binary != "java" || len(cmd.Arguments) != 3 {
		t.Errorf("unexpected command %+v", cmd)
	}
	if FromArgv(nil).Binary != "" {
		t.Error("expected empty command for empty argv")
	}
}

func TestExecutionResult_Output(t *testing.T) {
	r := &ExecutionResult{Stdout: "out"}
	if r.Output() != "out" {
		t.Errorf("unexpected %q", r.Output())
	}
	r.Stderr = "err"
	if r.Output() != "out\nerr" {
		t.Errorf("unexpected %q", r.Output())
	}
	r.Stdout = ""
	if r.Output() != "err" {
		t.Errorf("unexpected %q", r.Output())
	}
}

func TestExecutorConfig_Merge(t *testing.T) {
	config := DefaultExecutorConfig()
	config.MaxTimeout = time.Minute

	merged := config.Merge(Command{Binary: "judge"})
	if merged.WorkingDirectory != "." {
		t.Errorf("expected default working dir, got %q", merged.WorkingDirectory)
	}
	if merged.Limits == nil || merged.Limits.TimeoutMs != 30000 {
		t.Errorf("expected default timeout, got %+v", merged.Limits)
	}

	merged = config.Merge(Command{Binary: "judge", Limits: &ResourceLimits{TimeoutMs: int64(time.Hour / time.Millisecond)}})
	if merged.Limits.TimeoutMs != 60000 {
		t.Errorf("expected timeout capped at 60000ms, got %d", merged.Limits.TimeoutMs)
	}

	original := &ResourceLimits{TimeoutMs: 500}
	merged = config.Merge(Command{Binary: "judge", Limits: original})
	if merged.Limits == original {
		t.Error("Merge must not alias the caller's limits")
	}
	if merged.Limits.MaxOutputBytes != config.MaxOutputBytes {
		t.Errorf("expected default output cap, got %d", merged.Limits.MaxOutputBytes)
	}
}
