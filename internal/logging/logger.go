// Package logging provides categorized structured logging backed by zap.
// Each subsystem logs through a named child of one process-wide logger, so
// output can be filtered by the "logger" field. Until Initialize or
// SetLogger is called every category is a no-op.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // CLI startup, config loading
	CategorySearch  Category = "search"  // Pool enumeration
	CategoryCorpus  Category = "corpus"  // Fixture generation and persistence
	CategoryHarness Category = "harness" // Fixture verification runs
	CategoryTactile Category = "tactile" // External process execution
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // json, console
	Verbose bool   // forces debug level
}

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Build constructs a zap logger from options without installing it.
func Build(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(opts.Format) {
	case "", "json":
		cfg = zap.NewProductionConfig()
	case "console", "text":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format: %s", opts.Format)
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}

// Initialize builds a logger from options and installs it process-wide.
func Initialize(opts Options) (*zap.Logger, error) {
	l, err := Build(opts)
	if err != nil {
		return nil, err
	}
	SetLogger(l)
	Get(CategoryBoot).Debug("logging initialized",
		zap.String("level", opts.Level),
		zap.String("format", opts.Format),
		zap.Bool("verbose", opts.Verbose))
	return l, nil
}

// SetLogger installs l as the process-wide logger. A nil logger restores
// the no-op default.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	base = l
	mu.Unlock()
}

// L returns the process-wide logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Get returns the logger for a category.
func Get(category Category) *zap.Logger {
	return L().Named(string(category))
}

// Sync flushes buffered entries. Errors from syncing stderr are ignored.
func Sync() {
	_ = L().Sync()
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

// Corpus logs to the corpus category
func Corpus(format string, args ...interface{}) {
	Get(CategoryCorpus).Sugar().Infof(format, args...)
}

// CorpusDebug logs debug to the corpus category
func CorpusDebug(format string, args ...interface{}) {
	Get(CategoryCorpus).Sugar().Debugf(format, args...)
}

// Harness logs to the harness category
func Harness(format string, args ...interface{}) {
	Get(CategoryHarness).Sugar().Infof(format, args...)
}

// HarnessDebug logs debug to the harness category
func HarnessDebug(format string, args ...interface{}) {
	Get(CategoryHarness).Sugar().Debugf(format, args...)
}

// HarnessWarn logs warning to the harness category
func HarnessWarn(format string, args ...interface{}) {
	Get(CategoryHarness).Sugar().Warnf(format, args...)
}

// TactileDebug logs debug to the tactile category
func TactileDebug(format string, args ...interface{}) {
	Get(CategoryTactile).Sugar().Debugf(format, args...)
}

// TactileWarn logs warning to the tactile category
func TactileWarn(format string, args ...interface{}) {
	Get(CategoryTactile).Sugar().Warnf(format, args...)
}

// TactileError logs error to the tactile category
func TactileError(format string, args ...interface{}) {
	Get(CategoryTactile).Sugar().Errorf(format, args...)
}

// =============================================================================
// TIMING
// =============================================================================

// Timer measures one operation and logs its duration when stopped.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer creates a new timer for measuring operation duration
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug(t.op+" completed", zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopWithInfo ends the timer and logs at info level
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info(t.op+" completed", zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn(t.op+" exceeded threshold",
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", threshold))
	} else {
		Get(t.category).Debug(t.op+" completed", zap.Duration("elapsed", elapsed))
	}
	return elapsed
}
