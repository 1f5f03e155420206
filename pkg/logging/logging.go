// Package logging builds the slog backend shared by every subsystem: one
// writer feeding stderr and an optional rotating log file, with per-subsystem
// debug levels.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// LogConfig configures a LogBackend.
type LogConfig struct {
	// LogFile is the path of the rotating log file. Empty disables file
	// logging; lines still go to stderr.
	LogFile string

	// DebugLevel is either a single level name applied to every subsystem
	// ("info", "debug", ...) or a comma-separated list of subsys=level
	// pairs with an optional bare level as the default, e.g.
	// "info,ROOM=debug".
	DebugLevel string

	// MaxLogFiles is the number of rotated files kept. Zero keeps them all.
	MaxLogFiles int

	// Quiet drops the stderr copy so only the log file is written. Used
	// by terminal UIs that own the screen.
	Quiet bool
}

// LogBackend owns the shared writer and hands out subsystem loggers.
type LogBackend struct {
	backend *slog.Backend
	rotator *rotator.Rotator

	mu           sync.Mutex
	loggers      map[string]slog.Logger
	defaultLevel slog.Level
	levels       map[string]slog.Level
}

// logWriter fans each log line out to stderr and, when configured, the
// rotator.
type logWriter struct {
	r     *rotator.Rotator
	quiet bool
}

func (w *logWriter) Write(p []byte) (int, error) {
	if !w.quiet {
		os.Stderr.Write(p)
	}
	if w.r != nil {
		w.r.Write(p)
	}
	return len(p), nil
}

// NewLogBackend creates the backend described by cfg, creating the log
// directory if needed.
func NewLogBackend(cfg LogConfig) (*LogBackend, error) {
	lb := &LogBackend{
		loggers:      make(map[string]slog.Logger),
		defaultLevel: slog.LevelInfo,
		levels:       make(map[string]slog.Level),
	}

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("unable to create log dir %s: %w", dir, err)
		}
		r, err := rotator.New(cfg.LogFile, 10*1024, false, cfg.MaxLogFiles)
		if err != nil {
			return nil, fmt.Errorf("unable to create log rotator: %w", err)
		}
		lb.rotator = r
	}

	lb.backend = slog.NewBackend(&logWriter{r: lb.rotator, quiet: cfg.Quiet})

	if cfg.DebugLevel != "" {
		if err := lb.SetDebugLevels(cfg.DebugLevel); err != nil {
			return nil, err
		}
	}
	return lb, nil
}

// Logger returns the logger for the given subsystem tag, creating it with the
// configured level on first use.
func (lb *LogBackend) Logger(subsys string) slog.Logger {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if l, ok := lb.loggers[subsys]; ok {
		return l
	}
	l := lb.backend.Logger(subsys)
	l.SetLevel(lb.levelFor(subsys))
	lb.loggers[subsys] = l
	return l
}

// SetDebugLevels parses spec and applies it to existing and future loggers.
// Spec grammar matches LogConfig.DebugLevel.
func (lb *LogBackend) SetDebugLevels(spec string) error {
	defaultLevel, levels, err := parseDebugLevels(spec)
	if err != nil {
		return err
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.defaultLevel = defaultLevel
	lb.levels = levels
	for subsys, l := range lb.loggers {
		l.SetLevel(lb.levelFor(subsys))
	}
	return nil
}

func (lb *LogBackend) levelFor(subsys string) slog.Level {
	if lvl, ok := lb.levels[subsys]; ok {
		return lvl
	}
	return lb.defaultLevel
}

// Subsystems returns the tags of the loggers created so far, sorted.
func (lb *LogBackend) Subsystems() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	tags := make([]string, 0, len(lb.loggers))
	for tag := range lb.loggers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Close flushes and closes the rotating log file, if any.
func (lb *LogBackend) Close() error {
	if lb.rotator != nil {
		return lb.rotator.Close()
	}
	return nil
}

func parseDebugLevels(spec string) (slog.Level, map[string]slog.Level, error) {
	defaultLevel := slog.LevelInfo
	levels := make(map[string]slog.Level)

	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if !strings.Contains(tok, "=") {
			lvl, ok := slog.LevelFromString(tok)
			if !ok {
				return 0, nil, fmt.Errorf("invalid debug level %q", tok)
			}
			defaultLevel = lvl
			continue
		}
		parts := strings.SplitN(tok, "=", 2)
		lvl, ok := slog.LevelFromString(parts[1])
		if !ok {
			return 0, nil, fmt.Errorf("invalid debug level %q for subsystem %q", parts[1], parts[0])
		}
		levels[parts[0]] = lvl
	}
	return defaultLevel, levels, nil
}
