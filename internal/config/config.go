package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Locator strategy names accepted in locator.strategies.
const (
	StrategyWorkerW     = "workerw"
	StrategyEWMHDesktop = "ewmh-desktop"
)

// WorkerWClasses holds the Explorer window class names searched by the
// workerw strategy.
type WorkerWClasses struct {
	ProgmanClass string `yaml:"progman_class"`
	WorkerClass  string `yaml:"worker_class"`
	DefViewClass string `yaml:"defview_class"`
}

// LocatorConfig selects and tunes the background container lookup.
type LocatorConfig struct {
	// Strategies are tried in order; the first that finds a window wins.
	Strategies       []string       `yaml:"strategies"`
	MessageTimeoutMS int            `yaml:"message_timeout_ms"`
	SpawnMessage     uint32         `yaml:"spawn_message"`
	WorkerW          WorkerWClasses `yaml:"workerw"`
	DesktopClasses   []string       `yaml:"desktop_classes"`
}

// RelocateConfig controls how a window is placed inside the container.
type RelocateConfig struct {
	// FillContainer resizes the window to cover the container instead of
	// keeping its on-screen position and size.
	FillContainer bool `yaml:"fill_container"`
}

// DaemonConfig controls the long-running daemon.
type DaemonConfig struct {
	ReconcileIntervalSeconds int  `yaml:"reconcile_interval_seconds"`
	RestoreOnExit            bool `yaml:"restore_on_exit"`
}

// LoggingConfig controls the stderr logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config is the effective configuration.
type Config struct {
	Locator  LocatorConfig  `yaml:"locator"`
	Relocate RelocateConfig `yaml:"relocate"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Locator: LocatorConfig{
			Strategies:       []string{StrategyWorkerW, StrategyEWMHDesktop},
			MessageTimeoutMS: 1000,
			SpawnMessage:     0x052C,
			WorkerW: WorkerWClasses{
				ProgmanClass: "Progman",
				WorkerClass:  "WorkerW",
				DefViewClass: "SHELLDLL_DefView",
			},
			DesktopClasses: []string{"xfdesktop", "Desktop", "desktop_window", "nautilus-desktop", "pcmanfm"},
		},
		Daemon: DaemonConfig{
			ReconcileIntervalSeconds: 10,
			RestoreOnExit:            true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ValidationError reports an invalid value at a YAML path, with the file
// position when the value came from a file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validate checks the configuration for values the daemon cannot use.
func (c *Config) Validate() error {
	if len(c.Locator.Strategies) == 0 {
		return &ValidationError{Path: "locator.strategies", Err: fmt.Errorf("at least one strategy is required")}
	}
	seen := make(map[string]bool, len(c.Locator.Strategies))
	for _, s := range c.Locator.Strategies {
		switch s {
		case StrategyWorkerW, StrategyEWMHDesktop:
		default:
			return &ValidationError{Path: "locator.strategies", Err: fmt.Errorf("unknown strategy %q (want %s or %s)", s, StrategyWorkerW, StrategyEWMHDesktop)}
		}
		if seen[s] {
			return &ValidationError{Path: "locator.strategies", Err: fmt.Errorf("strategy %q listed twice", s)}
		}
		seen[s] = true
	}
	if c.Locator.MessageTimeoutMS <= 0 {
		return &ValidationError{Path: "locator.message_timeout_ms", Err: fmt.Errorf("message_timeout_ms must be > 0")}
	}
	if c.Locator.MessageTimeoutMS > 30000 {
		return &ValidationError{Path: "locator.message_timeout_ms", Err: fmt.Errorf("message_timeout_ms must be <= 30000")}
	}
	if seen[StrategyWorkerW] {
		w := c.Locator.WorkerW
		if strings.TrimSpace(w.ProgmanClass) == "" || strings.TrimSpace(w.WorkerClass) == "" || strings.TrimSpace(w.DefViewClass) == "" {
			return &ValidationError{Path: "locator.workerw", Err: fmt.Errorf("progman_class, worker_class and defview_class must not be empty")}
		}
	}
	for _, class := range c.Locator.DesktopClasses {
		if strings.TrimSpace(class) == "" {
			return &ValidationError{Path: "locator.desktop_classes", Err: fmt.Errorf("desktop_classes contains an empty class name")}
		}
	}
	if c.Daemon.ReconcileIntervalSeconds < 1 {
		return &ValidationError{Path: "daemon.reconcile_interval_seconds", Err: fmt.Errorf("reconcile_interval_seconds must be >= 1")}
	}
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return &ValidationError{Path: "logging.level", Err: err}
	}
	return nil
}

// MessageTimeout returns the shell message timeout as a duration.
func (c *Config) MessageTimeout() time.Duration {
	return time.Duration(c.Locator.MessageTimeoutMS) * time.Millisecond
}

// ReconcileInterval returns the reconciler period as a duration.
func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.Daemon.ReconcileIntervalSeconds) * time.Second
}

// ParseLogLevel maps a config level name to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("level must be one of: debug, info, warn, error")
	}
}
