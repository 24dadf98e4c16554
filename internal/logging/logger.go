package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"photolink/internal/config"
)

// LogFileName is the file written under paths.log_dir.
const LogFileName = "photolink.log"

// Supported output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths lists "stderr", "stdout" or file paths. Empty means stderr.
	OutputPaths []string
	// Writers are extra sinks appended after OutputPaths.
	Writers []io.Writer
	// Development adds caller information at every level.
	Development bool
}

// New constructs a slog logger using the provided options. Log files are
// opened for append and stay open for the life of the process.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))

	sinks, err := openSinks(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	sinks = append(sinks, opts.Writers...)
	var out io.Writer
	switch len(sinks) {
	case 0:
		out = os.Stderr
	case 1:
		out = sinks[0]
	default:
		out = io.MultiWriter(sinks...)
	}

	addSource := opts.Development || level.Level() <= slog.LevelDebug

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", FormatConsole:
		return slog.New(newPrettyHandler(out, level, addSource)), nil
	case FormatJSON:
		return slog.New(newJSONHandler(out, level, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig logs to stderr and, when paths.log_dir is set, to
// photolink.log inside it.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: FormatConsole})
	}
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, LogFileName))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

func parseLevel(level string) slog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// openSinks resolves each distinct output path to a writer.
func openSinks(paths []string) ([]io.Writer, error) {
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}
	seen := make(map[string]struct{}, len(paths))
	sinks := make([]io.Writer, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := p
		if p != "stdout" && p != "stderr" {
			if abs, err := filepath.Abs(p); err == nil {
				key = abs
			}
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		switch p {
		case "stdout":
			sinks = append(sinks, os.Stdout)
		case "stderr":
			sinks = append(sinks, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(key), 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			file, err := os.OpenFile(key, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", key, err)
			}
			sinks = append(sinks, file)
		}
	}
	return sinks, nil
}
