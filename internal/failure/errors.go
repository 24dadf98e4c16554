// Package failure defines the error markers shared by the reconciliation
// pipeline. Classification outcomes (no token, no suitable match) are never
// errors; only input, configuration, lock, and write faults are reported here.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInput         = errors.New("input error")
	ErrWrite         = errors.New("write error")
	ErrConfiguration = errors.New("configuration error")
	ErrLocked        = errors.New("catalog locked")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrInput
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short classification label for err, used by the CLI exit path
// and structured logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLocked):
		return "locked"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrWrite):
		return "write"
	case errors.Is(err, ErrInput):
		return "input"
	default:
		return "internal"
	}
}

// Hint returns operator guidance for the classified error.
func Hint(err error) string {
	switch Kind(err) {
	case "locked":
		return "another photolink run holds the catalog lock; wait for it to finish"
	case "configuration":
		return "fix the configuration file (photolink config validate)"
	case "write":
		return "check disk space and permissions; the previous catalog is intact"
	case "input":
		return "check the catalog path and asset directory; nothing was modified"
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "reconcile failure"
	}
	return strings.Join(parts, ": ")
}
