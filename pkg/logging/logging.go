// Package logging builds the process logger: a text handler for the terminal
// fanned out with optional JSON and extra handlers, all sharing one level.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options configure New.
type Options struct {
	// Writer receives text output; os.Stderr when nil.
	Writer io.Writer
	// JSONWriter, when set, receives the same records as JSON.
	JSONWriter io.Writer
	// Level is the initial level.
	Level slog.Level
	// Extra handlers receive every record as well.
	Extra []slog.Handler
}

// New returns a logger and the level variable controlling it.
func New(opts Options) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(opts.Level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	handlers := []slog.Handler{slog.NewTextHandler(writer, handlerOpts)}
	if opts.JSONWriter != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.JSONWriter, handlerOpts))
	}
	for _, h := range opts.Extra {
		if h != nil {
			handlers = append(handlers, h)
		}
	}
	if len(handlers) == 1 {
		return slog.New(handlers[0]), level
	}
	return slog.New(slogmulti.Fanout(handlers...)), level
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to levels.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", raw)
	}
}
