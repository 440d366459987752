// Package logs builds the structured logger shared by the CLI and sessions.
package logs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options selects log destinations.
type Options struct {
	Level string    // debug, info, warn, error
	Out   io.Writer // text output, defaults to os.Stderr
	File  string    // optional JSON log file, appended to
}

// ParseLevel parses a level name. An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// New returns a logger fanning out to a text handler on opts.Out and, when
// opts.File is set, a JSON handler on that file. The returned close
// function releases the file.
func New(opts Options) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	handlers := []slog.Handler{slog.NewTextHandler(out, handlerOpts)}
	closeFn := func() error { return nil }

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, handlerOpts))
		closeFn = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeFn, nil
}
