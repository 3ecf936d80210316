// Package logger is the process-wide application log plus the separate model exchange
// log in llm.go.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var (
	level  slog.LevelVar
	active atomic.Pointer[slog.Logger]
)

func init() {
	SetOutput(os.Stdout)
}

// SetOutput redirects the application log. A nil writer means stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	active.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &level})))
}

// SetLevel accepts debug, info, warn(ing) or error; anything else means info.
func SetLevel(name string) {
	level.Set(parseLevel(name))
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func logf(l slog.Level, format string, v ...any) {
	lg := active.Load()
	if !lg.Enabled(context.Background(), l) {
		return
	}
	lg.Log(context.Background(), l, fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...any) { logf(slog.LevelDebug, format, v...) }
func Infof(format string, v ...any)  { logf(slog.LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { logf(slog.LevelWarn, format, v...) }
func Errorf(format string, v ...any) { logf(slog.LevelError, format, v...) }

// InfoBlock logs a multi-line block one record per line, skipping blank lines.
func InfoBlock(block string) {
	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		if strings.TrimSpace(line) != "" {
			Infof("%s", line)
		}
	}
}
