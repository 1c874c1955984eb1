package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hoistlabs/hoist/internal/ports"
)

// ConsoleLogger writes run diagnostics to a terminal stream. Plan output
// and step results go to stdout through the CLI surface; this logger
// carries the retry and probe chatter around them, so it defaults to
// stderr at warn level and stays quiet on a clean converging run.
type ConsoleLogger struct {
	mu    *sync.Mutex
	w     io.Writer
	min   ports.Level
	base  []ports.Field
	json  bool
	stamp bool
}

// ConsoleLoggerOption configures the console logger.
type ConsoleLoggerOption func(*ConsoleLogger)

// WithOutput sets the output writer (default: os.Stderr).
func WithOutput(w io.Writer) ConsoleLoggerOption {
	return func(l *ConsoleLogger) { l.w = w }
}

// WithLevel sets the minimum log level (default: Warn).
func WithLevel(min ports.Level) ConsoleLoggerOption {
	return func(l *ConsoleLogger) { l.min = min }
}

// WithJSONFormat switches entries to one JSON object per line, for runs
// driven by other tooling.
func WithJSONFormat(enabled bool) ConsoleLoggerOption {
	return func(l *ConsoleLogger) { l.json = enabled }
}

// WithTimestamp toggles the wall-clock prefix on entries.
func WithTimestamp(enabled bool) ConsoleLoggerOption {
	return func(l *ConsoleLogger) { l.stamp = enabled }
}

// NewConsoleLogger creates a console logger with hoist's defaults.
func NewConsoleLogger(opts ...ConsoleLoggerOption) *ConsoleLogger {
	l := &ConsoleLogger{
		mu:    &sync.Mutex{},
		w:     os.Stderr,
		min:   ports.LevelWarn,
		stamp: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(_ context.Context, msg string, fields ...ports.Field) {
	l.emit(ports.LevelDebug, msg, fields)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(_ context.Context, msg string, fields ...ports.Field) {
	l.emit(ports.LevelInfo, msg, fields)
}

// Warn logs a warning.
func (l *ConsoleLogger) Warn(_ context.Context, msg string, fields ...ports.Field) {
	l.emit(ports.LevelWarn, msg, fields)
}

// Error logs an error.
func (l *ConsoleLogger) Error(_ context.Context, msg string, fields ...ports.Field) {
	l.emit(ports.LevelError, msg, fields)
}

// With returns a logger that prefixes every entry with the given fields.
// The child shares the parent's writer and lock.
func (l *ConsoleLogger) With(fields ...ports.Field) ports.Logger {
	child := *l
	child.base = append(append([]ports.Field{}, l.base...), fields...)
	return &child
}

func (l *ConsoleLogger) emit(level ports.Level, msg string, fields []ports.Field) {
	if level < l.min {
		return
	}

	all := make([]ports.Field, 0, len(l.base)+len(fields))
	all = append(all, l.base...)
	all = append(all, fields...)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.json {
		l.writeJSON(level, msg, all)
		return
	}
	l.writeText(level, msg, all)
}

// writeText renders "15:04:05 warn msg key=value", quoting values that
// contain whitespace so lines stay machine-greppable.
func (l *ConsoleLogger) writeText(level ports.Level, msg string, fields []ports.Field) {
	var b strings.Builder
	if l.stamp {
		b.WriteString(time.Now().Format("15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(level.String())
	b.WriteByte(' ')
	b.WriteString(msg)

	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(renderValue(f.Value))
	}

	_, _ = fmt.Fprintln(l.w, b.String())
}

func (l *ConsoleLogger) writeJSON(level ports.Level, msg string, fields []ports.Field) {
	entry := make(map[string]interface{}, len(fields)+3)
	if l.stamp {
		entry["ts"] = time.Now().UTC().Format(time.RFC3339)
	}
	entry["level"] = level.String()
	entry["msg"] = msg
	for _, f := range fields {
		entry[f.Key] = f.Value
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// A field value that cannot marshal must not eat the message.
		data = []byte(fmt.Sprintf(`{"level":%q,"msg":%q}`, level.String(), msg))
	}
	_, _ = fmt.Fprintln(l.w, string(data))
}

func renderValue(v interface{}) string {
	s := fmt.Sprintf("%v", v)
	if strings.ContainsAny(s, " \t\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

var _ ports.Logger = (*ConsoleLogger)(nil)
