package ports

import "context"

// Level represents the severity of a log message.
type Level int

const (
	// LevelDebug traces probe decisions and command invocations.
	LevelDebug Level = iota
	// LevelInfo reports run progress (retries, recoveries).
	LevelInfo
	// LevelWarn reports conditions the run survives, like an
	// inconclusive probe or a warn-policy failure.
	LevelWarn
	// LevelError reports step failures and broken infrastructure.
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Field represents a structured logging field.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger carries run diagnostics. The CLI surface owns stdout; loggers
// report around it, typically on stderr. Field values are rendered as
// given, so callers must scrub secrets before logging.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	// With returns a Logger that adds the given fields to every entry,
	// used to scope output to one run or step.
	With(fields ...Field) Logger
}
