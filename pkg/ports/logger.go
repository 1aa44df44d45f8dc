// Package ports defines the interfaces between the APNG decode core and
// its adapters: logging, the filesystem, the baseline PNG decoder, the
// renderer and the debug frame sink.
package ports

// LogLevel is the severity of a log message.
type LogLevel int

const (
	// LevelDebug carries per-frame detail from the compositor, the stream
	// producer and the stages.
	LevelDebug LogLevel = iota
	// LevelInfo carries decode and command progress.
	LevelInfo
	// LevelWarn reports problems that do not stop a decode, such as a
	// debug frame that could not be saved.
	LevelWarn
	// LevelError reports the failure that ends a command.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the name accepted by ParseLogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel maps a --log-level or log_level value to a LogLevel.
// Unknown names fall back to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger writes localized messages. msg is a translation key; args are
// applied after translation.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with component,
	// e.g. "stream" for the decode producer.
	WithComponent(component string) Logger
}
