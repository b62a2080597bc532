package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu         sync.RWMutex
	logger     zerolog.Logger
	loggerOnce sync.Once
	minLevel   = LevelInfo
)

// initLogger initializes the global logger to write JSON lines to stderr.
func initLogger() {
	loggerOnce.Do(func() {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(toZerolog(minLevel))
	})
}

// ParseLevel maps a config string ("debug", "info", ...) to a Level.
// Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
	logger = logger.Level(toZerolog(l))
}

// SetOutput redirects all log output. The TUI uses this to keep the
// terminal clean; tests use it to capture lines.
func SetOutput(w io.Writer) {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = io.Discard
	}
	logger = logger.Output(w)
}

// Logger returns the underlying zerolog logger for components that want
// to derive child loggers (HTTP middleware).
func Logger() zerolog.Logger {
	initLogger()
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, kv ...any) {
	logWithLevel(LevelDebug, nil, msg, kv...)
}

func Info(msg string, kv ...any) {
	logWithLevel(LevelInfo, nil, msg, kv...)
}

func Warn(msg string, kv ...any) {
	logWithLevel(LevelWarn, nil, msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	logWithLevel(LevelError, err, msg, kv...)
}

func logWithLevel(level Level, err error, msg string, kv ...any) {
	l := Logger()

	var ev *zerolog.Event
	switch level {
	case LevelDebug:
		ev = l.Debug()
	case LevelWarn:
		ev = l.Warn()
	case LevelError:
		ev = l.Error()
	default:
		ev = l.Info()
	}
	if ev == nil {
		// Disabled by level.
		return
	}
	if err != nil {
		ev = ev.Err(err)
	}
	if len(kv) > 0 {
		ev = ev.Fields(pairs(kv))
	}
	ev.Msg(msg)
}

// pairs drops non-string keys and a trailing odd value, mirroring the
// key=value contract callers rely on.
func pairs(kv []any) []any {
	out := make([]any, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		if _, ok := kv[i].(string); !ok {
			continue
		}
		out = append(out, kv[i], kv[i+1])
	}
	return out
}

func toZerolog(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
