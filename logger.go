package playcore

import (
	"log"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the minimal structured logging interface the client writes to.
// Key-value pairs alternate key, value.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// SimpleLogger writes flat lines via the standard log package. Handy for
// examples and tests; production callers usually plug in the zerolog adapter.
type SimpleLogger struct {
	l *log.Logger
}

// NewSimpleLogger returns a SimpleLogger writing to stderr.
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{l: log.New(os.Stderr, "playcore ", log.LstdFlags)}
}

func (s *SimpleLogger) Debug(msg string, kv ...any) { s.print("DEBUG", msg, kv) }
func (s *SimpleLogger) Info(msg string, kv ...any)  { s.print("INFO", msg, kv) }
func (s *SimpleLogger) Warn(msg string, kv ...any)  { s.print("WARN", msg, kv) }
func (s *SimpleLogger) Error(msg string, kv ...any) { s.print("ERROR", msg, kv) }

func (s *SimpleLogger) print(level, msg string, kv []any) {
	args := make([]any, 0, len(kv)+2)
	args = append(args, level, msg)
	args = append(args, kv...)
	s.l.Println(args...)
}

// ZeroLogger adapts a zerolog.Logger to the Logger interface.
type ZeroLogger struct {
	zlog zerolog.Logger
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

// NewZeroLogger wraps an existing zerolog.Logger.
func NewZeroLogger(zlog zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{zlog: zlog}
}

// NewDefaultZeroLogger returns a ZeroLogger writing JSON to stderr at the
// given level ("debug", "info", ...). Unknown levels fall back to info.
func NewDefaultZeroLogger(level string) *ZeroLogger {
	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	zlog := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zLevel)
	return &ZeroLogger{zlog: zlog}
}

func (z *ZeroLogger) Debug(msg string, kv ...any) { emit(z.zlog.Debug(), msg, kv) }
func (z *ZeroLogger) Info(msg string, kv ...any)  { emit(z.zlog.Info(), msg, kv) }
func (z *ZeroLogger) Warn(msg string, kv ...any)  { emit(z.zlog.Warn(), msg, kv) }
func (z *ZeroLogger) Error(msg string, kv ...any) { emit(z.zlog.Error(), msg, kv) }

func emit(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

// DebugConfig gates what the client logs. Logging is opt-in: with Enabled
// false (the default) the client stays silent regardless of the Logger.
type DebugConfig struct {
	Enabled     bool
	LogRequests bool
	LogRetries  bool
	LogAuth     bool

	// RequestIDGen produces the per-request identifier attached to debug
	// lines and the X-Request-ID header.
	RequestIDGen func() string
}

// DefaultDebugConfig enables all log categories once Enabled is flipped on.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogRetries:   true,
		LogAuth:      true,
		RequestIDGen: defaultRequestID,
	}
}
