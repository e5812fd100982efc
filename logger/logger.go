// Package logger wraps zerolog for the launcher's diagnostic output.
// Diagnostics always go to stderr; stdout belongs to the inference binary.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. It is usable before Setup is called.
var Log = New(os.Stderr, "warn", "console")

// Logger is a thin key/value front end over a zerolog.Logger.
type Logger struct {
	z zerolog.Logger
}

// New builds a Logger writing to w. Unknown levels fall back to info and
// any format other than "json" selects the console writer.
func New(w io.Writer, level, format string) *Logger {
	var z zerolog.Logger
	if strings.EqualFold(format, "json") {
		z = zerolog.New(w)
	} else {
		z = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
	}
	z = z.Level(ParseLevel(level)).With().Timestamp().Logger()
	return &Logger{z: z}
}

// Setup replaces the global logger.
func Setup(level, format string) {
	Log = New(os.Stderr, level, format)
}

// ParseLevel maps a case-insensitive level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "OFF", "DISABLED":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Info logs at Info level with variadic key-value pairs
func (l *Logger) Info(msg string, args ...interface{}) {
	e := l.z.Info()
	addFields(e, args...)
	e.Msg(msg)
}

// Debug logs at Debug level with variadic key-value pairs
func (l *Logger) Debug(msg string, args ...interface{}) {
	e := l.z.Debug()
	addFields(e, args...)
	e.Msg(msg)
}

// Warn logs at Warn level with variadic key-value pairs
func (l *Logger) Warn(msg string, args ...interface{}) {
	e := l.z.Warn()
	addFields(e, args...)
	e.Msg(msg)
}

// Error logs at Error level with variadic key-value pairs
func (l *Logger) Error(msg string, args ...interface{}) {
	e := l.z.Error()
	addFields(e, args...)
	e.Msg(msg)
}

// addFields adds key-value pairs to the event. A trailing key without a
// value is dropped.
func addFields(e *zerolog.Event, args ...interface{}) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		e.Interface(key, args[i+1])
	}
}
