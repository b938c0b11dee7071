package contracts

import (
	"fmt"
	"strings"
	"time"
)

// LogLevel is the minimum severity a Logger emits. The numeric order is not
// the severity order; backends map each value explicitly.
type LogLevel int

const (
	InfoLevel LogLevel = iota
	DebugLevel
	ErrorLevel
	WarnLevel
	// FatalLevel entries terminate the process after being written.
	FatalLevel
)

var levelNames = map[LogLevel]string{
	InfoLevel:  "info",
	DebugLevel: "debug",
	ErrorLevel: "error",
	WarnLevel:  "warn",
	FatalLevel: "fatal",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// ParseLogLevel accepts the level names used by LogLevel.String, in any case,
// plus "warning".
func ParseLogLevel(s string) (LogLevel, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	if want == "warning" {
		want = "warn"
	}
	for level, name := range levelNames {
		if name == want {
			return level, nil
		}
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// LogDestination selects where a Logger writes.
type LogDestination string

const (
	ConsoleLog LogDestination = "console" // JSON on stderr
	FileLog    LogDestination = "file"    // JSON in a rotated file
)

// Field builds typed key/value pairs. Each method returns a new Field; the
// builder returned by Logger.Field carries no pair of its own.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Int64(key string, val int64) Field
	Uint8(key string, val uint8) Field
	Uint64(key string, val uint64) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Time(key string, val time.Time) Field
	Duration(key string, val time.Duration) Field
	Error(key string, val error) Field
}

// Logger is the structured logger every package in the module writes to.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Field() Field

	// With returns a logger that adds fields to every entry. It shares the
	// parent's level and destination.
	With(fields ...Field) Logger

	SetLevel(level LogLevel)
	SetDestination(dest LogDestination, filePath ...string)
}
