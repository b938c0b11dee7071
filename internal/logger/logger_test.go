package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/midikit/sdk/contracts"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelMapping(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core)

	l.Debug("hidden")
	l.Info("shown")
	if logs.Len() != 1 {
		t.Fatalf("got %d entries at info, want 1", logs.Len())
	}

	l.SetLevel(contracts.DebugLevel)
	l.Debug("now shown")
	l.SetLevel(contracts.ErrorLevel)
	l.Warn("hidden")
	l.Error("shown")

	var got []string
	for _, e := range logs.All() {
		got = append(got, e.Message)
	}
	if strings.Join(got, ",") != "shown,now shown,shown" {
		t.Fatalf("entries %v", got)
	}
}

func TestFieldsAreStructured(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core)
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	l.Info("event",
		l.Field().Int("track", 3),
		l.Field().String("port", "IAC Bus 1"),
		l.Field().Bool("loop", true),
		l.Field().Float64("bpm", 120.5),
		l.Field().Uint8("status", 0x90),
		l.Field().Time("at", when),
		l.Field().Duration("late", time.Millisecond),
		l.Field().Error("error", errors.New("boom")),
		l.Field(),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	ctx := entries[0].ContextMap()
	if len(entries[0].Context) != 8 {
		t.Fatalf("got %d fields, want 8: %v", len(entries[0].Context), ctx)
	}
	if ctx["track"] != int64(3) || ctx["port"] != "IAC Bus 1" || ctx["loop"] != true {
		t.Fatalf("context %v", ctx)
	}
	if ctx["status"] != uint8(0x90) || ctx["bpm"] != 120.5 || ctx["error"] != "boom" {
		t.Fatalf("context %v", ctx)
	}
}

func TestWithSharesLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	parent := NewWithCore(core)
	child := parent.With(parent.Field().String("player", "p1"))

	child.Info("bound", child.Field().Int("events", 2))
	parent.Info("plain")
	parent.SetLevel(contracts.ErrorLevel)
	child.Info("hidden")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["player"] != "p1" || ctx["events"] != int64(2) {
		t.Fatalf("context %v", ctx)
	}
	if _, ok := entries[1].ContextMap()["player"]; ok {
		t.Fatal("parent entry carries the child's field")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	l := NewNopLogger()
	l.SetLevel(contracts.DebugLevel)
	l.Error("nothing", l.Field().Int("n", 1))
}

func TestFileDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "midikit.log")
	l := NewZapLogger()
	l.SetDestination(contracts.FileLog, path)
	l.Info("to file", l.Field().String("k", "v"))
	l.SetDestination(contracts.ConsoleLog)

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"msg":"to file"`) || !strings.Contains(string(b), `"k":"v"`) {
		t.Fatalf("log file content %q", b)
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]contracts.LogLevel{
		"debug":   contracts.DebugLevel,
		" INFO ":  contracts.InfoLevel,
		"warning": contracts.WarnLevel,
		"error":   contracts.ErrorLevel,
		"fatal":   contracts.FatalLevel,
	} {
		got, err := contracts.ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := contracts.ParseLogLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
