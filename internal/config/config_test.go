package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leandrodaf/midikit/sdk/contracts"
	"go.uber.org/multierr"
)

var allKeys = []string{EnvLogLevel, EnvLogFile, EnvBackend, EnvOutput, EnvBPM, EnvTicksPerBeat}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != *Default() {
		t.Fatalf("got %+v, want defaults", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFile, "/tmp/midikit.log")
	t.Setenv(EnvBackend, "memory")
	t.Setenv(EnvOutput, "IAC Driver Bus 1")
	t.Setenv(EnvBPM, "96.5")
	t.Setenv(EnvTicksPerBeat, "960")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		LogLevel:     contracts.DebugLevel,
		LogFile:      "/tmp/midikit.log",
		Backend:      contracts.BackendMemory,
		Output:       "IAC Driver Bus 1",
		BPM:          96.5,
		TicksPerBeat: 960,
	}
	if *cfg != want {
		t.Fatalf("got %+v, want %+v", *cfg, want)
	}
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "midikit.env")
	body := "MIDIKIT_OUTPUT=From File\nMIDIKIT_BPM=100\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvBPM, "140")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output != "From File" {
		t.Fatalf("Output = %q", cfg.Output)
	}
	if cfg.BPM != 140 {
		t.Fatalf("BPM = %v, want the environment's 140", cfg.BPM)
	}
}

func TestLoadReportsEveryInvalidValue(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv(EnvLogLevel, "loud")
	t.Setenv(EnvBPM, "-3")
	t.Setenv(EnvTicksPerBeat, "70000")

	cfg, err := Load()
	if got := len(multierr.Errors(err)); got != 3 {
		t.Fatalf("got %d errors (%v), want 3", got, err)
	}
	if *cfg != *Default() {
		t.Fatalf("invalid values changed the config: %+v", cfg)
	}
}

func TestLoadMissingNamedFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err == nil {
		t.Fatal("expected an error for a missing named env file")
	}
}
