// Package config reads the CLI defaults from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"go.uber.org/multierr"
)

// Environment variable names.
const (
	EnvLogLevel     = "MIDIKIT_LOG_LEVEL"
	EnvLogFile      = "MIDIKIT_LOG_FILE"
	EnvBackend      = "MIDIKIT_BACKEND"
	EnvOutput       = "MIDIKIT_OUTPUT"
	EnvBPM          = "MIDIKIT_BPM"
	EnvTicksPerBeat = "MIDIKIT_TICKS_PER_BEAT"
)

// Config stores the defaults for command-line flags.
type Config struct {
	LogLevel     contracts.LogLevel
	LogFile      string            // Empty logs to stderr.
	Backend      contracts.Backend // Device backend, "auto" by default.
	Output       string            // Output device name; empty picks the first.
	BPM          float64
	TicksPerBeat uint16 // 0 uses the file's resolution.
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogLevel: contracts.InfoLevel,
		Backend:  contracts.BackendAuto,
		BPM:      120,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// Load loads .env files (".env" in the working directory when none are
// named) without overriding variables already set, then reads the
// environment. A missing default .env is not an error. Invalid values keep
// their default and are all reported in the returned error.
func Load(envFiles ...string) (*Config, error) {
	var err error
	if loadErr := godotenv.Load(envFiles...); loadErr != nil {
		if len(envFiles) > 0 || !errors.Is(loadErr, fs.ErrNotExist) {
			err = multierr.Append(err, fmt.Errorf("config: loading env file: %w", loadErr))
		}
	}

	cfg := Default()
	cfg.LogFile = getEnv(EnvLogFile, cfg.LogFile)
	cfg.Output = getEnv(EnvOutput, cfg.Output)
	cfg.Backend = contracts.Backend(getEnv(EnvBackend, string(cfg.Backend)))

	if v := getEnv(EnvLogLevel, ""); v != "" {
		level, parseErr := contracts.ParseLogLevel(v)
		if parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("config: %s: %w", EnvLogLevel, parseErr))
		} else {
			cfg.LogLevel = level
		}
	}
	if v := getEnv(EnvBPM, ""); v != "" {
		bpm, parseErr := strconv.ParseFloat(v, 64)
		if parseErr != nil || !(bpm > 0) {
			err = multierr.Append(err, fmt.Errorf("config: %s: invalid tempo %q", EnvBPM, v))
		} else {
			cfg.BPM = bpm
		}
	}
	if v := getEnv(EnvTicksPerBeat, ""); v != "" {
		tpb, parseErr := strconv.ParseUint(v, 10, 16)
		if parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("config: %s: %w", EnvTicksPerBeat, parseErr))
		} else {
			cfg.TicksPerBeat = uint16(tpb)
		}
	}
	return cfg, err
}
