package midi

import (
	"github.com/leandrodaf/midikit/internal/logger"
	"github.com/leandrodaf/midikit/sdk/contracts"
)

// defaultClientName is the CoreMIDI client name used when none is configured.
const defaultClientName = "midikit"

// applyDefaultOptions folds opts into a ClientOptions, fills in what was left
// unset and configures the logger.
//
// Defaults:
//   - Logger: a JSON console logger from internal/logger.
//   - Backend: contracts.BackendAuto.
//   - CoreMIDIConfig: a client named "midikit".
//
// The logger's level is always set from LogLevel, whose zero value is info.
// A non-empty LogFilePath moves the logger to a rotated file.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	var options contracts.ClientOptions
	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.Backend == "" {
		options.Backend = contracts.BackendAuto
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: defaultClientName}
	}

	configureLogger(options.Logger, options.LogLevel, options.LogFilePath)
	return options, nil
}

func configureLogger(l contracts.Logger, level contracts.LogLevel, path string) {
	l.SetLevel(level)
	if path != "" {
		l.SetDestination(contracts.FileLog, path)
	}
}
