package main

import (
	"github.com/leandrodaf/midikit/internal/config"
	"github.com/leandrodaf/midikit/internal/logger"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/smf"
	"github.com/spf13/cobra"
)

// app holds the state shared by every subcommand.
type app struct {
	logLevel string
	logFile  string
	backend  string
	envFile  string

	cfg    *config.Config
	logger contracts.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "midikit",
		Short:             "Read, write and play Standard MIDI Files.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error ("+config.EnvLogLevel+")")
	flags.StringVar(&a.logFile, "log-file", "", "write logs to this rotating file instead of stderr ("+config.EnvLogFile+")")
	flags.StringVar(&a.backend, "backend", string(contracts.BackendAuto), "device backend: auto, coremidi, winmm, gomidi, memory ("+config.EnvBackend+")")
	flags.StringVar(&a.envFile, "env-file", "", "load defaults from this file instead of .env")

	root.AddCommand(
		a.infoCmd(),
		a.dumpCmd(),
		a.playCmd(),
		a.portsCmd(),
		a.scaleCmd(),
	)
	return root
}

// setup loads the configuration, lets explicit flags override it, and
// builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var files []string
	if a.envFile != "" {
		files = append(files, a.envFile)
	}
	cfg, cfgErr := config.Load(files...)

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		level, err := contracts.ParseLogLevel(a.logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.logFile
	}
	if flags.Changed("backend") {
		cfg.Backend = contracts.Backend(a.backend)
	}
	a.cfg = cfg

	a.logger = logger.NewZapLogger()
	a.logger.SetLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		a.logger.SetDestination(contracts.FileLog, cfg.LogFile)
	}
	if cfgErr != nil {
		a.logger.Warn("Ignoring invalid configuration", a.logger.Field().Error("error", cfgErr))
	}
	return nil
}

func (a *app) readFile(path string) (*smf.File, error) {
	return smf.NewReader(smf.WithReaderLogger(a.logger)).ReadFile(path)
}
