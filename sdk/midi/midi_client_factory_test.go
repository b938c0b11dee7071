package midi

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/leandrodaf/midikit/internal/logger"
	"github.com/leandrodaf/midikit/internal/midi/memsink"
	"github.com/leandrodaf/midikit/sdk/contracts"
)

func TestNewMIDIClientMemoryBackend(t *testing.T) {
	client, err := NewMIDIClient(
		contracts.WithLogger(logger.NewNopLogger()),
		contracts.WithBackend(contracts.BackendMemory),
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := client.(*memsink.Client); !ok {
		t.Fatalf("got %T, want *memsink.Client", client)
	}
	if err := client.OpenOutputByName("memory out"); err != nil {
		t.Fatalf("OpenOutputByName: %v", err)
	}
	if err := client.Send([]byte{0x90, 60, 100}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := client.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestBackendSelection(t *testing.T) {
	tests := []struct {
		name    string
		backend contracts.Backend
		goos    string
		want    error
	}{
		{"unknown", "alsa", "linux", ErrUnknownBackend},
		{"coremidi off macOS", contracts.BackendCoreMIDI, "linux", ErrUnsupportedOS},
		{"winmm off Windows", contracts.BackendWinMM, "darwin", ErrUnsupportedOS},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := contracts.ClientOptions{Logger: logger.NewNopLogger(), Backend: tc.backend}
			_, err := newClient(&opts, tc.goos)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPlatformStubsReportUnavailable(t *testing.T) {
	for _, goos := range []string{"darwin", "windows"} {
		t.Run(goos, func(t *testing.T) {
			if runtime.GOOS == goos {
				t.Skip("native backend is compiled on this platform")
			}
			opts := contracts.ClientOptions{Logger: logger.NewNopLogger(), Backend: contracts.BackendAuto}
			client, err := newClient(&opts, goos)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := client.ListDevices(contracts.DirectionOutput); !errors.Is(err, contracts.ErrDeviceUnavailable) {
				t.Fatalf("ListDevices: got %v", err)
			}
			if err := client.OpenOutput(0); !errors.Is(err, contracts.ErrDeviceUnavailable) {
				t.Fatalf("OpenOutput: got %v", err)
			}
			if err := client.Send([]byte{0x90, 60, 1}); !errors.Is(err, contracts.ErrOutputNotOpen) {
				t.Fatalf("Send: got %v", err)
			}
			if err := client.Stop(); err != nil {
				t.Fatalf("Stop: %v", err)
			}
		})
	}
}

func TestApplyDefaultOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "midikit.log")
	l := logger.NewZapLogger()
	opts, err := applyDefaultOptions(
		contracts.WithLogger(l),
		contracts.WithLogLevel(contracts.DebugLevel),
		contracts.WithLogFile(path),
	)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Backend != contracts.BackendAuto {
		t.Fatalf("Backend = %q", opts.Backend)
	}
	if opts.CoreMIDIConfig == nil || opts.CoreMIDIConfig.ClientName == "" {
		t.Fatalf("CoreMIDIConfig = %+v", opts.CoreMIDIConfig)
	}

	l.Debug("written to file")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty")
	}
}

func TestNewOutput(t *testing.T) {
	tests := []struct {
		port string
		want error
	}{
		{"", nil},
		{"0", nil},
		{"memory", nil},
		{"3", contracts.ErrInvalidMIDIDevice},
		{"synth", contracts.ErrInvalidMIDIDevice},
	}
	for _, tc := range tests {
		t.Run(tc.port, func(t *testing.T) {
			client, err := NewOutput(tc.port,
				contracts.WithLogger(logger.NewNopLogger()),
				contracts.WithBackend(contracts.BackendMemory),
			)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			if err != nil {
				return
			}
			defer client.Stop()
			if err := client.Send([]byte{0xB0, 123, 0}); err != nil {
				t.Fatalf("Send: %v", err)
			}
		})
	}
}
