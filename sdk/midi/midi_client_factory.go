package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midikit/internal/midi/gomididrv"
	"github.com/leandrodaf/midikit/internal/midi/memsink"
	"github.com/leandrodaf/midikit/internal/midi/mididarwin"
	"github.com/leandrodaf/midikit/internal/midi/midiwindows"
	"github.com/leandrodaf/midikit/sdk/contracts"
)

// Error definitions for backend selection.
var (
	// ErrUnsupportedOS is returned when a native backend is requested on another operating system.
	ErrUnsupportedOS  = errors.New("unsupported operating system")
	ErrUnknownBackend = errors.New("unknown MIDI backend")
)

type initializer func(*contracts.ClientOptions) (contracts.ClientMIDI, error)

// clientInitializers maps OS names to corresponding native MIDI client initializers.
var clientInitializers = map[string]initializer{
	"darwin":  mididarwin.NewMIDIClient,  // macOS (Darwin) MIDI client initializer.
	"windows": midiwindows.NewMIDIClient, // Windows MIDI client initializer.
}

// nativeBackends names the OS each native backend runs on.
var nativeBackends = map[contracts.Backend]string{
	contracts.BackendCoreMIDI: "darwin",
	contracts.BackendWinMM:    "windows",
}

// portableBackends run anywhere.
var portableBackends = map[contracts.Backend]initializer{
	contracts.BackendGomidi: gomididrv.NewMIDIClient,
	contracts.BackendMemory: memsink.NewMIDIClient,
}

// NewClient initializes the backend named by opts.Backend. With BackendAuto
// it uses the native backend of the current operating system (CoreMIDI on
// macOS, WinMM on Windows) and the gomidi driver everywhere else.
//
// opts *contracts.ClientOptions: Configuration options for the MIDI client.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI client.
//   - error: ErrUnsupportedOS, ErrUnknownBackend, or an error from the backend itself.
func NewClient(opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return newClient(opts, runtime.GOOS)
}

func newClient(opts *contracts.ClientOptions, goos string) (contracts.ClientMIDI, error) {
	backend := opts.Backend
	if backend == "" {
		backend = contracts.BackendAuto
	}

	switch {
	case backend == contracts.BackendAuto:
		if newFn, ok := clientInitializers[goos]; ok {
			return newFn(opts)
		}
		opts.Logger.Debug("No native MIDI backend; using gomidi", opts.Logger.Field().String("os", goos))
		return gomididrv.NewMIDIClient(opts)
	case nativeBackends[backend] != "":
		if nativeBackends[backend] != goos {
			return nil, fmt.Errorf("%w: %s backend needs %s, running on %s", ErrUnsupportedOS, backend, nativeBackends[backend], goos)
		}
		return clientInitializers[goos](opts)
	case portableBackends[backend] != nil:
		return portableBackends[backend](opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
