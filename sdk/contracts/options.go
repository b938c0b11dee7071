package contracts

import (
	"time"

	"github.com/leandrodaf/midikit/sdk/message"
)

// MIDICommand represents the types of MIDI commands for event filtering.
type MIDICommand byte

const (
	NoteOn        = MIDICommand(message.NoteOn)
	NoteOff       = MIDICommand(message.NoteOff)
	PolyPressure  = MIDICommand(message.PolyPressure)
	ControlChange = MIDICommand(message.ControlChange)
	ProgramChange = MIDICommand(message.ProgramChange)
	Aftertouch    = MIDICommand(message.Aftertouch)
	PitchBend     = MIDICommand(message.PitchBend)
)

// MIDIEventFilter allows users to specify which MIDI commands to capture.
type MIDIEventFilter struct {
	Commands []MIDICommand // List of MIDI commands to filter.
}

// Allows reports whether m passes the filter. A nil filter or one without
// commands lets every message through.
func (f *MIDIEventFilter) Allows(m message.Message) bool {
	if f == nil || len(f.Commands) == 0 {
		return true
	}
	for _, c := range f.Commands {
		if MIDICommand(m.Type()) == c {
			return true
		}
	}
	return false
}

// Backend names a device implementation.
type Backend string

const (
	// BackendAuto picks the native backend for the running OS.
	BackendAuto     Backend = "auto"
	BackendCoreMIDI Backend = "coremidi"
	BackendWinMM    Backend = "winmm"
	BackendGomidi   Backend = "gomidi"

	// BackendMemory records sent messages in memory and has no real devices.
	BackendMemory Backend = "memory"
)

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
	PortName   string // Name given to the input and output ports.
}

// ClientOptions defines the configuration options for the MIDI client.
type ClientOptions struct {
	Logger          Logger           // Logger for logging events and errors.
	LogLevel        LogLevel         // Level of logging to use.
	LogFilePath     string           // File path for logging if file logging is enabled.
	MIDIEventFilter *MIDIEventFilter // Optional filter for MIDI events to capture.
	CoreMIDIConfig  *CoreMIDIConfig  // Configuration specific to CoreMIDI.
	Backend         Backend          // Device backend; BackendAuto when empty.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the MIDI client.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the MIDI client.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile sends the client's log to a rotating file at path.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithMIDIEventFilter sets the MIDI event filter for the MIDI client.
func WithMIDIEventFilter(filter MIDIEventFilter) Option {
	return func(opts *ClientOptions) {
		opts.MIDIEventFilter = &filter
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration for the MIDI client.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithBackend forces a device backend instead of the OS default.
func WithBackend(b Backend) Option {
	return func(opts *ClientOptions) {
		opts.Backend = b
	}
}

// PlayerOptions configures a sequence player.
type PlayerOptions struct {
	Logger        Logger
	BPM           float64            // Starting tempo; a tempo meta-event in the sequence replaces it.
	TicksPerBeat  uint16             // Resolution override; 0 uses the file's.
	Loop          bool               // Restart from the beginning when the sequence ends.
	Filter        *MIDIEventFilter   // Commands to play; nil plays every channel message.
	Events        chan<- PlayerEvent // Receives each dispatched event without blocking.
	SpinThreshold time.Duration      // How close to a deadline the player stops sleeping and spins.
	OnStarted     func()
	OnStopped     func()
}

// PlayerOption is a function that modifies PlayerOptions.
type PlayerOption func(*PlayerOptions)

// WithPlayerLogger sets the logger used by the player.
func WithPlayerLogger(l Logger) PlayerOption {
	return func(opts *PlayerOptions) {
		opts.Logger = l
	}
}

// WithBPM sets the starting tempo in beats per minute.
func WithBPM(bpm float64) PlayerOption {
	return func(opts *PlayerOptions) {
		opts.BPM = bpm
	}
}

// WithTicksPerBeat overrides the resolution of loaded files.
func WithTicksPerBeat(tpb uint16) PlayerOption {
	return func(opts *PlayerOptions) {
		opts.TicksPerBeat = tpb
	}
}

// WithLoop makes playback restart when the sequence ends.
func WithLoop(loop bool) PlayerOption {
	return func(opts *PlayerOptions) {
		opts.Loop = loop
	}
}

// WithPlayerEventFilter limits playback to the filter's commands.
func WithPlayerEventFilter(filter MIDIEventFilter) PlayerOption {
	return func(opts *PlayerOptions) {
		opts.Filter = &filter
	}
}

// WithNoteOnOnly plays note-on messages only.
func WithNoteOnOnly() PlayerOption {
	return WithPlayerEventFilter(MIDIEventFilter{Commands: []MIDICommand{NoteOn}})
}

// WithEventChannel publishes every dispatched event to ch. Events are dropped
// with a warning when ch is full.
func WithEventChannel(ch chan<- PlayerEvent) PlayerOption {
	return func(opts *PlayerOptions) {
		opts.Events = ch
	}
}

// WithSpinThreshold sets how long before each deadline the player switches
// from sleeping to spinning on the clock.
func WithSpinThreshold(d time.Duration) PlayerOption {
	return func(opts *PlayerOptions) {
		opts.SpinThreshold = d
	}
}

// WithStartedCallback registers fn to run when playback starts.
func WithStartedCallback(fn func()) PlayerOption {
	return func(opts *PlayerOptions) {
		opts.OnStarted = fn
	}
}

// WithStoppedCallback registers fn to run when playback ends, whether it ran
// out of events or was stopped.
func WithStoppedCallback(fn func()) PlayerOption {
	return func(opts *PlayerOptions) {
		opts.OnStopped = fn
	}
}
