// Package smf reads and writes Standard MIDI Files and holds the in-memory
// track model shared by the reader, the writer and the player.
package smf

import (
	"fmt"

	"github.com/leandrodaf/midikit/sdk/message"
)

// DefaultTicksPerQuarterNote is the resolution given to files built with
// NewFile.
const DefaultTicksPerQuarterNote = 480

// TickMode says how Event.Tick is interpreted.
type TickMode int

const (
	// DeltaTicks counts ticks since the previous event of the same track, as
	// stored on disk.
	DeltaTicks TickMode = iota
	// AbsoluteTicks counts ticks since the start of the track.
	AbsoluteTicks
)

func (m TickMode) String() string {
	switch m {
	case DeltaTicks:
		return "delta"
	case AbsoluteTicks:
		return "absolute"
	}
	return fmt.Sprintf("TickMode(%d)", int(m))
}

// Event is one timed message in a track.
type Event struct {
	Tick    uint32
	Track   int
	Message message.Message
}

// Track is an ordered list of events. Slice order is chronological order and
// nothing in this module reorders it.
type Track []Event

// File is a parsed or programmatically built MIDI sequence.
type File struct {
	// Format is the header format read from disk. The writer derives its own
	// format from the track count and ignores this field.
	Format              uint16
	TicksPerQuarterNote uint16
	TickMode            TickMode
	Tracks              []Track
}

// FileOption configures NewFile.
type FileOption func(*File)

// WithResolution sets the ticks per quarter note of a new file.
func WithResolution(ticksPerQuarterNote uint16) FileOption {
	return func(f *File) {
		f.TicksPerQuarterNote = ticksPerQuarterNote
	}
}

// WithEventTicks sets how AddEvent interprets its tick argument.
func WithEventTicks(mode TickMode) FileOption {
	return func(f *File) {
		f.TickMode = mode
	}
}

// NewFile returns an empty file with delta ticks at
// DefaultTicksPerQuarterNote.
func NewFile(opts ...FileOption) *File {
	f := &File{TicksPerQuarterNote: DefaultTicksPerQuarterNote, TickMode: DeltaTicks}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// AddTrack appends an empty track and returns its index.
func (f *File) AddTrack() int {
	f.Tracks = append(f.Tracks, nil)
	return len(f.Tracks) - 1
}

// AddEvent appends m to the given track. tick is read according to the
// file's TickMode.
func (f *File) AddEvent(track int, tick uint32, m message.Message) error {
	if track < 0 || track >= len(f.Tracks) {
		return fmt.Errorf("%w: %d (have %d tracks)", ErrTrackIndexOutOfRange, track, len(f.Tracks))
	}
	f.Tracks[track] = append(f.Tracks[track], Event{Tick: tick, Track: track, Message: m})
	return nil
}

// NumTracks returns the number of tracks.
func (f *File) NumTracks() int { return len(f.Tracks) }

// WriteFormat is the header format the writer emits: 0 for a single track,
// 1 otherwise.
func (f *File) WriteFormat() uint16 {
	if len(f.Tracks) == 1 {
		return 0
	}
	return 1
}

// EndTick returns the length in ticks of the longest track.
func (f *File) EndTick() uint32 {
	var end uint32
	for _, t := range f.Tracks {
		var tick uint32
		for _, ev := range t {
			if f.TickMode == AbsoluteTicks {
				tick = max(tick, ev.Tick)
			} else {
				tick += ev.Tick
			}
		}
		end = max(end, tick)
	}
	return end
}

// WithTickMode returns a copy of f whose events use mode. Converting to delta
// ticks fails with ErrTicksNotMonotonic if a track goes backwards in time.
// Messages are shared with f; they are immutable.
func (f *File) WithTickMode(mode TickMode) (*File, error) {
	out := &File{
		Format:              f.Format,
		TicksPerQuarterNote: f.TicksPerQuarterNote,
		TickMode:            mode,
		Tracks:              make([]Track, len(f.Tracks)),
	}
	for i, t := range f.Tracks {
		conv, err := convertTicks(t, f.TickMode, mode)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		out.Tracks[i] = conv
	}
	return out, nil
}

func convertTicks(t Track, from, to TickMode) (Track, error) {
	out := make(Track, len(t))
	copy(out, t)
	if from == to {
		return out, nil
	}
	var prev uint32
	for i := range out {
		switch to {
		case AbsoluteTicks:
			prev += out[i].Tick
			out[i].Tick = prev
		case DeltaTicks:
			abs := out[i].Tick
			if abs < prev {
				return nil, fmt.Errorf("%w: event %d at tick %d after tick %d", ErrTicksNotMonotonic, i, abs, prev)
			}
			out[i].Tick = abs - prev
			prev = abs
		}
	}
	return out, nil
}
