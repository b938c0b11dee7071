package smf

import (
	"errors"
	"fmt"
)

// Error definitions for reading and writing Standard MIDI Files.
var (
	ErrBadHeader            = errors.New("bad chunk header")
	ErrSMPTEUnsupported     = errors.New("SMPTE time division is not supported")
	ErrUnrecognisedStatus   = errors.New("unrecognised status byte")
	ErrInvalidMetaLength    = errors.New("invalid meta-event length")
	ErrTrackIndexOutOfRange = errors.New("track index out of range")
	ErrInvalidDivision      = errors.New("invalid ticks per quarter note")
	ErrTicksNotMonotonic    = errors.New("absolute ticks go backwards")
	ErrEmptyMessage         = errors.New("empty message in track")
)

// ParseError locates a read failure. Track is -1 for failures inside the
// header chunk; Event is the index of the event being decoded within its
// track. Offset is the absolute byte offset where the failing item started.
type ParseError struct {
	Track  int
	Event  int
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Track < 0 {
		return fmt.Sprintf("smf: header at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("smf: track %d event %d at offset %d: %v", e.Track, e.Event, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
