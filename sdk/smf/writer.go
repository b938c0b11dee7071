package smf

import (
	"fmt"
	"io"
	"os"

	"github.com/leandrodaf/midikit/sdk/codec"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
)

var endOfTrack = []byte{0x00, message.Meta, byte(message.MetaEndOfTrack), 0x00}

// Writer encodes Files as Standard MIDI Files.
type Writer struct {
	ticksPerQuarterNote uint16
	logger              contracts.Logger
}

// NewWriter creates a Writer. By default the file's own resolution is used.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = defaultLogger(w.logger)
	return w
}

// Encode returns the SMF bytes for f.
//
// The header format is 0 for a single track and 1 otherwise. Absolute-tick
// files are converted to deltas first. Channel messages are written in full,
// without running status. Every track is terminated by exactly one
// end-of-track event: end-of-track events before the last event of a track
// are dropped (their delta carries to the next event) and one is appended
// at delta 0 when the track does not already end with one.
func (w *Writer) Encode(f *File) ([]byte, error) {
	tpqn := f.TicksPerQuarterNote
	if w.ticksPerQuarterNote != 0 {
		tpqn = w.ticksPerQuarterNote
	}
	if tpqn == 0 || tpqn > 0x7FFF {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDivision, tpqn)
	}
	if len(f.Tracks) > 0xFFFF {
		return nil, fmt.Errorf("%w: %d tracks do not fit the header", ErrTrackIndexOutOfRange, len(f.Tracks))
	}

	src := f
	if f.TickMode != DeltaTicks {
		var err error
		if src, err = f.WithTickMode(DeltaTicks); err != nil {
			return nil, err
		}
	}

	out := make([]byte, 0, 14+64*len(src.Tracks))
	out = append(out, headerID[:]...)
	out = codec.AppendUint32BE(out, headerLength)
	out = codec.AppendUint16BE(out, src.WriteFormat())
	out = codec.AppendUint16BE(out, uint16(len(src.Tracks)))
	out = codec.AppendUint16BE(out, tpqn)

	for i, t := range src.Tracks {
		body, err := encodeTrack(t)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		out = append(out, trackID[:]...)
		out = codec.AppendUint32BE(out, uint32(len(body)))
		out = append(out, body...)

		w.logger.Debug("Encoded track",
			w.logger.Field().Int("track", i),
			w.logger.Field().Int("events", len(t)),
			w.logger.Field().Int("bytes", len(body)))
	}
	return out, nil
}

// Write encodes f and writes it to dst.
func (w *Writer) Write(dst io.Writer, f *File) error {
	b, err := w.Encode(f)
	if err != nil {
		return err
	}
	_, err = dst.Write(b)
	return err
}

// WriteFile encodes f into the file at path, replacing it.
func (w *Writer) WriteFile(path string, f *File) error {
	b, err := w.Encode(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Encode encodes f with a default Writer.
func Encode(f *File) ([]byte, error) {
	return NewWriter().Encode(f)
}

// WriteFile writes f to path with a default Writer.
func WriteFile(path string, f *File) error {
	return NewWriter().WriteFile(path, f)
}

func encodeTrack(t Track) ([]byte, error) {
	var (
		buf   []byte
		carry uint32
		ended bool
		err   error
	)
	for i, ev := range t {
		m := ev.Message
		if m.IsZero() {
			return nil, fmt.Errorf("event %d: %w", i, ErrEmptyMessage)
		}
		delta := carry + ev.Tick
		if m.IsEndOfTrack() && i != len(t)-1 {
			carry = delta
			continue
		}
		carry = 0

		if buf, err = codec.AppendVLQ(buf, delta); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		switch status := m.Status(); {
		case m.IsEndOfTrack():
			buf = append(buf, endOfTrack[1:]...)
			ended = true
		case m.IsSysEx():
			buf = append(buf, status)
			if buf, err = codec.AppendVLQ(buf, uint32(m.Size()-1)); err != nil {
				return nil, fmt.Errorf("event %d: %w", i, err)
			}
			buf = append(buf, m.Bytes()[1:]...)
		case status >= 0xF0 && status != message.Meta:
			return nil, fmt.Errorf("event %d: %w: 0x%02X cannot be stored in a track", i, ErrUnrecognisedStatus, status)
		default:
			buf = m.AppendTo(buf)
		}
	}
	if !ended {
		buf = append(buf, endOfTrack...)
	}
	return buf, nil
}
