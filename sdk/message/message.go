// Package message models a single MIDI message: a channel voice message, a
// system message, or an SMF meta-event, stored as its raw bytes.
package message

import (
	"errors"
	"fmt"
	"strings"
)

// Error definitions for message construction.
var (
	ErrOutOfRange     = errors.New("value out of range")
	ErrEmptyMessage   = errors.New("empty MIDI message")
	ErrNotStatusByte  = errors.New("first byte is not a status byte")
	ErrNotMetaEvent   = errors.New("message is not a meta-event")
	ErrMalformedEvent = errors.New("malformed meta-event")
)

// Message is an immutable MIDI message. Byte 0 is the status byte. Meta-events
// are stored as 0xFF, subtype, VLQ length, payload; sysex messages keep their
// leading 0xF0 or 0xF7 followed by the payload.
//
// The zero value is an empty message and is rejected by the SMF writer.
type Message struct {
	data      []byte
	timestamp float64
}

// New copies data into a Message after checking that it starts with a status
// byte.
func New(data ...byte) (Message, error) {
	if len(data) == 0 {
		return Message{}, ErrEmptyMessage
	}
	if data[0]&0x80 == 0 {
		return Message{}, fmt.Errorf("%w: 0x%02X", ErrNotStatusByte, data[0])
	}
	return Message{data: append([]byte(nil), data...)}, nil
}

// MustNew is New for literals known to be valid. It panics on error.
func MustNew(data ...byte) Message {
	m, err := New(data...)
	if err != nil {
		panic(err)
	}
	return m
}

// wrap takes ownership of data without copying.
func wrap(data []byte) Message {
	return Message{data: data}
}

// Bytes returns a copy of the raw message bytes.
func (m Message) Bytes() []byte {
	return append([]byte(nil), m.data...)
}

// AppendTo appends the raw message bytes to dst.
func (m Message) AppendTo(dst []byte) []byte {
	return append(dst, m.data...)
}

// Size is the number of raw bytes in the message.
func (m Message) Size() int { return len(m.data) }

// IsZero reports whether m holds no bytes.
func (m Message) IsZero() bool { return len(m.data) == 0 }

// At returns byte i, or 0 when i is out of range.
func (m Message) At(i int) byte {
	if i < 0 || i >= len(m.data) {
		return 0
	}
	return m.data[i]
}

// Timestamp is the message time in seconds. Live input stamps an absolute
// time; messages read from a file carry zero.
func (m Message) Timestamp() float64 { return m.timestamp }

// WithTimestamp returns a copy of m stamped with t. The byte payload is
// shared, which is safe because neither value mutates it.
func (m Message) WithTimestamp(t float64) Message {
	m.timestamp = t
	return m
}

// Status returns the status byte.
func (m Message) Status() byte { return m.At(0) }

// Type returns the command nibble for channel messages and the full status
// byte for system, sysex and meta messages.
func (m Message) Type() byte {
	s := m.Status()
	if s >= 0xF0 {
		return s
	}
	return s & 0xF0
}

// IsChannel reports whether m is a channel voice message.
func (m Message) IsChannel() bool {
	s := m.Status()
	return s >= 0x80 && s < 0xF0
}

// Channel returns the 1-indexed channel (1-16), or 0 when m is not a channel
// voice message.
func (m Message) Channel() int {
	if !m.IsChannel() {
		return 0
	}
	return int(m.Status()&0x0F) + 1
}

// UsesChannel reports whether m is a channel message addressed to channel
// (1-16).
func (m Message) UsesChannel(channel int) bool {
	return m.IsChannel() && m.Channel() == channel
}

// Data1 is the first data byte of a channel message.
func (m Message) Data1() byte { return m.At(1) }

// Data2 is the second data byte of a channel message.
func (m Message) Data2() byte { return m.At(2) }

// Note is the key number of a note or poly pressure message.
func (m Message) Note() byte { return m.Data1() }

// Velocity is the velocity of a note message.
func (m Message) Velocity() byte { return m.Data2() }

// IsNoteOn reports a note-on with non-zero velocity.
func (m Message) IsNoteOn() bool {
	return m.Type() == NoteOn && m.Size() >= 3 && m.Velocity() > 0
}

// IsNoteOff reports a note-off, including the note-on with zero velocity
// shorthand.
func (m Message) IsNoteOff() bool {
	switch m.Type() {
	case NoteOff:
		return true
	case NoteOn:
		return m.Size() >= 3 && m.Velocity() == 0
	}
	return false
}

// IsNoteOnOrOff reports whether the command nibble is note-on or note-off.
func (m Message) IsNoteOnOrOff() bool {
	t := m.Type()
	return t == NoteOn || t == NoteOff
}

// IsSysEx reports a system exclusive (0xF0) or escape (0xF7) message.
func (m Message) IsSysEx() bool {
	s := m.Status()
	return s == SystemExclusive || s == EOX
}

// IsMeta reports whether m is an SMF meta-event.
func (m Message) IsMeta() bool {
	return m.Status() == Meta && m.Size() >= 2
}

// MetaSubtype returns the meta-event subtype; ok is false for non-meta
// messages.
func (m Message) MetaSubtype() (MetaType, bool) {
	if !m.IsMeta() {
		return 0, false
	}
	return MetaType(m.data[1]), true
}

// IsEndOfTrack reports the 0xFF 0x2F meta-event.
func (m Message) IsEndOfTrack() bool {
	t, ok := m.MetaSubtype()
	return ok && t == MetaEndOfTrack
}

// IsTempo reports the 0xFF 0x51 meta-event.
func (m Message) IsTempo() bool {
	t, ok := m.MetaSubtype()
	return ok && t == MetaTempo
}

// IsAllNotesOff reports control change 123.
func (m Message) IsAllNotesOff() bool {
	return m.Type() == ControlChange && m.Data1() == 123
}

// IsAllSoundOff reports control change 120.
func (m Message) IsAllSoundOff() bool {
	return m.Type() == ControlChange && m.Data1() == 120
}

// Equal compares the raw bytes of two messages, ignoring timestamps.
func (m Message) Equal(o Message) bool {
	if len(m.data) != len(o.data) {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

func (m Message) String() string {
	if m.IsZero() {
		return "<empty>"
	}
	if m.IsMeta() {
		if ev, err := DecodeMeta(m); err == nil {
			return fmt.Sprintf("%v", ev)
		}
		t, _ := m.MetaSubtype()
		return fmt.Sprintf("%s (%d bytes)", t, m.Size())
	}
	var sb strings.Builder
	sb.WriteString(CommandName(m.Status()))
	sb.WriteString(" [")
	for i, b := range m.data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	sb.WriteByte(']')
	return sb.String()
}
