package message

import (
	"fmt"
	"math"

	"github.com/leandrodaf/midikit/sdk/codec"
)

func channelStatus(command byte, channel int) (byte, error) {
	if channel < 1 || channel > 16 {
		return 0, fmt.Errorf("%w: channel %d not in 1..16", ErrOutOfRange, channel)
	}
	return command | byte(channel-1), nil
}

// Data bytes passed to the channel factories are masked to 7 bits.
func makeChannel(command byte, channel int, data ...byte) (Message, error) {
	status, err := channelStatus(command, channel)
	if err != nil {
		return Message{}, err
	}
	b := make([]byte, 0, 1+len(data))
	b = append(b, status)
	for _, d := range data {
		b = append(b, d&0x7F)
	}
	return wrap(b), nil
}

// MakeNoteOn builds a note-on for channel 1-16.
func MakeNoteOn(channel int, note, velocity byte) (Message, error) {
	return makeChannel(NoteOn, channel, note, velocity)
}

// MakeNoteOff builds a note-off for channel 1-16.
func MakeNoteOff(channel int, note, velocity byte) (Message, error) {
	return makeChannel(NoteOff, channel, note, velocity)
}

func MakeControlChange(channel int, controller, value byte) (Message, error) {
	return makeChannel(ControlChange, channel, controller, value)
}

func MakeProgramChange(channel int, program byte) (Message, error) {
	return makeChannel(ProgramChange, channel, program)
}

func MakePolyPressure(channel int, note, pressure byte) (Message, error) {
	return makeChannel(PolyPressure, channel, note, pressure)
}

// MakeAftertouch builds a channel pressure message.
func MakeAftertouch(channel int, pressure byte) (Message, error) {
	return makeChannel(Aftertouch, channel, pressure)
}

// MakePitchBend builds a pitch bend from a 14-bit value; 0x2000 is centre.
func MakePitchBend(channel int, value uint16) (Message, error) {
	value &= 0x3FFF
	return makeChannel(PitchBend, channel, byte(value&0x7F), byte(value>>7))
}

// MakePitchBendLSBMSB builds a pitch bend from its two 7-bit halves.
func MakePitchBendLSBMSB(channel int, lsb, msb byte) (Message, error) {
	return makeChannel(PitchBend, channel, lsb, msb)
}

// MakeSysEx wraps payload in 0xF0 ... 0xF7. A payload that already starts
// with 0xF0 or ends with 0xF7 is not framed twice.
func MakeSysEx(payload []byte) Message {
	b := make([]byte, 0, len(payload)+2)
	if len(payload) == 0 || payload[0] != SystemExclusive {
		b = append(b, SystemExclusive)
	}
	b = append(b, payload...)
	if b[len(b)-1] != EOX {
		b = append(b, EOX)
	}
	return wrap(b)
}

// MakeSongPosition builds a song position pointer; beats counts sixteenth
// notes and is masked to 14 bits.
func MakeSongPosition(beats uint16) Message {
	beats &= 0x3FFF
	return wrap([]byte{SongPosition, byte(beats & 0x7F), byte(beats >> 7)})
}

func MakeSongSelect(song byte) Message {
	return wrap([]byte{SongSelect, song & 0x7F})
}

func MakeTuneRequest() Message {
	return wrap([]byte{TuneRequest})
}

// MakeQuarterFrame builds an MTC quarter frame. piece is 0-7 and value 0-15.
func MakeQuarterFrame(piece, value byte) (Message, error) {
	if piece > 7 || value > 0x0F {
		return Message{}, fmt.Errorf("%w: quarter frame piece %d value %d", ErrOutOfRange, piece, value)
	}
	return wrap([]byte{TimeCode, piece<<4 | value}), nil
}

// MakeMeta builds a meta-event of any subtype from its payload.
func MakeMeta(subtype MetaType, payload []byte) (Message, error) {
	if n, fixed := subtype.FixedLength(); fixed && n != len(payload) {
		return Message{}, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrOutOfRange, subtype, n, len(payload))
	}
	if len(payload) > codec.MaxVLQ {
		return Message{}, fmt.Errorf("%w: meta payload of %d bytes", ErrOutOfRange, len(payload))
	}
	b := make([]byte, 0, 2+codec.VLQLen(uint32(len(payload)))+len(payload))
	b = append(b, Meta, byte(subtype))
	b, err := codec.AppendVLQ(b, uint32(len(payload)))
	if err != nil {
		return Message{}, err
	}
	return wrap(append(b, payload...)), nil
}

// MakeTextMetaEvent builds one of the text meta-events (0x01-0x0F).
func MakeTextMetaEvent(subtype MetaType, text string) (Message, error) {
	if !subtype.IsText() {
		return Message{}, fmt.Errorf("%w: 0x%02X is not a text meta-event", ErrOutOfRange, byte(subtype))
	}
	return MakeMeta(subtype, []byte(text))
}

// MakeTempoMetaEvent builds a set-tempo meta-event from microseconds per
// quarter note, which must fit in 24 bits.
func MakeTempoMetaEvent(usPerQuarter uint32) (Message, error) {
	if usPerQuarter == 0 || usPerQuarter > 0xFFFFFF {
		return Message{}, fmt.Errorf("%w: tempo %d us per quarter", ErrOutOfRange, usPerQuarter)
	}
	return MakeMeta(MetaTempo, []byte{byte(usPerQuarter >> 16), byte(usPerQuarter >> 8), byte(usPerQuarter)})
}

// MakeTempoBPM builds a set-tempo meta-event from beats per minute.
func MakeTempoBPM(bpm float64) (Message, error) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return Message{}, fmt.Errorf("%w: bpm %v", ErrOutOfRange, bpm)
	}
	us := math.Round(60_000_000 / bpm)
	if us > 0xFFFFFF {
		return Message{}, fmt.Errorf("%w: bpm %v is too slow", ErrOutOfRange, bpm)
	}
	return MakeTempoMetaEvent(uint32(us))
}

// MakeTimeSignatureMetaEvent builds a time signature with 24 MIDI clocks per
// metronome click and 8 thirty-seconds per quarter. denominator must be a
// power of two.
func MakeTimeSignatureMetaEvent(numerator, denominator byte) (Message, error) {
	if numerator == 0 {
		return Message{}, fmt.Errorf("%w: numerator 0", ErrOutOfRange)
	}
	var log2 byte
	for d := 1; d < int(denominator); d *= 2 {
		log2++
	}
	if denominator == 0 || 1<<log2 != int(denominator) {
		return Message{}, fmt.Errorf("%w: denominator %d is not a power of two", ErrOutOfRange, denominator)
	}
	return MakeMeta(MetaTimeSignature, []byte{numerator, log2, 24, 8})
}

// MakeKeySignatureMetaEvent builds a key signature. keyIndex counts sharps
// (positive) or flats (negative) and must be within [-7, 7].
func MakeKeySignatureMetaEvent(keyIndex int, isMinor bool) (Message, error) {
	if keyIndex < -7 || keyIndex > 7 {
		return Message{}, fmt.Errorf("%w: key index %d not in -7..7", ErrOutOfRange, keyIndex)
	}
	var mode byte
	if isMinor {
		mode = 1
	}
	return MakeMeta(MetaKeySignature, []byte{byte(int8(keyIndex)), mode})
}

// MakeEndOfTrackMetaEvent returns FF 2F 00.
func MakeEndOfTrackMetaEvent() Message {
	return wrap([]byte{Meta, byte(MetaEndOfTrack), 0x00})
}
