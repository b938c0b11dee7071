package message

import (
	"fmt"

	"github.com/leandrodaf/midikit/sdk/codec"
)

// MetaEvent is the decoded form of a meta-event message. Use a type switch
// over the concrete variants below.
type MetaEvent interface {
	MetaType() MetaType
	Message() (Message, error)
}

type (
	SequenceNumber struct{ Number uint16 }

	// Text covers every text-family meta-event (0x01-0x0F).
	Text struct {
		Type MetaType
		Text string
	}

	ChannelPrefix struct{ Channel byte }

	Port struct{ Port byte }

	EndOfTrack struct{}

	// Tempo is microseconds per quarter note.
	Tempo struct{ MicrosecondsPerQuarter uint32 }

	SMPTEOffset struct {
		Hours, Minutes, Seconds, Frames, FractionalFrames byte
	}

	// TimeSignature keeps the denominator as the power of two stored in the
	// file.
	TimeSignature struct {
		Numerator         byte
		DenominatorPower  byte
		ClocksPerClick    byte
		ThirtySecondNotes byte
	}

	KeySignature struct {
		Key   int8
		Minor bool
	}

	SequencerSpecific struct{ Data []byte }

	// UnknownMeta keeps any subtype this package does not model.
	UnknownMeta struct {
		Type MetaType
		Data []byte
	}
)

func (SequenceNumber) MetaType() MetaType    { return MetaSequenceNumber }
func (t Text) MetaType() MetaType            { return t.Type }
func (ChannelPrefix) MetaType() MetaType     { return MetaChannelPrefix }
func (Port) MetaType() MetaType              { return MetaPort }
func (EndOfTrack) MetaType() MetaType        { return MetaEndOfTrack }
func (Tempo) MetaType() MetaType             { return MetaTempo }
func (SMPTEOffset) MetaType() MetaType       { return MetaSMPTEOffset }
func (TimeSignature) MetaType() MetaType     { return MetaTimeSignature }
func (KeySignature) MetaType() MetaType      { return MetaKeySignature }
func (SequencerSpecific) MetaType() MetaType { return MetaSequencerSpecific }
func (u UnknownMeta) MetaType() MetaType     { return u.Type }

func (s SequenceNumber) Message() (Message, error) {
	return MakeMeta(MetaSequenceNumber, []byte{byte(s.Number >> 8), byte(s.Number)})
}

func (t Text) Message() (Message, error) { return MakeTextMetaEvent(t.Type, t.Text) }

func (c ChannelPrefix) Message() (Message, error) {
	if c.Channel > 15 {
		return Message{}, fmt.Errorf("%w: channel prefix %d", ErrOutOfRange, c.Channel)
	}
	return MakeMeta(MetaChannelPrefix, []byte{c.Channel})
}

func (p Port) Message() (Message, error) { return MakeMeta(MetaPort, []byte{p.Port}) }

func (EndOfTrack) Message() (Message, error) { return MakeEndOfTrackMetaEvent(), nil }

func (t Tempo) Message() (Message, error) { return MakeTempoMetaEvent(t.MicrosecondsPerQuarter) }

func (s SMPTEOffset) Message() (Message, error) {
	return MakeMeta(MetaSMPTEOffset, []byte{s.Hours, s.Minutes, s.Seconds, s.Frames, s.FractionalFrames})
}

func (t TimeSignature) Message() (Message, error) {
	return MakeMeta(MetaTimeSignature, []byte{t.Numerator, t.DenominatorPower, t.ClocksPerClick, t.ThirtySecondNotes})
}

func (k KeySignature) Message() (Message, error) {
	return MakeKeySignatureMetaEvent(int(k.Key), k.Minor)
}

func (s SequencerSpecific) Message() (Message, error) {
	return MakeMeta(MetaSequencerSpecific, s.Data)
}

func (u UnknownMeta) Message() (Message, error) { return MakeMeta(u.Type, u.Data) }

// BPM converts the tempo to beats per minute.
func (t Tempo) BPM() float64 {
	if t.MicrosecondsPerQuarter == 0 {
		return 0
	}
	return 60_000_000 / float64(t.MicrosecondsPerQuarter)
}

// Denominator returns the note value of one beat (4 for a quarter).
func (t TimeSignature) Denominator() int { return 1 << t.DenominatorPower }

func (s SequenceNumber) String() string { return fmt.Sprintf("Sequence Number: %d", s.Number) }
func (t Text) String() string           { return fmt.Sprintf("%s: %q", t.Type, t.Text) }
func (c ChannelPrefix) String() string  { return fmt.Sprintf("Channel Prefix: %d", c.Channel) }
func (p Port) String() string           { return fmt.Sprintf("Port: %d", p.Port) }
func (EndOfTrack) String() string       { return "End Of Track" }

func (t Tempo) String() string {
	return fmt.Sprintf("Tempo: %d us/quarter (%.2f bpm)", t.MicrosecondsPerQuarter, t.BPM())
}

func (s SMPTEOffset) String() string {
	return fmt.Sprintf("SMPTE Offset: %02d:%02d:%02d:%02d.%02d", s.Hours, s.Minutes, s.Seconds, s.Frames, s.FractionalFrames)
}

func (t TimeSignature) String() string {
	return fmt.Sprintf("Time Signature: %d/%d", t.Numerator, t.Denominator())
}

func (k KeySignature) String() string {
	mode := "major"
	if k.Minor {
		mode = "minor"
	}
	return fmt.Sprintf("Key Signature: %d %s", k.Key, mode)
}

func (s SequencerSpecific) String() string {
	return fmt.Sprintf("Sequencer Specific: % X", s.Data)
}

func (u UnknownMeta) String() string { return fmt.Sprintf("%s: % X", u.Type, u.Data) }

// MetaPayload splits a meta-event message into its subtype and payload.
func MetaPayload(m Message) (MetaType, []byte, error) {
	if !m.IsMeta() {
		return 0, nil, ErrNotMetaEvent
	}
	c := codec.NewCursor(m.data[2:])
	n, err := c.ReadVLQ()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if int(n) != c.Remaining() {
		return 0, nil, fmt.Errorf("%w: declared length %d, have %d", ErrMalformedEvent, n, c.Remaining())
	}
	payload, _ := c.ReadBytes(int(n))
	return MetaType(m.data[1]), payload, nil
}

// DecodeMeta decodes a meta-event message into its typed variant. Fixed-length
// subtypes with the wrong payload size are rejected.
func DecodeMeta(m Message) (MetaEvent, error) {
	t, p, err := MetaPayload(m)
	if err != nil {
		return nil, err
	}
	if n, fixed := t.FixedLength(); fixed && n != len(p) {
		return nil, fmt.Errorf("%w: %s with %d byte payload", ErrMalformedEvent, t, len(p))
	}
	switch t {
	case MetaSequenceNumber:
		return SequenceNumber{Number: uint16(p[0])<<8 | uint16(p[1])}, nil
	case MetaChannelPrefix:
		return ChannelPrefix{Channel: p[0]}, nil
	case MetaPort:
		return Port{Port: p[0]}, nil
	case MetaEndOfTrack:
		return EndOfTrack{}, nil
	case MetaTempo:
		return Tempo{MicrosecondsPerQuarter: uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])}, nil
	case MetaSMPTEOffset:
		return SMPTEOffset{Hours: p[0], Minutes: p[1], Seconds: p[2], Frames: p[3], FractionalFrames: p[4]}, nil
	case MetaTimeSignature:
		return TimeSignature{Numerator: p[0], DenominatorPower: p[1], ClocksPerClick: p[2], ThirtySecondNotes: p[3]}, nil
	case MetaKeySignature:
		return KeySignature{Key: int8(p[0]), Minor: p[1] != 0}, nil
	case MetaSequencerSpecific:
		return SequencerSpecific{Data: p}, nil
	}
	if t.IsText() {
		return Text{Type: t, Text: string(p)}, nil
	}
	return UnknownMeta{Type: t, Data: p}, nil
}
