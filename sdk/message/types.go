package message

import "fmt"

// Channel voice commands (high nibble of the status byte).
const (
	NoteOff       byte = 0x80
	NoteOn        byte = 0x90
	PolyPressure  byte = 0xA0
	ControlChange byte = 0xB0
	ProgramChange byte = 0xC0
	Aftertouch    byte = 0xD0
	PitchBend     byte = 0xE0
)

// System common and real-time status bytes.
const (
	SystemExclusive byte = 0xF0
	TimeCode        byte = 0xF1
	SongPosition    byte = 0xF2
	SongSelect      byte = 0xF3
	TuneRequest     byte = 0xF6
	EOX             byte = 0xF7
	TimingClock     byte = 0xF8
	Start           byte = 0xFA
	Continue        byte = 0xFB
	Stop            byte = 0xFC
	ActiveSensing   byte = 0xFE

	// Meta shares 0xFF with system reset; inside an SMF it always introduces a
	// meta-event.
	Meta byte = 0xFF
)

// MetaType is the subtype byte that follows 0xFF in a meta-event.
type MetaType byte

const (
	MetaSequenceNumber    MetaType = 0x00
	MetaText              MetaType = 0x01
	MetaCopyright         MetaType = 0x02
	MetaTrackName         MetaType = 0x03
	MetaInstrumentName    MetaType = 0x04
	MetaLyric             MetaType = 0x05
	MetaMarker            MetaType = 0x06
	MetaCuePoint          MetaType = 0x07
	MetaPatchName         MetaType = 0x08
	MetaDeviceName        MetaType = 0x09
	MetaChannelPrefix     MetaType = 0x20
	MetaPort              MetaType = 0x21
	MetaEndOfTrack        MetaType = 0x2F
	MetaTempo             MetaType = 0x51
	MetaSMPTEOffset       MetaType = 0x54
	MetaTimeSignature     MetaType = 0x58
	MetaKeySignature      MetaType = 0x59
	MetaSequencerSpecific MetaType = 0x7F
)

// IsText reports whether t belongs to the text family (0x01-0x0F), whose
// payload is free-form text of any length.
func (t MetaType) IsText() bool {
	return t >= 0x01 && t <= 0x0F
}

// FixedLength returns the payload length the SMF format requires for t, and
// false when t accepts any length.
func (t MetaType) FixedLength() (int, bool) {
	switch t {
	case MetaSequenceNumber:
		return 2, true
	case MetaChannelPrefix, MetaPort:
		return 1, true
	case MetaEndOfTrack:
		return 0, true
	case MetaTempo:
		return 3, true
	case MetaSMPTEOffset:
		return 5, true
	case MetaTimeSignature:
		return 4, true
	case MetaKeySignature:
		return 2, true
	}
	return 0, false
}

func (t MetaType) String() string {
	switch t {
	case MetaSequenceNumber:
		return "Sequence Number"
	case MetaText:
		return "Text"
	case MetaCopyright:
		return "Copyright"
	case MetaTrackName:
		return "Track Name"
	case MetaInstrumentName:
		return "Instrument Name"
	case MetaLyric:
		return "Lyric"
	case MetaMarker:
		return "Marker"
	case MetaCuePoint:
		return "Cue Point"
	case MetaPatchName:
		return "Patch Name"
	case MetaDeviceName:
		return "Device Name"
	case MetaChannelPrefix:
		return "Channel Prefix"
	case MetaPort:
		return "Port"
	case MetaEndOfTrack:
		return "End Of Track"
	case MetaTempo:
		return "Tempo"
	case MetaSMPTEOffset:
		return "SMPTE Offset"
	case MetaTimeSignature:
		return "Time Signature"
	case MetaKeySignature:
		return "Key Signature"
	case MetaSequencerSpecific:
		return "Sequencer Specific"
	}
	if t.IsText() {
		return fmt.Sprintf("Text (0x%02X)", byte(t))
	}
	return fmt.Sprintf("Unknown Meta (0x%02X)", byte(t))
}

var commandNames = [...]string{
	0x0: "Note Off",
	0x1: "Note On",
	0x2: "Poly Pressure",
	0x3: "Control Change",
	0x4: "Program Change",
	0x5: "Channel Pressure",
	0x6: "Pitch Bend",
}

var systemNames = [...]string{
	"System Exclusive",
	"Time Code",
	"Song Position Pointer",
	"Song Select",
	"Reserved 1",
	"Reserved 2",
	"Tune Request",
	"EOX",
	"Time Clock",
	"Reserved 3",
	"Start",
	"Continue",
	"Stop",
	"Reserved 4",
	"Active Sensing",
	"System Reset",
}

// CommandName describes a status byte, including the 1-indexed channel for
// channel voice messages. Data bytes yield "Unknown".
func CommandName(status byte) string {
	switch {
	case status < 0x80:
		return "Unknown"
	case status >= 0xF0:
		return systemNames[status-0xF0]
	}
	return fmt.Sprintf("%s: %d", commandNames[(status>>4)-0x8], status&0x0F+1)
}
