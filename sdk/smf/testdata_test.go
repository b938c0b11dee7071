package smf

// smf10Example is the format 1 example file from the Standard MIDI Files 1.0
// document: a tempo track and three music tracks at 96 ticks per quarter
// note, using running status.
var smf10Example = []byte{
	'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, 4, 0, 0x60,
	// Time signature, tempo, end of track at 384.
	'M', 'T', 'r', 'k', 0, 0, 0, 0x14,
	0x00, 0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08,
	0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20,
	0x83, 0x00, 0xFF, 0x2F, 0x00,
	// Channel 1: program 5, note 0x4C on and off via running status.
	'M', 'T', 'r', 'k', 0, 0, 0, 0x10,
	0x00, 0xC0, 0x05,
	0x81, 0x40, 0x90, 0x4C, 0x20,
	0x81, 0x40, 0x4C, 0x00,
	0x00, 0xFF, 0x2F, 0x00,
	// Channel 2.
	'M', 'T', 'r', 'k', 0, 0, 0, 0x0F,
	0x00, 0xC1, 0x2E,
	0x60, 0x91, 0x43, 0x40,
	0x82, 0x20, 0x43, 0x00,
	0x00, 0xFF, 0x2F, 0x00,
	// Channel 3: a two note chord.
	'M', 'T', 'r', 'k', 0, 0, 0, 0x15,
	0x00, 0xC2, 0x46,
	0x00, 0x92, 0x30, 0x60,
	0x00, 0x3C, 0x60,
	0x83, 0x00, 0x30, 0x00,
	0x00, 0x3C, 0x00,
	0x00, 0xFF, 0x2F, 0x00,
}

// smf10ExampleExpanded is smf10Example as the writer emits it: identical
// except that running status is written out in full.
var smf10ExampleExpanded = []byte{
	'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, 4, 0, 0x60,
	'M', 'T', 'r', 'k', 0, 0, 0, 0x14,
	0x00, 0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08,
	0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20,
	0x83, 0x00, 0xFF, 0x2F, 0x00,
	'M', 'T', 'r', 'k', 0, 0, 0, 0x11,
	0x00, 0xC0, 0x05,
	0x81, 0x40, 0x90, 0x4C, 0x20,
	0x81, 0x40, 0x90, 0x4C, 0x00,
	0x00, 0xFF, 0x2F, 0x00,
	'M', 'T', 'r', 'k', 0, 0, 0, 0x10,
	0x00, 0xC1, 0x2E,
	0x60, 0x91, 0x43, 0x40,
	0x82, 0x20, 0x91, 0x43, 0x00,
	0x00, 0xFF, 0x2F, 0x00,
	'M', 'T', 'r', 'k', 0, 0, 0, 0x18,
	0x00, 0xC2, 0x46,
	0x00, 0x92, 0x30, 0x60,
	0x00, 0x92, 0x3C, 0x60,
	0x83, 0x00, 0x92, 0x30, 0x00,
	0x00, 0x92, 0x3C, 0x00,
	0x00, 0xFF, 0x2F, 0x00,
}

// header builds an MThd chunk.
func header(format, tracks, division uint16) []byte {
	return []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 6,
		byte(format >> 8), byte(format),
		byte(tracks >> 8), byte(tracks),
		byte(division >> 8), byte(division),
	}
}

// trackChunk wraps body in an MTrk chunk.
func trackChunk(body ...byte) []byte {
	n := len(body)
	out := []byte{'M', 'T', 'r', 'k', byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	return append(out, body...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
