package capture

import "github.com/leandrodaf/midikit/sdk/message"

// Splitter cuts a live byte stream into messages. It keeps running status
// and an unfinished sysex between calls, since drivers may deliver either
// across several packets.
type Splitter struct {
	running byte
	sysex   []byte
	partial []byte
}

// Split returns the complete messages in data. Real-time bytes are returned
// immediately even when they interrupt another message.
func (s *Splitter) Split(data []byte) []message.Message {
	var out []message.Message
	emit := func(b []byte) {
		if m, err := message.New(b...); err == nil {
			out = append(out, m)
		}
	}

	for _, b := range data {
		switch {
		case b >= message.TimingClock:
			emit([]byte{b})
			continue
		case s.sysex != nil:
			if b == message.EOX {
				emit(append(s.sysex, b))
				s.sysex = nil
				continue
			}
			if b&0x80 == 0 {
				s.sysex = append(s.sysex, b)
				continue
			}
			// A status byte ends an unterminated sysex.
			emit(s.sysex)
			s.sysex = nil
		}

		switch {
		case b == message.EOX:
			continue
		case b == message.SystemExclusive:
			s.sysex = []byte{b}
			s.partial = nil
			s.running = 0
		case b&0x80 != 0:
			s.partial = []byte{b}
			if b >= 0xF0 {
				s.running = 0
			} else {
				s.running = b
			}
		case s.partial == nil && s.running != 0:
			s.partial = []byte{s.running, b}
		case s.partial != nil:
			s.partial = append(s.partial, b)
		default:
			continue
		}

		if s.partial != nil && len(s.partial) == MessageLength(s.partial[0]) {
			emit(s.partial)
			s.partial = nil
		}
	}
	return out
}

// MessageLength is the full length of a message starting with status. Sysex
// and real-time status bytes report 1.
func MessageLength(status byte) int {
	switch {
	case status < 0xF0:
		switch status & 0xF0 {
		case message.ProgramChange, message.Aftertouch:
			return 2
		}
		return 3
	case status == message.TimeCode, status == message.SongSelect:
		return 2
	case status == message.SongPosition:
		return 3
	}
	return 1
}
