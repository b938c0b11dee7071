package smf

import (
	"fmt"
	"io"
	"os"

	"github.com/leandrodaf/midikit/sdk/codec"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
)

var (
	headerID = [4]byte{'M', 'T', 'h', 'd'}
	trackID  = [4]byte{'M', 'T', 'r', 'k'}
)

const headerLength = 6

// Reader decodes Standard MIDI Files. A Reader holds no per-parse state and
// may be shared.
type Reader struct {
	mode   TickMode
	logger contracts.Logger
}

// NewReader creates a Reader. Without options it stores delta ticks and logs
// nothing.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{mode: DeltaTicks}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = defaultLogger(r.logger)
	return r
}

// Parse decodes a complete file held in buf. Any error aborts the parse and
// no partial file is returned. Errors are *ParseError values wrapping one of
// the package sentinels or a codec error.
func (r *Reader) Parse(buf []byte) (*File, error) {
	c := codec.NewCursor(buf)

	f, declared, err := r.readHeader(c)
	if err != nil {
		return nil, err
	}

	f.Tracks = make([]Track, 0, declared)
	for i := 0; i < int(declared); i++ {
		t, err := r.readTrack(c, i)
		if err != nil {
			return nil, err
		}
		f.Tracks = append(f.Tracks, t)
	}
	if !c.Done() {
		r.logger.Debug("Ignoring trailing bytes after last track",
			r.logger.Field().Int("bytes", c.Remaining()))
	}
	return f, nil
}

// Decode reads all of src and parses it.
func (r *Reader) Decode(src io.Reader) (*File, error) {
	buf, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading MIDI data: %w", err)
	}
	return r.Parse(buf)
}

// ReadFile parses the file at path.
func (r *Reader) ReadFile(path string) (*File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.Parse(buf)
}

// Parse decodes buf with a default Reader.
func Parse(buf []byte) (*File, error) {
	return NewReader().Parse(buf)
}

// ReadFile parses the file at path with a default Reader.
func ReadFile(path string) (*File, error) {
	return NewReader().ReadFile(path)
}

func headerError(offset int, err error) error {
	return &ParseError{Track: -1, Offset: offset, Err: err}
}

func (r *Reader) readHeader(c *codec.Cursor) (*File, uint16, error) {
	id, err := c.ReadBytes(4)
	if err != nil {
		return nil, 0, headerError(0, fmt.Errorf("%w: %w", ErrBadHeader, err))
	}
	if [4]byte(id) != headerID {
		return nil, 0, headerError(0, fmt.Errorf("%w: expected MThd, got %q", ErrBadHeader, id))
	}
	length, err := c.ReadUint32BE()
	if err != nil {
		return nil, 0, headerError(4, fmt.Errorf("%w: %w", ErrBadHeader, err))
	}
	if length != headerLength {
		return nil, 0, headerError(4, fmt.Errorf("%w: header length %d", ErrBadHeader, length))
	}

	var fields [3]uint16
	for i := range fields {
		if fields[i], err = c.ReadUint16BE(); err != nil {
			return nil, 0, headerError(c.Offset(), fmt.Errorf("%w: %w", ErrBadHeader, err))
		}
	}
	format, tracks, division := fields[0], fields[1], fields[2]

	r.logger.Debug("Read MIDI header",
		r.logger.Field().Int("format", int(format)),
		r.logger.Field().Int("tracks", int(tracks)),
		r.logger.Field().Int("division", int(division)))

	if division&0x8000 != 0 {
		fps := -int(int8(division >> 8))
		r.logger.Warn("SMPTE time division found, aborting parse",
			r.logger.Field().Int("framesPerSecond", fps),
			r.logger.Field().Int("ticksPerFrame", int(division&0xFF)))
		return nil, 0, headerError(12, fmt.Errorf("%w: %d fps", ErrSMPTEUnsupported, fps))
	}

	return &File{Format: format, TicksPerQuarterNote: division, TickMode: r.mode}, tracks, nil
}

func (r *Reader) readTrack(c *codec.Cursor, index int) (Track, error) {
	start := c.Offset()
	fail := func(event, offset int, err error) error {
		return &ParseError{Track: index, Event: event, Offset: offset, Err: err}
	}

	id, err := c.ReadBytes(4)
	if err != nil {
		return nil, fail(0, start, err)
	}
	if [4]byte(id) != trackID {
		return nil, fail(0, start, fmt.Errorf("%w: expected MTrk, got %q", ErrBadHeader, id))
	}
	length, err := c.ReadUint32BE()
	if err != nil {
		return nil, fail(0, start+4, err)
	}
	body, err := c.Sub(int(length))
	if err != nil {
		return nil, fail(0, start+4, fmt.Errorf("track length %d: %w", length, err))
	}

	d := trackDecoder{c: body}
	var (
		track Track
		tick  uint32
	)
	for !body.Done() {
		offset := body.Offset()
		delta, msg, err := d.next()
		if err != nil {
			return nil, fail(len(track), offset, err)
		}
		if r.mode == AbsoluteTicks {
			tick += delta
		} else {
			tick = delta
		}
		track = append(track, Event{Tick: tick, Track: index, Message: msg})
	}
	return track, nil
}

// trackDecoder reads the events of one track chunk. running holds the last
// channel status byte and starts empty on every track.
type trackDecoder struct {
	c       *codec.Cursor
	running byte
}

func (d *trackDecoder) next() (uint32, message.Message, error) {
	delta, err := d.c.ReadVLQ()
	if err != nil {
		return 0, message.Message{}, err
	}
	status, err := d.c.ReadByte()
	if err != nil {
		return 0, message.Message{}, err
	}

	var msg message.Message
	switch {
	case status == message.Meta:
		msg, err = d.meta()
	case status == message.SystemExclusive || status == message.EOX:
		msg, err = d.sysex(status)
	case status >= 0x80 && status < 0xF0:
		d.running = status
		msg, err = d.channel(status, nil)
	case status < 0x80:
		if d.running == 0 {
			return 0, message.Message{}, fmt.Errorf("%w: data byte 0x%02X with no running status", ErrUnrecognisedStatus, status)
		}
		msg, err = d.channel(d.running, &status)
	default:
		err = fmt.Errorf("%w: 0x%02X", ErrUnrecognisedStatus, status)
	}
	if err != nil {
		return 0, message.Message{}, err
	}
	return delta, msg, nil
}

func (d *trackDecoder) meta() (message.Message, error) {
	subtype, err := d.c.ReadByte()
	if err != nil {
		return message.Message{}, err
	}
	length, err := d.c.ReadVLQ()
	if err != nil {
		return message.Message{}, err
	}
	t := message.MetaType(subtype)
	if want, fixed := t.FixedLength(); fixed && int(length) != want {
		return message.Message{}, fmt.Errorf("%w: %s declares %d bytes, want %d", ErrInvalidMetaLength, t, length, want)
	}
	payload, err := d.c.ReadBytes(int(length))
	if err != nil {
		return message.Message{}, err
	}
	return message.MakeMeta(t, payload)
}

// sysex keeps the leading status byte followed by the payload; the length
// prefix is dropped and re-derived by the writer.
func (d *trackDecoder) sysex(status byte) (message.Message, error) {
	length, err := d.c.ReadVLQ()
	if err != nil {
		return message.Message{}, err
	}
	payload, err := d.c.ReadBytes(int(length))
	if err != nil {
		return message.Message{}, err
	}
	return message.New(append([]byte{status}, payload...)...)
}

// channel reads a channel voice message. first is the data byte already
// consumed when running status applies.
func (d *trackDecoder) channel(status byte, first *byte) (message.Message, error) {
	n := dataLength(status)
	data := make([]byte, 0, 3)
	data = append(data, status)
	if first != nil {
		data = append(data, *first)
	}
	for len(data) <= n {
		b, err := d.c.ReadByte()
		if err != nil {
			return message.Message{}, err
		}
		if b&0x80 != 0 {
			return message.Message{}, fmt.Errorf("%w: 0x%02X where data byte expected after 0x%02X", ErrUnrecognisedStatus, b, status)
		}
		data = append(data, b)
	}
	return message.New(data...)
}

// dataLength is the number of data bytes that follow a channel status.
func dataLength(status byte) int {
	switch status & 0xF0 {
	case message.ProgramChange, message.Aftertouch:
		return 1
	}
	return 2
}
