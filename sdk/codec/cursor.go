// Package codec holds the primitive readers and writers used by the SMF
// reader and writer: big-endian integers and MIDI variable-length quantities.
package codec

import (
	"errors"
	"fmt"
)

// Error definitions for cursor reads.
var (
	ErrTruncatedInput = errors.New("truncated input")
	ErrMalformedVLQ   = errors.New("malformed variable-length quantity")
	ErrVLQOutOfRange  = errors.New("variable-length quantity out of range")
)

// MaxVLQ is the largest value a MIDI variable-length quantity can carry.
const MaxVLQ = 0x0FFFFFFF

// Cursor reads forward over a byte slice. Offsets are absolute to the buffer
// the root cursor was created from, so sub-cursors report positions that
// match the original file.
type Cursor struct {
	buf  []byte
	pos  int
	base int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset is the absolute position of the next byte to be read.
func (c *Cursor) Offset() int { return c.base + c.pos }

// Remaining is the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Done reports whether every byte has been consumed.
func (c *Cursor) Done() bool { return c.pos >= len(c.buf) }

func (c *Cursor) need(n int) error {
	if n < 0 || c.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, n, c.Offset(), c.Remaining())
	}
	return nil
}

// ReadByte reads and returns the next byte.
func (c *Cursor) ReadByte() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// PeekByte returns the next byte without consuming it.
func (c *Cursor) PeekByte() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	return c.buf[c.pos], nil
}

// ReadUint16BE reads a big-endian 16-bit integer.
func (c *Cursor) ReadUint16BE() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	b := c.buf[c.pos : c.pos+2]
	c.pos += 2
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// ReadUint24BE reads a big-endian 24-bit integer, as used by the tempo
// meta-event.
func (c *Cursor) ReadUint24BE() (uint32, error) {
	if err := c.need(3); err != nil {
		return 0, err
	}
	b := c.buf[c.pos : c.pos+3]
	c.pos += 3
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// ReadUint32BE reads a big-endian 32-bit integer.
func (c *Cursor) ReadUint32BE() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	b := c.buf[c.pos : c.pos+4]
	c.pos += 4
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// ReadBytes returns a copy of the next n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.buf[c.pos:c.pos+n])
	c.pos += n
	return out, nil
}

// Sub returns a cursor limited to the next n bytes and advances c past them.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	sub := &Cursor{buf: c.buf[c.pos : c.pos+n], base: c.Offset()}
	c.pos += n
	return sub, nil
}

// ReadVLQ decodes a MIDI variable-length quantity. At most four bytes are
// consumed; a fourth byte with its continuation bit set is rejected.
func (c *Cursor) ReadVLQ() (uint32, error) {
	start := c.Offset()
	if c.Done() {
		return 0, fmt.Errorf("%w: variable-length quantity at offset %d", ErrTruncatedInput, start)
	}
	var v uint32
	for i := 0; i < 4; i++ {
		if c.Done() {
			return 0, fmt.Errorf("%w: unterminated at offset %d", ErrMalformedVLQ, start)
		}
		b := c.buf[c.pos]
		c.pos++
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: longer than 4 bytes at offset %d", ErrMalformedVLQ, start)
}
