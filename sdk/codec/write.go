package codec

import (
	"fmt"
	"io"
)

// VLQLen returns the number of bytes EncodeVLQ would produce for v.
func VLQLen(v uint32) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

// AppendVLQ appends the variable-length encoding of v to dst. Zero encodes as
// a single zero byte. Values above MaxVLQ are rejected.
func AppendVLQ(dst []byte, v uint32) ([]byte, error) {
	if v > MaxVLQ {
		return dst, fmt.Errorf("%w: 0x%08x", ErrVLQOutOfRange, v)
	}
	var groups [4]byte
	n := 0
	for {
		groups[n] = byte(v & 0x7F)
		n++
		v >>= 7
		if v == 0 {
			break
		}
	}
	// Most significant group first, continuation bit on all but the last.
	for i := n - 1; i >= 0; i-- {
		b := groups[i]
		if i != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst, nil
}

// EncodeVLQ returns the variable-length encoding of v.
func EncodeVLQ(v uint32) ([]byte, error) {
	return AppendVLQ(make([]byte, 0, 4), v)
}

// WriteVLQ writes the variable-length encoding of v to w.
func WriteVLQ(w io.Writer, v uint32) error {
	b, err := EncodeVLQ(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// AppendUint16BE appends v in big-endian order.
func AppendUint16BE(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

// AppendUint32BE appends v in big-endian order.
func AppendUint32BE(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteUint16BE writes v to w in big-endian order.
func WriteUint16BE(w io.Writer, v uint16) error {
	_, err := w.Write(AppendUint16BE(nil, v))
	return err
}

// WriteUint32BE writes v to w in big-endian order.
func WriteUint32BE(w io.Writer, v uint32) error {
	_, err := w.Write(AppendUint32BE(nil, v))
	return err
}
