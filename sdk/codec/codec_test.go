package codec

import (
	"bytes"
	"errors"
	"testing"
)
// Values and encodings from the variable-length quantity table in the
// Standard MIDI Files 1.0 document.
// specification.
var vlqCases = []struct {
	value   uint32
	encoded []byte
}{
	{0x00000000, []byte{0x00}},
	{0x00000040, []byte{0x40}},
	{0x0000007F, []byte{0x7F}},
	{0x00000080, []byte{0x81, 0x00}},
	{0x00002000, []byte{0xC0, 0x00}},
	{0x00003FFF, []byte{0xFF, 0x7F}},
	{0x00004000, []byte{0x81, 0x80, 0x00}},
	{0x00100000, []byte{0xC0, 0x80, 0x00}},
	{0x001FFFFF, []byte{0xFF, 0xFF, 0x7F}},
	{0x00200000, []byte{0x81, 0x80, 0x80, 0x00}},
	{0x08000000, []byte{0xC0, 0x80, 0x80, 0x00}},
	{0x0FFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
}

func TestEncodeVLQ(t *testing.T) {
	for _, tc := range vlqCases {
		got, err := EncodeVLQ(tc.value)
		if err != nil {
			t.Fatalf("EncodeVLQ(0x%x): %v", tc.value, err)
		}
		if !bytes.Equal(got, tc.encoded) {
			t.Errorf("EncodeVLQ(0x%x) = % x, want % x", tc.value, got, tc.encoded)
		}
		if n := VLQLen(tc.value); n != len(tc.encoded) {
			t.Errorf("VLQLen(0x%x) = %d, want %d", tc.value, n, len(tc.encoded))
		}
	}
}

func TestEncodeVLQRejectsOutOfRange(t *testing.T) {
	if _, err := EncodeVLQ(0x10000000); !errors.Is(err, ErrVLQOutOfRange) {
		t.Fatalf("expected ErrVLQOutOfRange, got %v", err)
	}
}

func TestReadVLQ(t *testing.T) {
	var all []byte
	for _, tc := range vlqCases {
		all = append(all, tc.encoded...)
	}
	c := NewCursor(all)
	for _, tc := range vlqCases {
		v, err := c.ReadVLQ()
		if err != nil {
			t.Fatalf("ReadVLQ for 0x%x: %v", tc.value, err)
		}
		if v != tc.value {
			t.Fatalf("ReadVLQ = 0x%x, want 0x%x", v, tc.value)
		}
	}
	if !c.Done() {
		t.Fatalf("cursor has %d bytes left", c.Remaining())
	}
}

func TestReadVLQErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncatedInput},
		{"unterminated", []byte{0x81, 0x80}, ErrMalformedVLQ},
		{"five bytes", []byte{0xFF, 0xFF, 0xFF, 0x80, 0x01}, ErrMalformedVLQ},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCursor(tc.data).ReadVLQ()
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestVLQRoundTrip(t *testing.T) {
	// Walk the legal range with a stride that hits every group boundary.
	for v := uint32(0); v <= MaxVLQ; v = v*3 + 1 {
		enc, err := EncodeVLQ(v)
		if err != nil {
			t.Fatalf("EncodeVLQ(%d): %v", v, err)
		}
		got, err := NewCursor(enc).ReadVLQ()
		if err != nil || got != v {
			t.Fatalf("round trip %d: got %d, %v", v, got, err)
		}
	}
	for _, v := range []uint32{127, 128, 16383, 16384, 2097151, 2097152, MaxVLQ} {
		enc, _ := EncodeVLQ(v)
		if got, _ := NewCursor(enc).ReadVLQ(); got != v {
			t.Fatalf("round trip %d: got %d", v, got)
		}
	}
}

func TestFixedReads(t *testing.T) {
	c := NewCursor([]byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0, 0x01})
	u16, err := c.ReadUint16BE()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadUint16BE = 0x%x, %v", u16, err)
	}
	u24, err := c.ReadUint24BE()
	if err != nil || u24 != 0x56789A {
		t.Fatalf("ReadUint24BE = 0x%x, %v", u24, err)
	}
	if off := c.Offset(); off != 5 {
		t.Fatalf("Offset = %d, want 5", off)
	}
	u32, err := c.ReadUint32BE()
	if err != nil || u32 != 0xBCDEF001 {
		t.Fatalf("ReadUint32BE = 0x%x, %v", u32, err)
	}
	if _, err := c.ReadUint16BE(); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("expected ErrTruncatedInput, got %v", err)
	}
}

func TestSubCursorOffsets(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4, 5, 6})
	if _, err := c.ReadByte(); err != nil {
		t.Fatal(err)
	}
	sub, err := c.Sub(3)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Offset() != 1 || sub.Remaining() != 3 {
		t.Fatalf("sub offset %d remaining %d", sub.Offset(), sub.Remaining())
	}
	if c.Offset() != 4 {
		t.Fatalf("parent offset %d, want 4", c.Offset())
	}
	if _, err := sub.ReadBytes(4); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("expected truncation inside sub cursor, got %v", err)
	}
	if _, err := c.Sub(3); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("expected truncation for oversized sub, got %v", err)
	}
}

func TestBigEndianWriters(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUint16BE(&buf, 0x0102); err != nil {
		t.Fatal(err)
	}
	if err := WriteUint32BE(&buf, 0x03040506); err != nil {
		t.Fatal(err)
	}
	if err := WriteVLQ(&buf, 128); err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 0x81, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}
