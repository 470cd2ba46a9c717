package stream

import (
	"encoding/binary"
)

// Number is a fixed-size numeric type with a defined wire encoding.
type Number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// sizeOf returns the encoded width of T.
func sizeOf[T Number]() int {
	var zero T
	return binary.Size(zero)
}

// Read decodes up to len(dst) little-endian values from r and returns how many
// whole values were read. A trailing partial value is left unread.
func Read[T Number](r ByteReader, dst []T) int {
	width := sizeOf[T]()
	n := min(len(dst), len(r.Remaining())/width)
	if n == 0 {
		return 0
	}
	if _, err := binary.Decode(r.Remaining()[:n*width], binary.LittleEndian, dst[:n]); err != nil {
		return 0
	}
	r.Skip(uint64(n * width)) //nolint:gosec // non-negative
	return n
}

// ReadValue decodes a single little-endian value. It reports false, without
// moving the cursor, if fewer bytes than the value's width remain.
func ReadValue[T Number](r ByteReader) (T, bool) {
	var v [1]T
	if Read(r, v[:]) != 1 {
		return v[0], false
	}
	return v[0], true
}

// Insert encodes vals little-endian and inserts them at the cursor.
func Insert[T Number](s *Stream, vals ...T) {
	s.Insert(encode(vals))
}

// Overwrite encodes vals little-endian and overwrites at the cursor.
func Overwrite[T Number](s *Stream, vals ...T) {
	s.Overwrite(encode(vals))
}

func encode[T Number](vals []T) []byte {
	p := make([]byte, 0, len(vals)*sizeOf[T]())
	p, _ = binary.Append(p, binary.LittleEndian, vals)
	return p
}
