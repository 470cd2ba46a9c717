package stream

import (
	"bytes"
	"io"

	"github.com/meigma/ftsarc/buffer"
	"github.com/meigma/ftsarc/internal/arctype"
	"github.com/meigma/ftsarc/internal/sizing"
)

// ByteReader is the read side shared by Stream and Reader.
type ByteReader interface {
	io.Reader

	// Pos returns the cursor position.
	Pos() uint64
	// SetPos moves the cursor, clamped to the data size.
	SetPos(pos uint64)
	// EOD reports whether the cursor is at the end of the data, or the
	// stream has no backing storage.
	EOD() bool
	// Invalid reports whether the stream has no backing storage.
	Invalid() bool
	// Size returns the total number of bytes.
	Size() uint64
	// SizeTillEnd returns the number of bytes after the cursor.
	SizeTillEnd() uint64
	// Remaining returns the bytes after the cursor without consuming them.
	Remaining() []byte
	// ReadString reads up to and consuming a NUL byte, or to end of data.
	ReadString() string
	// Skip advances the cursor by up to n bytes and returns how far it moved.
	Skip(n uint64) uint64
}

// Stream is a byte buffer with a cursor. The cursor is always within
// [0, Size()].
//
// The zero value is an unbound stream: it reads as empty and the first write
// allocates its buffer.
type Stream struct {
	buf *buffer.Buffer
	pos uint64
}

// New returns an unbound stream.
func New() *Stream {
	return &Stream{}
}

// FromBuffer returns a stream over b with the cursor at 0.
func FromBuffer(b *buffer.Buffer) *Stream {
	return &Stream{buf: b}
}

// FromBytes returns a stream over a copy of p with the cursor at 0.
func FromBytes(p []byte) *Stream {
	return &Stream{buf: buffer.FromBytes(p)}
}

// Buffer returns the backing buffer, or nil for an unbound stream.
func (s *Stream) Buffer() *buffer.Buffer {
	return s.buf
}

// Bytes returns all bytes regardless of cursor position.
func (s *Stream) Bytes() []byte {
	return s.buf.Bytes()
}

// View returns a read-only view of all bytes.
func (s *Stream) View() buffer.View {
	return buffer.NewView(s.buf.Bytes())
}

// Clone returns an independent copy of the stream, cursor included.
func (s *Stream) Clone() *Stream {
	if s.buf == nil {
		return &Stream{}
	}
	return &Stream{buf: s.buf.Clone(), pos: s.pos}
}

// Pos returns the cursor position.
func (s *Stream) Pos() uint64 { return s.pos }

// SetPos moves the cursor, clamped to the data size.
func (s *Stream) SetPos(pos uint64) { s.pos = min(pos, s.Size()) }

// Invalid reports whether the stream has no backing buffer.
func (s *Stream) Invalid() bool { return !s.buf.Valid() }

// EOD reports whether there is nothing left to read.
func (s *Stream) EOD() bool { return s.Invalid() || s.pos >= s.Size() }

// Size returns the total number of bytes.
func (s *Stream) Size() uint64 { return uint64(s.buf.Len()) } //nolint:gosec // Len is non-negative

// SizeTillEnd returns the number of bytes after the cursor.
func (s *Stream) SizeTillEnd() uint64 { return s.Size() - s.pos }

// Remaining returns the bytes after the cursor. The slice aliases the stream
// until its next write.
func (s *Stream) Remaining() []byte {
	if s.Invalid() {
		return nil
	}
	return s.buf.Bytes()[s.pos:]
}

// Fletcher32FromCursor returns the checksum of the bytes after the cursor.
func (s *Stream) Fletcher32FromCursor() uint32 {
	return buffer.Fletcher32(s.Remaining())
}

// Read copies raw bytes from the cursor into p and advances the cursor.
// It returns io.EOF when no bytes remain.
func (s *Stream) Read(p []byte) (int, error) {
	n, err := readRaw(s.Remaining(), p)
	s.pos += uint64(n) //nolint:gosec // n is non-negative
	return n, err
}

// ReadString reads a NUL-terminated string, consuming the terminator. At end
// of data it returns the empty string.
func (s *Stream) ReadString() string {
	str, consumed := readString(s.Remaining())
	s.pos += consumed
	return str
}

// Skip advances the cursor by up to n bytes and returns how far it moved.
func (s *Stream) Skip(n uint64) uint64 {
	n = min(n, s.SizeTillEnd())
	s.pos += n
	return n
}

// Write inserts p at the cursor. It never fails; it exists so a Stream can be
// handed to encoders expecting an io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	s.Insert(p)
	return len(p), nil
}

// Insert inserts p at the cursor, shifting the following bytes right, and
// leaves the cursor after the inserted bytes.
func (s *Stream) Insert(p []byte) {
	if len(p) == 0 {
		return
	}
	// Moving the tail of an in-range cursor cannot fail.
	_ = s.MoveAndResize(s.pos, s.SizeTillEnd(), int64(len(p)))
	copy(s.buf.Bytes()[s.pos:], p)
	s.pos += sizing.Len(p)
}

// Overwrite writes p at the cursor, replacing existing bytes.
//
// If p fits before the end of data it is copied in place. If the cursor is at
// the end this is an Insert. Otherwise the part that fits replaces the tail
// and the rest is inserted at the end.
func (s *Stream) Overwrite(p []byte) {
	if s.EOD() {
		s.Insert(p)
		return
	}
	room := s.SizeTillEnd()
	if sizing.Len(p) <= room {
		copy(s.buf.Bytes()[s.pos:], p)
		s.pos += sizing.Len(p)
		return
	}
	copy(s.buf.Bytes()[s.pos:], p[:room])
	s.pos = s.Size()
	s.Insert(p[room:])
}

// InsertString inserts str followed by a NUL terminator.
func (s *Stream) InsertString(str string) {
	s.Insert(nulTerminated(str))
}

// OverwriteString overwrites with str followed by a NUL terminator.
func (s *Stream) OverwriteString(str string) {
	s.Overwrite(nulTerminated(str))
}

// MoveAndResize relocates size bytes starting at from to from+offset, growing
// the buffer when the destination extends past the end. The part of the
// source range not covered by the destination is zero-filled.
//
// An unbound stream gets a new zero-filled buffer of size from+offset+size.
func (s *Stream) MoveAndResize(from, size uint64, offset int64) error {
	dst, ok := sizing.Offset(from, offset)
	if !ok {
		return arctype.Errorf("move", arctype.KindInvalidParam, "", "destination before start of data")
	}
	end, ok := sizing.AddUint64(dst, size)
	if !ok {
		return arctype.Errorf("move", arctype.KindInvalidParam, "", "destination overflows")
	}
	n, err := sizing.ToInt(end, arctype.ErrInvalidParam)
	if err != nil {
		return err
	}
	if s.Invalid() {
		s.buf = buffer.New(n)
		return nil
	}
	srcEnd, ok := sizing.AddUint64(from, size)
	if !ok || srcEnd > s.Size() {
		return arctype.Errorf("move", arctype.KindInvalidParam, "", "source range out of bounds")
	}
	if end > s.Size() {
		s.buf.Resize(n)
	}
	data := s.buf.Bytes()
	copy(data[dst:end], data[from:srcEnd])
	switch {
	case offset > 0:
		clear(data[from:min(dst, srcEnd)])
	case offset < 0:
		clear(data[max(end, from):srcEnd])
	}
	return nil
}

// Grow appends n zero bytes without moving the cursor.
func (s *Stream) Grow(n uint64) {
	total, ok := sizing.AddUint64(s.Size(), n)
	if !ok {
		return
	}
	size, err := sizing.ToInt(total, arctype.ErrInvalidParam)
	if err != nil {
		return
	}
	if s.Invalid() {
		s.buf = buffer.New(size)
		return
	}
	s.buf.Resize(size)
}

// Shrink drops n trailing bytes. It does nothing if n exceeds the size. A
// cursor left at or past the new end is moved to the new last byte.
func (s *Stream) Shrink(n uint64) {
	if s.Invalid() || n > s.Size() {
		return
	}
	newSize := s.Size() - n
	s.buf.Resize(int(newSize)) //nolint:gosec // bounded by current size
	if s.pos >= newSize {
		s.pos = newSize
		if newSize > 0 {
			s.pos = newSize - 1
		}
	}
}

// Truncate cuts the data to n bytes, keeping the cursor within the new size.
// It does nothing if n is not smaller than the size.
func (s *Stream) Truncate(n uint64) {
	if n >= s.Size() {
		return
	}
	s.buf.Resize(int(n)) //nolint:gosec // bounded by current size
	s.pos = min(s.pos, n)
}

func readRaw(src, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(src) == 0 {
		return 0, io.EOF
	}
	return copy(p, src), nil
}

func readString(src []byte) (string, uint64) {
	i := bytes.IndexByte(src, 0)
	if i < 0 {
		return string(src), sizing.Len(src)
	}
	return string(src[:i]), uint64(i) + 1 //nolint:gosec // i is non-negative
}

func nulTerminated(str string) []byte {
	p := make([]byte, len(str)+1)
	copy(p, str)
	return p
}
