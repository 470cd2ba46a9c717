package stream

import (
	"github.com/meigma/ftsarc/buffer"
	"github.com/meigma/ftsarc/internal/sizing"
)

// Reader is a read-only cursor over a borrowed view.
type Reader struct {
	view buffer.View
	pos  uint64
}

// NewReader returns a reader over v with the cursor at 0.
func NewReader(v buffer.View) *Reader {
	return &Reader{view: v}
}

// Pos returns the cursor position.
func (r *Reader) Pos() uint64 { return r.pos }

// SetPos moves the cursor, clamped to the data size.
func (r *Reader) SetPos(pos uint64) { r.pos = min(pos, r.Size()) }

// Invalid reports whether the view refers to no storage.
func (r *Reader) Invalid() bool { return !r.view.Valid() }

// EOD reports whether there is nothing left to read.
func (r *Reader) EOD() bool { return r.Invalid() || r.pos >= r.Size() }

// Size returns the total number of bytes.
func (r *Reader) Size() uint64 { return uint64(r.view.Len()) } //nolint:gosec // Len is non-negative

// SizeTillEnd returns the number of bytes after the cursor.
func (r *Reader) SizeTillEnd() uint64 { return r.Size() - r.pos }

// Remaining returns the bytes after the cursor.
func (r *Reader) Remaining() []byte {
	return r.view.Bytes()[r.pos:]
}

// Fletcher32FromCursor returns the checksum of the bytes after the cursor.
func (r *Reader) Fletcher32FromCursor() uint32 {
	return buffer.Fletcher32(r.Remaining())
}

// Read copies raw bytes from the cursor into p and advances the cursor.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := readRaw(r.Remaining(), p)
	r.pos += uint64(n) //nolint:gosec // n is non-negative
	return n, err
}

// ReadString reads a NUL-terminated string, consuming the terminator.
func (r *Reader) ReadString() string {
	str, consumed := readString(r.Remaining())
	r.pos += consumed
	return str
}

// Skip advances the cursor by up to n bytes and returns how far it moved.
func (r *Reader) Skip(n uint64) uint64 {
	n = min(n, r.SizeTillEnd())
	r.pos += n
	return n
}

// Next returns the next n bytes as a sub-slice and advances the cursor. If
// fewer than n bytes remain it returns what is left.
func (r *Reader) Next(n uint64) []byte {
	rem := r.Remaining()
	n = min(n, sizing.Len(rem))
	r.pos += n
	return rem[:n]
}
