// Package buffer provides the owned and borrowed byte containers used by
// streams and archives, and the Fletcher-32 checksum computed over them.
package buffer

// Buffer is a growable, owned byte container.
//
// The zero value holds no bytes and is invalid until it is resized or
// appended to.
type Buffer struct {
	data []byte
}

// New returns a zero-filled buffer of the given size.
func New(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// FromBytes returns a buffer holding a copy of p.
func FromBytes(p []byte) *Buffer {
	data := make([]byte, len(p))
	copy(data, p)
	return &Buffer{data: data}
}

// Valid reports whether the buffer has backing storage.
func (b *Buffer) Valid() bool {
	return b != nil && b.data != nil
}

// Len returns the number of bytes held.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Bytes returns the backing bytes. The slice aliases the buffer until the
// next resize.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Resize sets the size to n. Shrinking truncates; growing appends zero bytes.
func (b *Buffer) Resize(n int) {
	switch {
	case b.data != nil && n == len(b.data):
		return
	case n <= len(b.data):
		b.data = b.data[:n:n]
		if b.data == nil {
			b.data = []byte{}
		}
	case n <= cap(b.data):
		old := len(b.data)
		b.data = b.data[:n]
		clear(b.data[old:])
	default:
		grown := make([]byte, n, growCap(cap(b.data), n))
		copy(grown, b.data)
		b.data = grown
	}
}

// Grow appends n zero bytes.
func (b *Buffer) Grow(n int) {
	b.Resize(len(b.data) + n)
}

// Append copies p to the end of the buffer.
func (b *Buffer) Append(p []byte) {
	old := len(b.data)
	b.Resize(old + len(p))
	copy(b.data[old:], p)
}

// Clone returns an independent copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	if !b.Valid() {
		return &Buffer{}
	}
	return FromBytes(b.data)
}

// Reset releases the backing storage, leaving the buffer invalid.
func (b *Buffer) Reset() {
	b.data = nil
}

// View returns a read-only view of the current contents.
func (b *Buffer) View() View {
	return View{data: b.Bytes()}
}

// Fletcher32 returns the checksum of the whole buffer.
func (b *Buffer) Fletcher32() uint32 {
	return Fletcher32(b.Bytes())
}

// growCap doubles capacity until it covers need, so repeated inserts stay
// amortized.
func growCap(current, need int) int {
	c := max(current, 64)
	for c < need {
		c *= 2
	}
	return c
}
