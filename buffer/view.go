package buffer

// View is a non-owning, read-only window over bytes owned elsewhere.
type View struct {
	data []byte
}

// NewView wraps p without copying. The caller must not modify p while the
// view is in use.
func NewView(p []byte) View {
	return View{data: p}
}

// Len returns the number of bytes in the view.
func (v View) Len() int {
	return len(v.data)
}

// Bytes returns the viewed bytes with capacity clipped to their length.
func (v View) Bytes() []byte {
	return v.data[:len(v.data):len(v.data)]
}

// Valid reports whether the view refers to any storage.
func (v View) Valid() bool {
	return v.data != nil
}

// Fletcher32 returns the checksum of the viewed bytes.
func (v View) Fletcher32() uint32 {
	return Fletcher32(v.data)
}
