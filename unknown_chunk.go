package ftsarc

import (
	"github.com/spf13/afero"

	"github.com/meigma/ftsarc/internal/sizing"
	"github.com/meigma/ftsarc/stream"
)

// UnknownChunk is a record with a tag this package does not understand. Its
// payload is skipped on read and written back as zero bytes of the same
// length, so only the tag, name, and length survive a round trip.
type UnknownChunk struct {
	header
	tag uint8
}

// Tag returns the tag the record was read with.
func (c *UnknownChunk) Tag() uint8 { return c.tag }

// Lossy reports that re-encoding the chunk does not preserve its payload.
func (*UnknownChunk) Lossy() bool { return true }

// Decode reads the header and skips the payload. A payload running past the
// end of data is skipped up to the end.
func (c *UnknownChunk) Decode(r stream.ByteReader) error {
	if err := c.decodeHeader(r); err != nil {
		return err
	}
	r.Skip(c.payloadLength)
	return nil
}

// Encode writes the header followed by PayloadLength zero bytes.
func (c *UnknownChunk) Encode(s *stream.Stream) error {
	n, err := sizing.ToInt(c.payloadLength, ErrInvalidParam)
	if err != nil {
		return &Error{Op: "write chunk", Kind: KindInvalidParam, Name: c.name, Problem: "payload length overflows"}
	}
	c.encodeHeader(s)
	s.Insert(make([]byte, n))
	return nil
}

// Execute does nothing: there is no known way to materialize the chunk.
func (*UnknownChunk) Execute(afero.Fs, string) error { return nil }
