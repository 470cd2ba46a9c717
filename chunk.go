package ftsarc

import (
	"bytes"

	"github.com/spf13/afero"

	"github.com/meigma/ftsarc/compress"
	"github.com/meigma/ftsarc/stream"
)

// Chunk tags as stored on disk.
const (
	// TagFile marks a FileChunk record.
	TagFile uint8 = 1
)

// Chunk is a named record of an archive. The set of implementations is
// closed: *FileChunk for tag 1 and *UnknownChunk for everything else.
type Chunk interface {
	// Name returns the chunk name, unique within an archive.
	Name() string

	// PayloadLength returns the number of payload bytes in the record.
	PayloadLength() uint64

	// Tag returns the on-disk record tag.
	Tag() uint8

	// Prefix prepends p to the name and returns the new name.
	Prefix(p string) string

	// Decode reads the record header and payload from r. The tag byte must
	// already be consumed.
	Decode(r stream.ByteReader) error

	// Encode writes the record header and payload to s, without the tag.
	Encode(s *stream.Stream) error

	// Execute materializes the chunk at target on fsys.
	Execute(fsys afero.Fs, target string) error

	sealed()
}

// header is the part common to every record: payload length and name.
type header struct {
	name          string
	payloadLength uint64
}

func (h *header) Name() string          { return h.name }
func (h *header) PayloadLength() uint64 { return h.payloadLength }
func (*header) sealed()                 {}

func (h *header) Prefix(p string) string {
	h.name = p + h.name
	return h.name
}

func (h *header) decodeHeader(r stream.ByteReader) error {
	length, ok := stream.ReadValue[uint64](r)
	if !ok {
		return &Error{Op: "read chunk", Kind: KindCorruptData, Problem: "truncated chunk header"}
	}
	if bytes.IndexByte(r.Remaining(), 0) < 0 {
		return &Error{Op: "read chunk", Kind: KindCorruptData, Problem: "unterminated chunk name"}
	}
	h.name = r.ReadString()
	h.payloadLength = length
	return nil
}

func (h *header) encodeHeader(s *stream.Stream) {
	stream.Insert(s, h.payloadLength)
	s.InsertString(h.name)
}

// ChunkFactory creates empty chunks for on-disk tags.
type ChunkFactory struct {
	codecs *compress.Factory
}

// NewChunkFactory returns a factory whose file chunks detect codecs with
// codecs. A nil factory uses compress.NewFactory.
func NewChunkFactory(codecs *compress.Factory) *ChunkFactory {
	if codecs == nil {
		codecs = compress.NewFactory()
	}
	return &ChunkFactory{codecs: codecs}
}

// New returns an empty chunk for tag, ready for Decode.
func (f *ChunkFactory) New(tag uint8) Chunk {
	if tag == TagFile {
		return &FileChunk{codecs: f.codecs}
	}
	return &UnknownChunk{tag: tag}
}
