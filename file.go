package ftsarc

import (
	"github.com/meigma/ftsarc/compress"
	"github.com/meigma/ftsarc/stream"
)

// File is a logical file held in memory: its decoded content, the codec it
// was stored with, and the archive it was resolved from, if any.
//
// Content is edited through Stream. Encode serializes the current content
// with the original codec.
type File struct {
	name    string
	content *stream.Stream
	codec   compress.Compressor
	source  string
	origin  *Archive
}

// NewFile returns an uncompressed file holding a copy of content.
func NewFile(name string, content []byte) *File {
	return &File{
		name:    name,
		content: stream.FromBytes(content),
		codec:   compress.NewNone(),
	}
}

// DecodeFile returns a file from its stored form. The codec is detected from
// raw's leading bytes and kept for re-encoding.
func DecodeFile(name string, raw []byte, codecs *compress.Factory) (*File, error) {
	if codecs == nil {
		codecs = compress.NewFactory()
	}
	content, codec, err := compress.Decode(codecs, raw)
	if err != nil {
		return nil, withName(err, name)
	}
	return &File{
		name:    name,
		content: stream.FromBytes(content),
		codec:   codec,
	}, nil
}

// Name returns the file name.
func (f *File) Name() string { return f.name }

// Bytes returns the decoded content. The slice aliases the file until its
// next modification.
func (f *File) Bytes() []byte {
	if f.content.Invalid() {
		return []byte{}
	}
	return f.content.Bytes()
}

// Size returns the decoded content length.
func (f *File) Size() uint64 { return f.content.Size() }

// Stream returns the content stream for reading and editing in place.
func (f *File) Stream() *stream.Stream { return f.content }

// Compressor returns the codec the file was stored with.
func (f *File) Compressor() compress.Compressor { return f.codec }

// SetCompressor changes the codec used by Encode. A nil codec stores the file
// uncompressed.
func (f *File) SetCompressor(c compress.Compressor) {
	if c == nil {
		c = compress.NewNone()
	}
	f.codec = c
}

// Compressed reports whether the file was stored with a codec other than
// the identity codec.
func (f *File) Compressed() bool {
	return f.codec.Name() != compress.NoneName
}

// Source returns the name of the archive the file was resolved from, or ""
// if it came from the filesystem or was created in memory.
func (f *File) Source() string { return f.source }

// SetSource records the name of the archive the file belongs to.
func (f *File) SetSource(archive string) { f.source = archive }

// Origin returns the in-memory archive the file was resolved from, or nil.
// Unlike Source it identifies archives that have no name.
func (f *File) Origin() *Archive { return f.origin }

// SetOrigin records a as the archive the file belongs to, and its name as
// the source.
func (f *File) SetOrigin(a *Archive) {
	f.origin = a
	f.source = ""
	if a != nil {
		f.source = a.Name()
	}
}

// Encode returns the stored form of the file: the content compressed with
// the original codec, or the content itself when compression fails or does
// not shrink it.
func (f *File) Encode() []byte {
	data, _ := compress.Encode(f.codec, f.Bytes())
	return data
}

// Clone returns an independent copy of the file.
func (f *File) Clone() *File {
	return &File{
		name:    f.name,
		content: f.content.Clone(),
		codec:   f.codec.Copy(),
		source:  f.source,
		origin:  f.origin,
	}
}
