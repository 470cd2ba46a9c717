package ftsarc

import (
	"bytes"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/meigma/ftsarc/compress"
	"github.com/meigma/ftsarc/internal/pathutil"
	"github.com/meigma/ftsarc/internal/sizing"
	"github.com/meigma/ftsarc/stream"
)

// FileChunk is a record holding the stored bytes of one file. The stored
// bytes are kept verbatim; File decodes them on first use and caches the
// result.
type FileChunk struct {
	header
	raw    []byte
	codecs *compress.Factory

	// Decoded view, filled on the first call to File.
	file    *File
	fileErr error
	decoded bool
}

// NewFileChunk returns a chunk storing f under name. An empty name uses the
// file's own name.
func NewFileChunk(f *File, name string) *FileChunk {
	if name == "" {
		name = f.Name()
	}
	c := &FileChunk{header: header{name: name}}
	c.Give(f)
	return c
}

// Tag implements Chunk.
func (*FileChunk) Tag() uint8 { return TagFile }

// Raw returns the stored bytes, possibly compressed.
func (c *FileChunk) Raw() []byte { return c.raw }

// Give replaces the wrapped file. The file is re-encoded with the codec it
// was opened with and becomes the cached decoded view.
func (c *FileChunk) Give(f *File) {
	c.raw = bytes.Clone(f.Encode())
	c.payloadLength = sizing.Len(c.raw)
	c.file, c.fileErr, c.decoded = f, nil, true
}

// File returns the decoded file. Decoding happens once; later calls return
// the cached result, including its error.
func (c *FileChunk) File() (*File, error) {
	if !c.decoded {
		c.file, c.fileErr = DecodeFile(c.name, c.raw, c.codecs)
		c.decoded = true
	}
	return c.file, c.fileErr
}

// Contents returns the decoded content.
func (c *FileChunk) Contents() ([]byte, error) {
	f, err := c.File()
	if err != nil {
		return nil, err
	}
	return f.Bytes(), nil
}

// Decode reads the record. A single leading "./" or ".\" is removed from the
// name. The payload is copied verbatim without decoding.
func (c *FileChunk) Decode(r stream.ByteReader) error {
	if err := c.decodeHeader(r); err != nil {
		return err
	}
	c.name = pathutil.TrimDotSlash(c.name)
	if r.SizeTillEnd() < c.payloadLength {
		return &Error{Op: "read chunk", Kind: KindCorruptData, Name: c.name, Problem: "truncated payload"}
	}
	c.raw = bytes.Clone(r.Remaining()[:c.payloadLength])
	r.Skip(c.payloadLength)
	c.file, c.fileErr, c.decoded = nil, nil, false
	return nil
}

// Encode implements Chunk.
func (c *FileChunk) Encode(s *stream.Stream) error {
	c.encodeHeader(s)
	s.Insert(c.raw)
	return nil
}

// Execute writes the stored bytes to target as they are kept in the archive:
// no codec is applied on the way out. Parent directories are created.
func (c *FileChunk) Execute(fsys afero.Fs, target string) error {
	if err := fsys.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return &Error{Op: "execute", Kind: KindSyscall, Name: c.name, Err: err}
	}
	if err := afero.WriteFile(fsys, target, c.raw, 0o644); err != nil {
		return &Error{Op: "execute", Kind: KindSyscall, Name: c.name, Err: err}
	}
	return nil
}

// codecName returns the codec of the decoded file, or "" if it cannot be
// decoded.
func (c *FileChunk) codecName() string {
	f, err := c.File()
	if err != nil {
		return ""
	}
	return f.Compressor().Name()
}
