package ftsarc

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/tidwall/btree"

	"github.com/meigma/ftsarc/buffer"
	"github.com/meigma/ftsarc/compress"
	"github.com/meigma/ftsarc/stream"
)

// Header constants.
const (
	// Magic opens every archive.
	Magic = "FTSARC"

	// Version is the archive format version this package reads and writes.
	Version uint8 = 1

	// HeaderSize is the length of magic, version, and checksum.
	HeaderSize = len(Magic) + 1 + 4
)

// Archive is an ordered set of uniquely named chunks.
//
// An Archive is not safe for concurrent mutation.
type Archive struct {
	name   string
	chunks *btree.BTreeG[entry]
	codec  compress.Compressor
	opts   options
}

type entry struct {
	name  string
	chunk Chunk
}

func newIndex() *btree.BTreeG[entry] {
	return btree.NewBTreeGOptions(func(a, b entry) bool {
		return a.name < b.name
	}, btree.Options{NoLocks: true})
}

// New returns an empty archive. Store writes it to name.
func New(name string, opts ...Option) *Archive {
	return newArchive(newOptions(name, opts))
}

func newArchive(o options) *Archive {
	codec := o.codec
	if codec == nil {
		codec = compress.NewNone()
	}
	return &Archive{
		name:   o.name,
		chunks: newIndex(),
		codec:  codec,
		opts:   o,
	}
}

// Read parses an archive from r, starting at the cursor.
//
// The magic, version, and checksum are verified first; then records are read
// until no data remains. Any malformed record aborts the read.
func Read(r stream.ByteReader, opts ...Option) (*Archive, error) {
	a := New("", opts...)
	if err := a.load(r); err != nil {
		return nil, err
	}
	return a, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.opts.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.opts.logger
}

func (a *Archive) load(r stream.ByteReader) error {
	if err := readHeader(r); err != nil {
		return withName(err, a.name)
	}
	factory := NewChunkFactory(a.opts.codecs)
	for !r.EOD() {
		tag, _ := stream.ReadValue[uint8](r)
		c := factory.New(tag)
		if err := c.Decode(r); err != nil {
			return fmt.Errorf("load %s: %w", a.name, err)
		}
		if a.opts.prefix != "" {
			c.Prefix(a.opts.prefix)
		}
		if err := a.insert("load", KindCorruptData, c); err != nil {
			return err
		}
		a.log().Debug("loaded chunk", "name", c.Name(), "tag", tag, "size", c.PayloadLength())
	}
	return nil
}

// readHeader consumes and verifies the archive header. On success the
// cursor is at the first record.
func readHeader(r stream.ByteReader) error {
	if r.SizeTillEnd() < uint64(HeaderSize) {
		return &Error{Op: "load", Kind: KindCorruptData, Problem: "truncated archive header"}
	}
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return &Error{Op: "load", Kind: KindCorruptData, Problem: "truncated archive header", Err: err}
	}
	if !bytes.Equal(magic, []byte(Magic)) {
		return &Error{Op: "load", Kind: KindCorruptData, Problem: "bad magic"}
	}
	version, _ := stream.ReadValue[uint8](r)
	if version != Version {
		return &Error{Op: "load", Kind: KindCorruptData, Problem: fmt.Sprintf("unsupported version %d", version)}
	}
	stored, _ := stream.ReadValue[uint32](r)
	if computed := buffer.Fletcher32(r.Remaining()); computed != stored {
		return &Error{
			Op:      "load",
			Kind:    KindCorruptData,
			Problem: fmt.Sprintf("checksum mismatch: stored %08x, computed %08x", stored, computed),
		}
	}
	return nil
}

// IsValid reports whether r holds an archive with a correct header and
// checksum at its cursor. Records are not parsed and the cursor is restored.
func IsValid(r stream.ByteReader) bool {
	pos := r.Pos()
	defer r.SetPos(pos)
	return readHeader(r) == nil
}

// insert adds c, applying the collision policy. kind is the error kind
// reported when the policy refuses a duplicate.
func (a *Archive) insert(op string, kind ErrorKind, c Chunk) error {
	if _, exists := a.chunks.Get(entry{name: c.Name()}); exists {
		if a.opts.collision == CollisionFail {
			return &Error{Op: op, Kind: kind, Name: c.Name(), Problem: "duplicate chunk name"}
		}
		a.log().Warn("replacing duplicate chunk", "name", c.Name(), "op", op)
	}
	a.chunks.Set(entry{name: c.Name(), chunk: c})
	return nil
}

// Write serializes the archive at s's cursor and leaves the cursor after the
// last record. Chunks are written in ascending name order. Bytes after the
// cursor are dropped first, since the archive extends to the end of data.
func (a *Archive) Write(s *stream.Stream) error {
	s.Truncate(s.Pos())
	s.Insert([]byte(Magic))
	stream.Insert(s, Version)
	checksumPos := s.Pos()
	stream.Insert(s, uint32(0))
	bodyStart := s.Pos()

	var err error
	a.chunks.Scan(func(e entry) bool {
		if u, ok := e.chunk.(*UnknownChunk); ok {
			a.log().Warn("unknown chunk payload written as zeros", "name", u.Name(), "tag", u.Tag())
		}
		stream.Insert(s, e.chunk.Tag())
		err = e.chunk.Encode(s)
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", a.name, err)
	}

	end := s.Pos()
	sum := buffer.Fletcher32(s.Bytes()[bodyStart:end])
	s.SetPos(checksumPos)
	stream.Overwrite(s, sum)
	s.SetPos(end)
	return nil
}

// Bytes returns the serialized archive.
func (a *Archive) Bytes() ([]byte, error) {
	s := stream.New()
	if err := a.Write(s); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// Encode returns the serialized archive wrapped by c, or the plain
// serialization when c does not make it smaller.
func (a *Archive) Encode(c compress.Compressor) ([]byte, error) {
	data, err := a.Bytes()
	if err != nil {
		return nil, err
	}
	encoded, _ := compress.Encode(c, data)
	return encoded, nil
}

// Give adds c to the archive. If a chunk with the same name exists, Give
// fails unless replace is set, in which case the old chunk is evicted. A
// refused chunk is not retained.
func (a *Archive) Give(c Chunk, replace bool) error {
	if c == nil {
		return &Error{Op: "give", Kind: KindInvalidParam, Problem: "nil chunk"}
	}
	if _, exists := a.chunks.Get(entry{name: c.Name()}); exists && !replace {
		return &Error{Op: "give", Kind: KindInvalidParam, Name: c.Name(), Problem: "chunk already exists"}
	}
	a.chunks.Set(entry{name: c.Name(), chunk: c})
	return nil
}

// PutFile stores f as a file chunk under its own name.
func (a *Archive) PutFile(f *File, replace bool) error {
	if f == nil {
		return &Error{Op: "give", Kind: KindInvalidParam, Problem: "nil file"}
	}
	return a.Give(NewFileChunk(f, ""), replace)
}

// Take removes the named chunk and returns it.
func (a *Archive) Take(name string) (Chunk, bool) {
	e, ok := a.chunks.Delete(entry{name: name})
	return e.chunk, ok
}

// Chunk returns the named chunk. Lookup is exact and case-sensitive.
func (a *Archive) Chunk(name string) (Chunk, bool) {
	e, ok := a.chunks.Get(entry{name: name})
	return e.chunk, ok
}

// Has reports whether a chunk with the given name exists.
func (a *Archive) Has(name string) bool {
	_, ok := a.chunks.Get(entry{name: name})
	return ok
}

// Len returns the number of chunks.
func (a *Archive) Len() int {
	return a.chunks.Len()
}

// All iterates over chunks in name order.
func (a *Archive) All() iter.Seq2[string, Chunk] {
	return func(yield func(string, Chunk) bool) {
		a.chunks.Scan(func(e entry) bool {
			return yield(e.name, e.chunk)
		})
	}
}

// Names returns all chunk names in order.
func (a *Archive) Names() []string {
	names := make([]string, 0, a.Len())
	for name := range a.All() {
		names = append(names, name)
	}
	return names
}

// FileList returns the names of file chunks in order.
func (a *Archive) FileList() []string {
	var names []string
	for name, c := range a.All() {
		if _, ok := c.(*FileChunk); ok {
			names = append(names, name)
		}
	}
	return names
}

// FileCount returns the number of file chunks.
func (a *Archive) FileCount() int {
	n := 0
	for _, c := range a.All() {
		if _, ok := c.(*FileChunk); ok {
			n++
		}
	}
	return n
}

// FileChunk returns the named chunk if it is a file chunk.
func (a *Archive) FileChunk(name string) (*FileChunk, bool) {
	c, ok := a.Chunk(name)
	if !ok {
		return nil, false
	}
	fc, ok := c.(*FileChunk)
	return fc, ok
}

// File returns the decoded file stored under name. The returned file is the
// chunk's cached view: edits to it are saved by a later PutFile or Give.
func (a *Archive) File(name string) (*File, error) {
	fc, ok := a.FileChunk(name)
	if !ok {
		return nil, &Error{Op: "open", Kind: KindNotFound, Name: name}
	}
	return fc.File()
}

// ReadFile returns a copy of the decoded content stored under name.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f, err := a.File(name)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(f.Bytes()), nil
}

// Unload releases every chunk.
func (a *Archive) Unload() {
	a.chunks = newIndex()
}

// Name returns the archive name.
func (a *Archive) Name() string { return a.name }

// SetName changes the archive name used by Store.
func (a *Archive) SetName(name string) { a.name = name }

// Compressor returns the codec wrapping the whole archive on Store.
func (a *Archive) Compressor() compress.Compressor { return a.codec }

// SetCompressor changes the codec used by Store. Nil stores uncompressed.
func (a *Archive) SetCompressor(c compress.Compressor) {
	if c == nil {
		c = compress.NewNone()
	}
	a.codec = c
}
