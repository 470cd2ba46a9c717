package ftsarc

import (
	_ "crypto/sha256" // register sha256 for digest.Canonical

	"github.com/opencontainers/go-digest"
)

// ChunkInfo describes one chunk of an archive.
type ChunkInfo struct {
	// Name is the chunk name.
	Name string

	// Tag is the on-disk record tag.
	Tag uint8

	// PayloadLength is the number of bytes stored in the record.
	PayloadLength uint64

	// Lossy is set for chunks whose payload is not preserved on save.
	Lossy bool

	// Compressor is the codec of a file chunk's stored bytes.
	Compressor string

	// Size is the decoded size of a file chunk.
	Size uint64

	// Digest is the sha256 digest of a file chunk's decoded content.
	Digest digest.Digest
}

// Inspect describes every chunk in name order. File chunks are decoded to
// report their codec, size, and digest; a chunk that fails to decode fails
// the inspection.
func (a *Archive) Inspect() ([]ChunkInfo, error) {
	infos := make([]ChunkInfo, 0, a.Len())
	for name, c := range a.All() {
		info := ChunkInfo{
			Name:          name,
			Tag:           c.Tag(),
			PayloadLength: c.PayloadLength(),
		}
		switch c := c.(type) {
		case *FileChunk:
			f, err := c.File()
			if err != nil {
				return nil, err
			}
			info.Compressor = f.Compressor().Name()
			info.Size = f.Size()
			info.Digest = digest.FromBytes(f.Bytes())
		case *UnknownChunk:
			info.Lossy = c.Lossy()
		}
		infos = append(infos, info)
	}
	return infos, nil
}
