// Package ftsarc reads and writes FTS archives: a single file holding named
// chunks behind a checksummed header.
//
// An archive on disk is laid out as
//
//	"FTSARC" | version u8 | Fletcher-32 u32-LE | record...
//
// where each record is
//
//	tag u8 | payload length u64-LE | NUL-terminated name | payload
//
// Tag 1 is a file chunk whose payload is the stored bytes of one file,
// possibly compressed by a codec from the compress package. Any other tag is
// kept as an unknown chunk, so newer archives stay readable.
//
// The whole serialized archive may itself be wrapped by a codec; [Open]
// detects and removes that layer, and [Archive.Store] restores it.
//
// # Quick Start
//
// Build an archive from a directory and write it out:
//
//	fsys := afero.NewOsFs()
//	a, err := ftsarc.FromDirectory(ctx, fsys, "./assets",
//	    ftsarc.WithName("assets.fts"),
//	    ftsarc.WithCompressor(compress.NewLZ4()),
//	)
//	if err != nil {
//	    return err
//	}
//	err = a.Store(fsys)
//
// Read a file back:
//
//	a, err := ftsarc.Open(ctx, fsys, "assets.fts")
//	if err != nil {
//	    return err
//	}
//	content, err := a.ReadFile("textures/grass.png")
//
// Overlay resolution, where archived files shadow the filesystem, lives in
// the overlay subpackage.
package ftsarc
