package ftsarc

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/meigma/ftsarc/compress"
)

// Store writes the archive to its name on fsys, wrapped by its compressor
// when that makes it smaller.
//
// Uses atomic writes (temp file + rename) so a failed store leaves any
// previous file intact. Parent directories are created as needed.
func (a *Archive) Store(fsys afero.Fs) error {
	if a.name == "" {
		return &Error{Op: "store", Kind: KindInvalidParam, Problem: "archive has no name"}
	}
	report(a.opts.progress, ProgressEvent{Stage: StageWriting, Path: a.name, FilesTotal: a.Len()})
	encoded, packed, err := a.storedBytes()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(fsys, a.name, encoded); err != nil {
		return &Error{Op: "store", Kind: KindSyscall, Name: a.name, Err: err}
	}
	report(a.opts.progress, ProgressEvent{
		Stage:      StageWriting,
		Path:       a.name,
		BytesDone:  uint64(len(encoded)),
		FilesDone:  a.Len(),
		FilesTotal: a.Len(),
	})
	a.log().Info("stored archive", "path", a.name, "chunks", a.Len(),
		"size", len(encoded), "compressor", a.codec.Name(), "compressed", packed)
	return nil
}

// storedBytes returns the serialized archive wrapped by its compressor, and
// whether the compressor was applied.
func (a *Archive) storedBytes() ([]byte, bool, error) {
	data, err := a.Bytes()
	if err != nil {
		return nil, false, err
	}
	encoded, packed := compress.Encode(a.codec, data)
	return encoded, packed, nil
}

// writeFileAtomic writes data to a temp file then renames it to target.
func writeFileAtomic(fsys afero.Fs, target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := fsys.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := afero.TempFile(fsys, dir, ".ftsarc-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fsys.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		fsys.Remove(tmpPath)
		return err
	}
	if err := fsys.Rename(tmpPath, target); err != nil {
		fsys.Remove(tmpPath)
		return err
	}
	return nil
}
