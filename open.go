package ftsarc

import (
	"context"
	"errors"
	"io/fs"

	"github.com/spf13/afero"

	"github.com/meigma/ftsarc/buffer"
	"github.com/meigma/ftsarc/compress"
	"github.com/meigma/ftsarc/stream"
)

// Open loads the archive at path on fsys.
//
// If path is a directory the archive is built from it as by FromDirectory.
// Otherwise the file is read, any whole-archive codec is detected and
// removed, and the result is parsed. The detected codec becomes the
// archive's compressor, so Store writes it back the same way. The archive is
// named after path unless WithName is given.
func Open(ctx context.Context, fsys afero.Fs, path string, opts ...Option) (*Archive, error) {
	o := newOptions(path, opts)
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, fsError("open", path, err)
	}
	if info.IsDir() {
		return fromDirectory(ctx, fsys, path, o)
	}

	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fsError("open", path, err)
	}
	data, codec, err := compress.Decode(o.codecs, raw)
	if err != nil {
		return nil, withName(err, path)
	}

	a := newArchive(o)
	if o.codec == nil {
		a.codec = codec
	}
	if err := a.load(stream.NewReader(buffer.NewView(data))); err != nil {
		return nil, err
	}
	a.log().Info("opened archive", "path", path, "chunks", a.Len(), "compressor", codec.Name())
	return a, nil
}

// IsValidFile reports whether path holds an archive, possibly wrapped by a
// codec known to codecs. A nil factory uses compress.NewFactory. It never
// returns an error.
func IsValidFile(fsys afero.Fs, path string, codecs *compress.Factory) bool {
	if codecs == nil {
		codecs = compress.NewFactory()
	}
	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		return false
	}
	data, _, err := compress.Decode(codecs, raw)
	if err != nil {
		return false
	}
	return IsValid(stream.NewReader(buffer.NewView(data)))
}

// fsError converts a filesystem error into an *Error. A missing path is
// KindNotFound; anything else is KindSyscall.
func fsError(op, path string, err error) error {
	kind := KindSyscall
	if errors.Is(err, fs.ErrNotExist) {
		kind = KindNotFound
	}
	return &Error{Op: op, Kind: kind, Name: path, Err: err}
}
