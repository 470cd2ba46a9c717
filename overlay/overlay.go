// Package overlay resolves file paths against a set of watched archives
// before falling back to a filesystem.
//
// A Resolver is an explicit context: it holds the watched archives in
// registration order and the filesystem to fall back on. When several
// watched archives hold the same name, the one registered first wins.
package overlay

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/meigma/ftsarc"
	"github.com/meigma/ftsarc/compress"
	"github.com/meigma/ftsarc/internal/pathutil"
)

// Resolver looks up files in watched archives, then on a filesystem.
//
// A Resolver is not safe for concurrent use.
type Resolver struct {
	fsys    afero.Fs
	watched []*ftsarc.Archive
	codecs  *compress.Factory
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFactory sets the codec registry used to decode files read from the
// filesystem.
func WithFactory(f *compress.Factory) Option {
	return func(r *Resolver) {
		r.codecs = f
	}
}

// WithLogger sets the logger for resolution.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New returns a resolver falling back on fsys.
func New(fsys afero.Fs, opts ...Option) *Resolver {
	r := &Resolver{fsys: fsys}
	for _, opt := range opts {
		opt(r)
	}
	if r.codecs == nil {
		r.codecs = compress.NewFactory()
	}
	return r
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Resolver) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Fs returns the fallback filesystem.
func (r *Resolver) Fs() afero.Fs { return r.fsys }

// Watch adds a to the end of the lookup order. Watching an archive with the
// name of one already watched replaces it in place. Archives without a name
// are told apart by identity only, and watching one twice does nothing.
func (r *Resolver) Watch(a *ftsarc.Archive) {
	if a == nil || slices.Contains(r.watched, a) {
		return
	}
	if i := r.index(a.Name()); i >= 0 {
		r.watched[i] = a
		return
	}
	r.watched = append(r.watched, a)
	r.log().Debug("watching archive", "archive", a.Name(), "position", len(r.watched))
}

// Unwatch stops consulting the named archive and reports whether it was
// watched. Unnamed archives are removed with UnwatchArchive.
func (r *Resolver) Unwatch(name string) bool {
	return r.remove(r.index(name))
}

// UnwatchArchive stops consulting a and reports whether it was watched.
func (r *Resolver) UnwatchArchive(a *ftsarc.Archive) bool {
	return r.remove(slices.Index(r.watched, a))
}

func (r *Resolver) remove(i int) bool {
	if i < 0 {
		return false
	}
	r.watched = slices.Delete(r.watched, i, i+1)
	return true
}

// Watched returns the names of watched archives in lookup order.
func (r *Resolver) Watched() []string {
	names := make([]string, len(r.watched))
	for i, a := range r.watched {
		names[i] = a.Name()
	}
	return names
}

// Archive returns the watched archive with the given name.
func (r *Resolver) Archive(name string) (*ftsarc.Archive, bool) {
	if i := r.index(name); i >= 0 {
		return r.watched[i], true
	}
	return nil, false
}

func (r *Resolver) index(name string) int {
	if name == "" {
		return -1
	}
	return slices.IndexFunc(r.watched, func(a *ftsarc.Archive) bool {
		return a.Name() == name
	})
}

// Lookup returns the first watched archive holding a file chunk for path,
// and the chunk.
func (r *Resolver) Lookup(path string) (*ftsarc.Archive, *ftsarc.FileChunk, bool) {
	name := pathutil.Normalize(path)
	for _, a := range r.watched {
		if fc, ok := a.FileChunk(name); ok {
			return a, fc, true
		}
	}
	return nil, nil, false
}

// Exists reports whether path resolves in a watched archive or on the
// filesystem.
func (r *Resolver) Exists(path string) bool {
	if _, _, ok := r.Lookup(path); ok {
		return true
	}
	ok, err := afero.Exists(r.fsys, path)
	return err == nil && ok
}

// Open resolves path and returns an independent in-memory file.
//
// Watched archives are consulted first; a file found there remembers its
// archive as its origin. Otherwise the file is read from the filesystem and
// decoded with any codec it was stored with.
func (r *Resolver) Open(path string) (*ftsarc.File, error) {
	if a, fc, ok := r.Lookup(path); ok {
		f, err := ftsarc.DecodeFile(fc.Name(), bytes.Clone(fc.Raw()), r.codecs)
		if err != nil {
			return nil, err
		}
		f.SetOrigin(a)
		r.log().Debug("resolved from archive", "path", path, "archive", a.Name())
		return f, nil
	}

	raw, err := afero.ReadFile(r.fsys, path)
	if err != nil {
		kind := ftsarc.KindSyscall
		if errors.Is(err, fs.ErrNotExist) {
			kind = ftsarc.KindNotFound
		}
		return nil, &ftsarc.Error{Op: "open", Kind: kind, Name: path, Err: err}
	}
	r.log().Debug("resolved from filesystem", "path", path)
	return ftsarc.DecodeFile(path, raw, r.codecs)
}

// Save writes f back where it came from.
//
// A file resolved from an archive replaces its chunk there and the archive
// is stored. An archive without a name is only updated in memory. A file
// that names its source archive without an origin is saved into the
// watched archive of that name, or into the archive opened from the
// filesystem. Any other file is written to the filesystem under its name,
// encoded with its original codec.
func (r *Resolver) Save(f *ftsarc.File) error {
	if f == nil {
		return &ftsarc.Error{Op: "save", Kind: ftsarc.KindInvalidParam, Problem: "nil file"}
	}
	if a := f.Origin(); a != nil {
		return r.saveInto(f, a)
	}
	if src := f.Source(); src != "" {
		return r.saveToArchive(f, src)
	}

	if err := r.fsys.MkdirAll(filepath.Dir(f.Name()), 0o750); err != nil {
		return &ftsarc.Error{Op: "save", Kind: ftsarc.KindSyscall, Name: f.Name(), Err: err}
	}
	if err := afero.WriteFile(r.fsys, f.Name(), f.Encode(), 0o644); err != nil {
		return &ftsarc.Error{Op: "save", Kind: ftsarc.KindSyscall, Name: f.Name(), Err: err}
	}
	r.log().Debug("saved to filesystem", "path", f.Name(), "compressor", f.Compressor().Name())
	return nil
}

func (r *Resolver) saveToArchive(f *ftsarc.File, src string) error {
	a, ok := r.Archive(src)
	if !ok {
		var err error
		a, err = openForSave(r, src)
		if err != nil {
			return err
		}
	}
	return r.saveInto(f, a)
}

func (r *Resolver) saveInto(f *ftsarc.File, a *ftsarc.Archive) error {
	if err := a.PutFile(f, true); err != nil {
		return err
	}
	if a.Name() == "" {
		r.log().Debug("saved into unnamed archive in memory", "path", f.Name())
		return nil
	}
	if err := a.Store(r.fsys); err != nil {
		return err
	}
	r.log().Debug("saved into archive", "path", f.Name(), "archive", a.Name())
	return nil
}

func openForSave(r *Resolver, name string) (*ftsarc.Archive, error) {
	exists, err := afero.Exists(r.fsys, name)
	if err != nil {
		return nil, &ftsarc.Error{Op: "save", Kind: ftsarc.KindSyscall, Name: name, Err: err}
	}
	if !exists {
		return ftsarc.New(name, ftsarc.WithFactory(r.codecs), ftsarc.WithLogger(r.logger)), nil
	}
	return ftsarc.Open(context.Background(), r.fsys, name, ftsarc.WithFactory(r.codecs), ftsarc.WithLogger(r.logger))
}
