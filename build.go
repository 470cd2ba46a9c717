package ftsarc

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/ftsarc/compress"
	"github.com/meigma/ftsarc/internal/pathutil"
	"github.com/meigma/ftsarc/internal/write"
)

// FromDirectory builds an archive holding one file chunk per regular file
// under dir. Chunk names are paths relative to dir with forward slashes.
// Hidden entries (names starting with ".") are skipped, and hidden
// directories are not descended into.
//
// Files are read concurrently, see WithWorkers; chunks are added in walk
// order. With WithFileCompressor each file is compressed individually.
func FromDirectory(ctx context.Context, fsys afero.Fs, dir string, opts ...Option) (*Archive, error) {
	return fromDirectory(ctx, fsys, dir, newOptions("", opts))
}

func fromDirectory(ctx context.Context, fsys afero.Fs, dir string, o options) (*Archive, error) {
	a := newArchive(o)
	if err := a.AddDirectory(ctx, fsys, dir); err != nil {
		return nil, err
	}
	return a, nil
}

// AddDirectory adds the files under dir as FromDirectory does. Name
// collisions with existing chunks follow the archive's collision policy.
func (a *Archive) AddDirectory(ctx context.Context, fsys afero.Fs, dir string) error {
	info, err := fsys.Stat(dir)
	if err != nil {
		return fsError("build", dir, err)
	}
	if !info.IsDir() {
		return &Error{Op: "build", Kind: KindInvalidParam, Name: dir, Problem: "not a directory"}
	}
	a.log().Info("building archive", "dir", dir, "workers", a.opts.workers)

	report(a.opts.progress, ProgressEvent{Stage: StageEnumerating})
	paths, err := a.enumerate(ctx, fsys, dir)
	if err != nil {
		return err
	}

	chunks := make([]*FileChunk, len(paths))
	var filesDone atomic.Int64
	var bytesDone atomic.Uint64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := a.readFileChunk(fsys, dir, p)
			if err != nil {
				return err
			}
			chunks[i] = c
			report(a.opts.progress, ProgressEvent{
				Stage:      StageReading,
				Path:       c.Name(),
				BytesDone:  bytesDone.Add(c.PayloadLength()),
				FilesDone:  int(filesDone.Add(1)),
				FilesTotal: len(paths),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, c := range chunks {
		if a.opts.prefix != "" {
			c.Prefix(a.opts.prefix)
		}
		if err := a.insert("build", KindInvalidParam, c); err != nil {
			return err
		}
		a.log().Debug("added file", "name", c.Name(), "stored", c.PayloadLength(), "compressor", c.codecName())
	}
	a.log().Debug("directory added", "dir", dir, "files", len(chunks), "bytes", bytesDone.Load())
	return nil
}

// enumerate returns the regular, non-hidden files under dir in walk order.
func (a *Archive) enumerate(ctx context.Context, fsys afero.Fs, dir string) ([]string, error) {
	var paths []string
	err := afero.Walk(fsys, dir, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != dir && pathutil.IsHidden(p) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fsError("build", dir, err)
	}
	return paths, nil
}

// lookalikeCodec returns the framed codec for content that would otherwise
// be stored raw and read back as a frame.
func (a *Archive) lookalikeCodec() compress.Compressor {
	if c := a.opts.fileCodec; c != nil && c.Signature() != "" {
		return c.Copy()
	}
	return a.opts.codecs.Default()
}

// readFileChunk reads one file and wraps it in a chunk. A file already
// holding a known codec frame is decoded and keeps that codec; one that only
// looks like a frame is stored as plain content.
func (a *Archive) readFileChunk(fsys afero.Fs, dir, p string) (*FileChunk, error) {
	raw, err := afero.ReadFile(fsys, p)
	if err != nil {
		return nil, fsError("build", p, err)
	}
	name, err := pathutil.Rel(dir, p)
	if err != nil {
		return nil, &Error{Op: "build", Kind: KindInvalidParam, Name: p, Err: err}
	}
	f, err := DecodeFile(name, raw, a.opts.codecs)
	if err != nil {
		if !errors.Is(err, ErrCorruptData) {
			return nil, err
		}
		a.log().Debug("stored as plain content", "path", name, "error", err)
		f = NewFile(name, raw)
		f.SetCompressor(a.lookalikeCodec())
		return NewFileChunk(f, name), nil
	}
	if a.opts.fileCodec != nil && !f.Compressed() &&
		!write.ShouldSkip(name, int64(len(raw)), a.opts.skipCompression) {
		f.SetCompressor(a.opts.fileCodec.Copy())
	}
	return NewFileChunk(f, name), nil
}
