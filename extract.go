package ftsarc

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/ftsarc/internal/pathutil"
)

// extractConfig holds configuration for extraction.
type extractConfig struct {
	workers  int
	decoded  bool
	progress ProgressFunc
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

// ExtractWithWorkers sets how many chunks are written concurrently.
// Values < 1 use the archive's worker setting.
func ExtractWithWorkers(n int) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.workers = n
	}
}

// ExtractDecoded writes decoded file content instead of the stored bytes.
// By default files are written exactly as stored, as Chunk.Execute does.
func ExtractDecoded(enabled bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.decoded = enabled
	}
}

// ExtractWithProgress sets a callback for extraction progress.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.progress = fn
	}
}

// Extract executes every chunk into dir on fsys. A chunk name that is not a
// valid relative path, or would escape dir, fails the extraction before
// anything is written.
func (a *Archive) Extract(ctx context.Context, fsys afero.Fs, dir string, opts ...ExtractOption) error {
	cfg := extractConfig{workers: a.opts.workers}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = a.opts.workers
	}

	type job struct {
		target string
		chunk  Chunk
	}
	jobs := make([]job, 0, a.Len())
	for name, c := range a.All() {
		target, ok := pathutil.SafeJoin(dir, name)
		if !ok {
			return &Error{Op: "extract", Kind: KindInvalidParam, Name: name, Problem: "unsafe chunk name"}
		}
		jobs = append(jobs, job{target: target, chunk: c})
	}
	a.log().Info("extracting archive", "archive", a.name, "dir", dir, "chunks", len(jobs))

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := a.execute(fsys, j.chunk, j.target, cfg.decoded); err != nil {
				return err
			}
			report(cfg.progress, ProgressEvent{
				Stage:      StageExtracting,
				Path:       j.chunk.Name(),
				FilesDone:  int(done.Add(1)),
				FilesTotal: len(jobs),
			})
			return nil
		})
	}
	return g.Wait()
}

func (a *Archive) execute(fsys afero.Fs, c Chunk, target string, decoded bool) error {
	fc, ok := c.(*FileChunk)
	if !decoded || !ok {
		return c.Execute(fsys, target)
	}
	content, err := fc.Contents()
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return &Error{Op: "extract", Kind: KindSyscall, Name: c.Name(), Err: err}
	}
	if err := afero.WriteFile(fsys, target, content, 0o644); err != nil {
		return &Error{Op: "extract", Kind: KindSyscall, Name: c.Name(), Err: err}
	}
	return nil
}
