package ftsarc

import (
	"log/slog"
	"runtime"

	"github.com/meigma/ftsarc/compress"
	"github.com/meigma/ftsarc/internal/write"
)

// CollisionPolicy decides what happens when a loaded or built chunk has the
// same name as one already in the archive.
type CollisionPolicy uint8

const (
	// CollisionFail aborts the load or build.
	CollisionFail CollisionPolicy = iota

	// CollisionReplace keeps the later chunk and logs a warning.
	CollisionReplace
)

// String returns the string representation of the policy.
func (p CollisionPolicy) String() string {
	switch p {
	case CollisionFail:
		return "fail"
	case CollisionReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// SkipCompressionFunc returns true when a file should be stored uncompressed
// during a directory build. It receives the chunk name and file size.
type SkipCompressionFunc = write.SkipCompressionFunc

// DefaultSkipCompression returns a SkipCompressionFunc that skips small files
// and known already-compressed extensions.
var DefaultSkipCompression = write.DefaultSkipCompression

// options holds configuration shared by New, Read, Open, and FromDirectory.
type options struct {
	name      string
	prefix    string
	collision CollisionPolicy
	codec     compress.Compressor
	codecs    *compress.Factory
	logger    *slog.Logger

	// Directory builds only.
	fileCodec       compress.Compressor
	skipCompression []SkipCompressionFunc
	workers         int
	progress        ProgressFunc
}

// Option configures an Archive.
type Option func(*options)

// WithName sets the archive name, which Store uses as its path.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithPrefix prepends p to the name of every chunk read or built.
func WithPrefix(p string) Option {
	return func(o *options) {
		o.prefix = p
	}
}

// WithCollisionPolicy sets how duplicate chunk names are handled while
// loading or building. The default is CollisionFail.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(o *options) {
		o.collision = p
	}
}

// WithCompressor sets the codec wrapping the whole archive when it is stored.
// Open replaces it with the codec it detects, unless this option is given.
func WithCompressor(c compress.Compressor) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithFactory sets the codec registry used to detect compressed payloads.
func WithFactory(f *compress.Factory) Option {
	return func(o *options) {
		o.codecs = f
	}
}

// WithLogger sets the logger for archive operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFileCompressor compresses each file added by a directory build with c,
// unless a skip predicate matches. Files that are already compressed keep
// their codec.
func WithFileCompressor(c compress.Compressor) Option {
	return func(o *options) {
		o.fileCodec = c
	}
}

// WithSkipCompression adds predicates that keep a file uncompressed during a
// directory build. If any predicate returns true, compression is skipped.
func WithSkipCompression(fns ...SkipCompressionFunc) Option {
	return func(o *options) {
		o.skipCompression = append(o.skipCompression, fns...)
	}
}

// WithWorkers sets how many files a directory build reads concurrently.
// Values < 1 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithProgress sets a callback for directory build and store progress.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

func newOptions(name string, opts []Option) options {
	o := options{name: name}
	for _, opt := range opts {
		opt(&o)
	}
	if o.codecs == nil {
		o.codecs = compress.NewFactory()
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}
