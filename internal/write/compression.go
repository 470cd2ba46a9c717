// Package write holds helpers for deciding how files are stored when an
// archive is built.
package write

import (
	"path"
	"strings"
)

// SkipCompressionFunc returns true when a file should be stored uncompressed.
// It receives the chunk name and the file size, and is called once per file.
type SkipCompressionFunc func(name string, size int64) bool

// DefaultSkipCompression returns a SkipCompressionFunc that skips files
// smaller than minSize and files with extensions of already-compressed
// formats.
func DefaultSkipCompression(minSize int64) SkipCompressionFunc {
	return func(name string, size int64) bool {
		if minSize > 0 && size < minSize {
			return true
		}
		_, ok := compressedExts[strings.ToLower(path.Ext(name))]
		return ok
	}
}

// ShouldSkip reports whether any predicate asks to skip compression.
func ShouldSkip(name string, size int64, predicates []SkipCompressionFunc) bool {
	for _, fn := range predicates {
		if fn != nil && fn(name, size) {
			return true
		}
	}
	return false
}

var compressedExts = map[string]struct{}{
	".7z":   {},
	".br":   {},
	".bz2":  {},
	".fts":  {},
	".gif":  {},
	".gz":   {},
	".jpeg": {},
	".jpg":  {},
	".lz4":  {},
	".mp3":  {},
	".mp4":  {},
	".ogg":  {},
	".png":  {},
	".webp": {},
	".xz":   {},
	".zip":  {},
	".zst":  {},
}
