// Package pathutil normalizes chunk names, which are slash-separated paths
// relative to an archive root.
package pathutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// TrimDotSlash removes a single leading "./" or ".\" from name.
func TrimDotSlash(name string) string {
	if strings.HasPrefix(name, "./") || strings.HasPrefix(name, `.\`) {
		return name[2:]
	}
	return name
}

// Normalize converts a user-provided path to chunk-name form.
//
// Backslashes become slashes, leading and trailing slashes are stripped, and
// consecutive slashes collapse. "." and ".." elements are preserved so that
// callers validating with fs.ValidPath can reject them.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = TrimDotSlash(p)
	parts := strings.Split(p, "/")
	result := parts[:0] // reuse backing array
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return "."
	}
	return strings.Join(result, "/")
}

// IsHidden reports whether the base name of p starts with a dot. The
// special entries "." and ".." are not considered hidden.
func IsHidden(p string) bool {
	base := filepath.Base(p)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// Rel returns target relative to root as a chunk name.
func Rel(root, target string) (string, error) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// SafeJoin joins a chunk name onto dir as an OS path. It reports false if
// the name would escape dir.
func SafeJoin(dir, name string) (string, bool) {
	clean := Normalize(name)
	if clean == "." || !fs.ValidPath(clean) {
		return "", false
	}
	return filepath.Join(dir, filepath.FromSlash(clean)), true
}
