// Package testutil builds archive fixtures for tests.
package testutil

import (
	"encoding/binary"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ftsarc/buffer"
)

// Record is one archive record as it appears on disk.
type Record struct {
	Tag     uint8
	Name    string
	Payload []byte
}

// BuildArchive encodes records in the given order behind a valid header.
// It mirrors the on-disk format byte for byte without using the archive
// writer, so tests can check the writer against it.
func BuildArchive(records ...Record) []byte {
	body := make([]byte, 0, 256)
	for _, r := range records {
		body = append(body, r.Tag)
		body = binary.LittleEndian.AppendUint64(body, uint64(len(r.Payload)))
		body = append(body, r.Name...)
		body = append(body, 0)
		body = append(body, r.Payload...)
	}
	return WithHeader(body, buffer.Fletcher32(body))
}

// WithHeader prefixes body with the archive header carrying checksum.
func WithHeader(body []byte, checksum uint32) []byte {
	out := append([]byte("FTSARC"), 1)
	out = binary.LittleEndian.AppendUint32(out, checksum)
	return append(out, body...)
}

// WriteTree creates files under root on fsys. Keys are slash-separated
// paths relative to root.
func WriteTree(t testing.TB, fsys afero.Fs, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fsys, p, []byte(content), 0o644))
	}
}

// ReadTree returns every regular file under root keyed by slash-separated
// relative path.
func ReadTree(t testing.TB, fsys afero.Fs, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}
