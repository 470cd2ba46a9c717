package main

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/meigma/ftsarc"
)

// readFile reads path and removes any codec it was stored with.
func readFile(a *app, path string) (*ftsarc.File, error) {
	raw, err := afero.ReadFile(a.fsys, path)
	if err != nil {
		return nil, err
	}
	return ftsarc.DecodeFile(path, raw, a.codecs)
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(a *app, path string, data []byte) error {
	if path == "-" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := a.fsys.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return afero.WriteFile(a.fsys, path, data, 0o644)
}
