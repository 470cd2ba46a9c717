package main

import (
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ftsarc"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/etc/ftsarc.yaml", []byte(`
compressor: zstd
file_compressor: s2
log_level: debug
workers: 3
collision: replace
skip_compression:
  min_size: 100
`), 0o644))

	cfg, err := LoadConfig(fsys, "/etc/ftsarc.yaml")
	require.NoError(t, err)
	assert.Equal(t, Config{
		Compressor:      "zstd",
		FileCompressor:  "s2",
		LogLevel:        "debug",
		Workers:         3,
		Collision:       "replace",
		SkipCompression: SkipCompressionConfig{MinSize: 100},
	}, cfg)

	policy, err := cfg.CollisionPolicy()
	require.NoError(t, err)
	assert.Equal(t, ftsarc.CollisionReplace, policy)
	assert.Len(t, cfg.skipCompression(), 1)
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "c.yaml", []byte("workers: 2\n"), 0o644))

	cfg, err := LoadConfig(fsys, "c.yaml")
	require.NoError(t, err)
	want := DefaultConfig()
	want.Workers = 2
	assert.Equal(t, want, cfg)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "empty.yaml", nil, 0o644))

	cfg, err := LoadConfig(fsys, "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown key", "compresor: lz4\n", "compresor"},
		{"unknown compressor", "compressor: brotli\n", "unknown compressor"},
		{"unknown file compressor", "file_compressor: brotli\n", "unknown compressor"},
		{"negative workers", "workers: -1\n", "workers"},
		{"negative min size", "skip_compression:\n  min_size: -5\n", "min_size"},
		{"bad collision", "collision: merge\n", "collision"},
		{"bad log level", "log_level: loud\n", "log_level"},
		{"not yaml", "compressor: [unclosed\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, "c.yaml", []byte(tt.content), 0o644))
			_, err := LoadConfig(fsys, "c.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := LoadConfig(afero.NewMemMapFs(), "missing.yaml")
	assert.Error(t, err)
}

func TestSkipCompressionDisabled(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SkipCompression.Disabled = true
	assert.Empty(t, cfg.skipCompression())
}
