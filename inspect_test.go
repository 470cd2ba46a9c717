package ftsarc

import (
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ftsarc/compress"
	"github.com/meigma/ftsarc/internal/testutil"
)

func TestInspect(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("inspect ", 100)
	packed, ok := compress.Encode(compress.NewZstd(), []byte(content))
	require.True(t, ok)
	data := testutil.BuildArchive(
		testutil.Record{Tag: TagFile, Name: "a.txt", Payload: []byte("hello")},
		testutil.Record{Tag: TagFile, Name: "b.txt", Payload: packed},
		testutil.Record{Tag: 9, Name: "c.bin", Payload: []byte{1, 2, 3}},
	)
	a, err := readBytes(t, data)
	require.NoError(t, err)

	infos, err := a.Inspect()
	require.NoError(t, err)
	assert.Equal(t, []ChunkInfo{
		{
			Name:          "a.txt",
			Tag:           TagFile,
			PayloadLength: 5,
			Compressor:    compress.NoneName,
			Size:          5,
			Digest:        digest.FromString("hello"),
		},
		{
			Name:          "b.txt",
			Tag:           TagFile,
			PayloadLength: uint64(len(packed)),
			Compressor:    compress.ZstdName,
			Size:          uint64(len(content)),
			Digest:        digest.FromString(content),
		},
		{
			Name:          "c.bin",
			Tag:           9,
			PayloadLength: 3,
			Lossy:         true,
		},
	}, infos)
}

func TestInspectFailsOnCorruptFile(t *testing.T) {
	t.Parallel()

	packed, _ := compress.Encode(compress.NewLZ4(), []byte(strings.Repeat("y", 300)))
	data := testutil.BuildArchive(testutil.Record{Tag: TagFile, Name: "bad", Payload: packed[:len(packed)-2]})
	a, err := readBytes(t, data)
	require.NoError(t, err, "payloads are not decoded on load")

	_, err = a.Inspect()
	assert.ErrorIs(t, err, ErrCorruptData)
}
