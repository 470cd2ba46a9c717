package compress

import (
	"bytes"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ftsarc/internal/arctype"
	"github.com/meigma/ftsarc/stream"
)

func allCodecs() []Compressor {
	return []Compressor{NewLZ4(), NewZstd(), NewS2(), NewNone()}
}

func randomBytes(n int, seed uint64) []byte {
	r := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(r.Uint32())
	}
	return p
}

func payloads() map[string][]byte {
	return map[string][]byte{
		"empty":      {},
		"one byte":   {0x42},
		"short text": []byte("hello, archive"),
		"repetitive": bytes.Repeat([]byte("fts archive chunk "), 2000),
		"zeros":      make([]byte, 64*1024),
		"random":     randomBytes(10_000, 1),
		"random big": randomBytes(300_000, 2),
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, proto := range allCodecs() {
		for name, input := range payloads() {
			t.Run(proto.Name()+"/"+name, func(t *testing.T) {
				t.Parallel()
				c := proto.Copy()

				packed := stream.New()
				_, err := c.Compress(packed, input)
				require.NoError(t, err)
				assert.True(t, c.IsMyType(packed.Bytes()) || len(input) == 0)

				unpacked := stream.New()
				require.NoError(t, c.Decompress(unpacked, packed.Bytes()))
				assert.Equal(t, len(input), len(unpacked.Bytes()))
				assert.True(t, bytes.Equal(input, unpacked.Bytes()))
				assert.Empty(t, c.LastProblem())
			})
		}
	}
}

func TestCompressReportsSmaller(t *testing.T) {
	t.Parallel()

	repetitive := bytes.Repeat([]byte("abcdefgh"), 4096)
	for _, c := range []Compressor{NewLZ4(), NewZstd(), NewS2()} {
		t.Run(c.Name(), func(t *testing.T) {
			t.Parallel()
			out := stream.New()
			smaller, err := c.Compress(out, repetitive)
			require.NoError(t, err)
			assert.True(t, smaller)
			assert.Less(t, len(out.Bytes()), len(repetitive))

			tiny := stream.New()
			smaller, err = c.Compress(tiny, []byte("ab"))
			require.NoError(t, err)
			assert.False(t, smaller, "header alone outweighs two bytes")
		})
	}
}

func TestNoneNeverSmaller(t *testing.T) {
	t.Parallel()

	out := stream.New()
	smaller, err := NewNone().Compress(out, []byte("abc"))
	require.NoError(t, err)
	assert.False(t, smaller)
	assert.Equal(t, "abc", string(out.Bytes()))
	assert.True(t, NewNone().IsMyType([]byte("anything")))
}

func TestFrameLayout(t *testing.T) {
	t.Parallel()

	out := stream.New()
	_, err := NewLZ4().Compress(out, []byte("payload"))
	require.NoError(t, err)

	r := stream.NewReader(out.View())
	assert.Equal(t, LZ4Signature, r.ReadString())
	version, ok := stream.ReadValue[uint8](r)
	require.True(t, ok)
	assert.Equal(t, FrameVersion, version)
	size, ok := stream.ReadValue[uint64](r)
	require.True(t, ok)
	assert.Equal(t, uint64(7), size)
}

func TestCompressInsertsAtCursor(t *testing.T) {
	t.Parallel()

	out := stream.FromBytes([]byte("[]"))
	out.SetPos(1)
	_, err := NewS2().Compress(out, []byte("middle"))
	require.NoError(t, err)
	assert.Equal(t, byte('['), out.Bytes()[0])
	assert.Equal(t, byte(']'), out.Bytes()[len(out.Bytes())-1])
}

func compressed(t *testing.T, c Compressor, p []byte) []byte {
	t.Helper()
	out := stream.New()
	_, err := c.Compress(out, p)
	require.NoError(t, err)
	return out.Bytes()
}

func TestDecompressSignatureMismatch(t *testing.T) {
	t.Parallel()

	frame := compressed(t, NewZstd(), []byte("zstd data zstd data"))
	c := NewLZ4()
	out := stream.FromBytes([]byte("keep"))
	err := c.Decompress(out, frame)

	require.ErrorIs(t, err, arctype.ErrCorruptData)
	assert.Equal(t, "keep", string(out.Bytes()), "destination is untouched")
	assert.NotEmpty(t, c.LastProblem())

	var e *arctype.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, LZ4Name, e.Compressor)
}

func TestDecompressCorruptFrames(t *testing.T) {
	t.Parallel()

	input := bytes.Repeat([]byte("0123456789"), 500)
	for _, proto := range []Compressor{NewLZ4(), NewZstd(), NewS2()} {
		frame := compressed(t, proto, input)
		headerLen := len(proto.Signature()) + 1 + 1 + 8

		cases := map[string][]byte{
			"truncated header": frame[:len(proto.Signature())+3],
			"bad version": func() []byte {
				p := bytes.Clone(frame)
				p[len(proto.Signature())+1] = 9
				return p
			}(),
			"size too large": func() []byte {
				p := bytes.Clone(frame)
				p[len(proto.Signature())+2]++
				return p
			}(),
			"size too small": func() []byte {
				p := bytes.Clone(frame)
				p[len(proto.Signature())+2]--
				return p
			}(),
			"truncated payload": frame[:headerLen+(len(frame)-headerLen)/2],
		}
		for name, corrupt := range cases {
			t.Run(proto.Name()+"/"+name, func(t *testing.T) {
				t.Parallel()
				c := proto.Copy()
				out := stream.FromBytes([]byte("prefix"))
				out.SetPos(out.Size())
				err := c.Decompress(out, corrupt)
				require.ErrorIs(t, err, arctype.ErrCorruptData)
				assert.Equal(t, "prefix", string(out.Bytes()), "destination keeps its size")
				assert.NotEmpty(t, c.LastProblem())
			})
		}
	}
}

func TestDecompressSizeLimit(t *testing.T) {
	t.Parallel()

	frame := compressed(t, NewLZ4(), make([]byte, 4096))
	c := NewLZ4(WithMaxDecodedSize(1024))
	err := c.Decompress(stream.New(), frame)
	assert.ErrorIs(t, err, arctype.ErrCorruptData)
}

func TestLastProblemClearsOnSuccess(t *testing.T) {
	t.Parallel()

	c := NewS2()
	require.Error(t, c.Decompress(stream.New(), []byte("garbage")))
	require.NotEmpty(t, c.LastProblem())

	frame := compressed(t, c, []byte("fine"))
	require.NoError(t, c.Decompress(stream.New(), frame))
	assert.Empty(t, c.LastProblem())
}

func TestCopyIsIndependent(t *testing.T) {
	t.Parallel()

	a := NewLZ4()
	b := a.Copy()
	require.Error(t, a.Decompress(stream.New(), []byte("nope")))
	assert.NotEmpty(t, a.LastProblem())
	assert.Empty(t, b.LastProblem())
}

func TestConcurrentCopies(t *testing.T) {
	t.Parallel()

	input := bytes.Repeat([]byte("concurrent compression "), 1000)
	var wg sync.WaitGroup
	for _, proto := range []Compressor{NewLZ4(), NewZstd(), NewS2()} {
		for range 8 {
			wg.Go(func() {
				c := proto.Copy()
				for range 10 {
					packed := stream.New()
					if _, err := c.Compress(packed, input); err != nil {
						t.Error(err)
						return
					}
					unpacked := stream.New()
					if err := c.Decompress(unpacked, packed.Bytes()); err != nil {
						t.Error(err)
						return
					}
					if !bytes.Equal(input, unpacked.Bytes()) {
						t.Error("round trip mismatch")
						return
					}
				}
			})
		}
	}
	wg.Wait()
}

func TestLiteralBlockDecodes(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 14, 15, 16, 269, 270, 271, 5000} {
		src := randomBytes(n, uint64(n))
		block := appendLiteralBlock(nil, src)
		dst := make([]byte, n)
		got, err := lz4.UncompressBlock(block, dst)
		require.NoError(t, err, "length %d", n)
		assert.Equal(t, n, got)
		assert.Equal(t, src, dst)
	}
}

func TestEncodeHelper(t *testing.T) {
	t.Parallel()

	repetitive := bytes.Repeat([]byte("z"), 10_000)
	data, packed := Encode(NewLZ4(), repetitive)
	assert.True(t, packed)
	assert.Less(t, len(data), len(repetitive))

	data, packed = Encode(NewLZ4(), []byte("x"))
	assert.False(t, packed)
	assert.Equal(t, []byte("x"), data)

	data, packed = Encode(nil, []byte("x"))
	assert.False(t, packed)
	assert.Equal(t, []byte("x"), data)
}

func TestEncodeKeepsFrameForLookalikeInput(t *testing.T) {
	t.Parallel()

	f := NewFactory()
	for _, sig := range []string{LZ4Signature, ZstdSignature, S2Signature} {
		lookalike := append([]byte(sig+"\x00"), 0x07, 0xFF)
		require.True(t, LooksFramed(lookalike), sig)

		for _, c := range []Compressor{NewLZ4(), NewZstd(), NewS2()} {
			data, packed := Encode(c, lookalike)
			require.True(t, packed, "%s over %s", c.Name(), sig)
			got, detected, err := Decode(f, data)
			require.NoError(t, err)
			assert.Equal(t, c.Name(), detected.Name())
			assert.Equal(t, lookalike, got)
		}

		data, packed := Encode(NewNone(), lookalike)
		assert.False(t, packed)
		assert.Equal(t, lookalike, data)
	}

	assert.False(t, LooksFramed([]byte("FTSLZ4")))
	assert.False(t, LooksFramed([]byte("FTSARC\x00")))
	assert.False(t, LooksFramed(nil))
}

func TestDecodeHelper(t *testing.T) {
	t.Parallel()

	f := NewFactory()
	input := bytes.Repeat([]byte("decode me "), 300)
	for _, c := range []Compressor{NewLZ4(), NewZstd(), NewS2()} {
		got, detected, err := Decode(f, compressed(t, c, input))
		require.NoError(t, err)
		assert.Equal(t, c.Name(), detected.Name())
		assert.Equal(t, input, got)
	}

	got, detected, err := Decode(f, []byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, NoneName, detected.Name())
	assert.Equal(t, []byte("plain"), got)

	got, _, err = Decode(f, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
