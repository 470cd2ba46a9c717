package compress

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Zstandard codec identity.
const (
	ZstdName      = "zstd"
	ZstdSignature = "FTSZSTD"
)

// The decoder is safe for concurrent DecodeAll calls, so one instance serves
// every zstd compressor in the process.
var (
	zstdDecoderOnce sync.Once
	zstdDecoder     *zstd.Decoder
	errZstdDecoder  error
)

func sharedZstdDecoder() (*zstd.Decoder, error) {
	zstdDecoderOnce.Do(func() {
		zstdDecoder, errZstdDecoder = zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(0),
			zstd.WithDecoderMaxMemory(DefaultMaxDecodedSize),
		)
	})
	return zstdDecoder, errZstdDecoder
}

// NewZstd returns the Zstandard codec: slower than LZ4, with a better ratio.
func NewZstd(opts ...Option) *Framed {
	return newFramed(ZstdName, "Zstandard compression, higher ratio at more CPU cost",
		ZstdSignature, &zstdBlock{}, opts)
}

// zstdBlock owns its encoder; it is created on first use.
type zstdBlock struct {
	enc *zstd.Encoder
}

func (b *zstdBlock) fresh() blockCodec { return &zstdBlock{} }

func (b *zstdBlock) encode(dst, src []byte) ([]byte, error) {
	if b.enc == nil {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
		if err != nil {
			return nil, err
		}
		b.enc = enc
	}
	return b.enc.EncodeAll(src, dst), nil
}

func (b *zstdBlock) decode(dst, src []byte) (int, error) {
	dec, err := sharedZstdDecoder()
	if err != nil {
		return 0, err
	}
	out, err := dec.DecodeAll(src, dst[:0])
	if err != nil {
		return 0, err
	}
	if len(out) == len(dst) {
		copy(dst, out)
	}
	return len(out), nil
}
