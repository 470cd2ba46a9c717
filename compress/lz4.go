package compress

import (
	"slices"

	"github.com/pierrec/lz4/v4"
)

// LZ4 codec identity.
const (
	LZ4Name      = "lz4"
	LZ4Signature = "FTSLZ4"
)

// NewLZ4 returns the LZ4 block codec. It is the default codec: fast on both
// ends with a moderate ratio.
func NewLZ4(opts ...Option) *Framed {
	return newFramed(LZ4Name, "LZ4 block compression, fast with a moderate ratio",
		LZ4Signature, &lz4Block{}, opts)
}

// lz4Block keeps the match-finder hash table per instance.
type lz4Block struct {
	c lz4.Compressor
}

func (b *lz4Block) fresh() blockCodec { return &lz4Block{} }

func (b *lz4Block) encode(dst, src []byte) ([]byte, error) {
	start := len(dst)
	bound := lz4.CompressBlockBound(len(src))
	dst = slices.Grow(dst, bound)[:start+bound]
	n, err := b.c.CompressBlock(src, dst[start:])
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// The encoder gives up on incompressible input; a literal-only block
		// is still a valid stream.
		return appendLiteralBlock(dst[:start], src), nil
	}
	return dst[:start+n], nil
}

func (b *lz4Block) decode(dst, src []byte) (int, error) {
	return lz4.UncompressBlock(src, dst)
}

// appendLiteralBlock appends an LZ4 block consisting of a single sequence of
// literals with no match.
func appendLiteralBlock(dst, src []byte) []byte {
	n := len(src)
	if n < 15 {
		dst = append(dst, byte(n<<4))
	} else {
		dst = append(dst, 0xF0)
		rest := n - 15
		for rest >= 255 {
			dst = append(dst, 255)
			rest -= 255
		}
		dst = append(dst, byte(rest))
	}
	return append(dst, src...)
}
