package compress

import (
	"github.com/klauspost/compress/s2"
)

// S2 codec identity.
const (
	S2Name      = "s2"
	S2Signature = "FTSS2"
)

// NewS2 returns the S2 codec, a Snappy-compatible block format tuned for
// throughput.
func NewS2(opts ...Option) *Framed {
	return newFramed(S2Name, "S2 block compression, very high throughput",
		S2Signature, s2Block{}, opts)
}

type s2Block struct{}

func (s2Block) fresh() blockCodec { return s2Block{} }

func (s2Block) encode(dst, src []byte) ([]byte, error) {
	return append(dst, s2.EncodeBetter(nil, src)...), nil
}

func (s2Block) decode(dst, src []byte) (int, error) {
	n, err := s2.DecodedLen(src)
	if err != nil {
		return 0, err
	}
	if n != len(dst) {
		return n, nil
	}
	out, err := s2.Decode(dst, src)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}
