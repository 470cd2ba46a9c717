package compress

import "github.com/meigma/ftsarc/stream"

// NoneName is the name of the identity codec.
const NoneName = "none"

// None is the identity codec. It stores bytes verbatim and recognizes any
// input.
type None struct{}

// NewNone returns the identity codec.
func NewNone() *None { return &None{} }

// Name implements Compressor.
func (*None) Name() string { return NoneName }

// Description implements Compressor.
func (*None) Description() string { return "stores data without compression" }

// Signature implements Compressor.
func (*None) Signature() string { return "" }

// LastProblem implements Compressor.
func (*None) LastProblem() string { return "" }

// IsMyType implements Compressor.
func (*None) IsMyType([]byte) bool { return true }

// Copy implements Compressor.
func (*None) Copy() Compressor { return &None{} }

// Compress copies in verbatim. The copy is never smaller, so it always
// reports false.
func (*None) Compress(out *stream.Stream, in []byte) (bool, error) {
	out.Insert(in)
	return false, nil
}

// Decompress copies in verbatim.
func (*None) Decompress(out *stream.Stream, in []byte) error {
	out.Insert(in)
	return nil
}
