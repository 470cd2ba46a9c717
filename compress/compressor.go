// Package compress provides the codecs used for archive payloads and whole
// archives.
//
// Every codec except the identity codec frames its output as
//
//	[signature, NUL-terminated][version u8 = 1][uncompressed size u64-LE][codec bytes]
//
// so that a Factory can recognize which codec produced a payload by looking
// at its first bytes. The identity codec recognizes everything and is always
// consulted last.
//
// Compressor instances carry their own scratch memory and last-problem
// state. Use Copy to obtain an independent instance for each goroutine.
package compress

import "github.com/meigma/ftsarc/stream"

// Compressor encodes and decodes byte payloads.
type Compressor interface {
	// Name returns the short identifier used for lookup, e.g. "lz4".
	Name() string

	// Description returns a human-readable summary of the codec.
	Description() string

	// Signature returns the frame signature, or "" for the identity codec.
	Signature() string

	// LastProblem describes the most recent failure, or "" if the last
	// operation succeeded.
	LastProblem() string

	// IsMyType reports whether p looks like this codec's output.
	IsMyType(p []byte) bool

	// Copy returns an independent instance with fresh scratch state.
	Copy() Compressor

	// Compress inserts the encoded form of in at out's cursor. It reports
	// whether the encoded form is strictly smaller than in. On error out is
	// left unchanged.
	Compress(out *stream.Stream, in []byte) (bool, error)

	// Decompress inserts the decoded form of in at out's cursor. On error out
	// is left unchanged.
	Decompress(out *stream.Stream, in []byte) error
}

// Encode compresses p with c when that makes it smaller and returns the bytes
// to store along with whether they are compressed. A codec failure is not an
// error here: the input is stored as-is.
//
// Input that starts with a built-in codec signature is kept framed even when
// the frame is larger, so the stored bytes are never mistaken for a frame.
func Encode(c Compressor, p []byte) ([]byte, bool) {
	if c == nil {
		return p, false
	}
	out := stream.New()
	smaller, err := c.Compress(out, p)
	switch {
	case err != nil:
		return p, false
	case smaller:
		return out.Bytes(), true
	case c.Signature() != "" && LooksFramed(p) && c.IsMyType(out.Bytes()):
		return out.Bytes(), true
	default:
		return p, false
	}
}

// LooksFramed reports whether p starts with the signature of a built-in
// codec and would be detected as a frame on load.
func LooksFramed(p []byte) bool {
	for _, c := range builtins() {
		if c.IsMyType(p) {
			return true
		}
	}
	return false
}

// Decode detects the codec of p using f, decompresses it, and returns the
// decoded bytes together with a fresh instance of the detected codec.
func Decode(f *Factory, p []byte) ([]byte, Compressor, error) {
	c := f.Determine(p)
	out := stream.New()
	if err := c.Decompress(out, p); err != nil {
		return nil, c, err
	}
	if out.Invalid() {
		return []byte{}, c, nil
	}
	return out.Bytes(), c, nil
}
