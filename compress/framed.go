package compress

import (
	"bytes"
	"fmt"

	"github.com/meigma/ftsarc/buffer"
	"github.com/meigma/ftsarc/internal/arctype"
	"github.com/meigma/ftsarc/internal/sizing"
	"github.com/meigma/ftsarc/stream"
)

// FrameVersion is the only frame version this package reads and writes.
const FrameVersion uint8 = 1

// DefaultMaxDecodedSize bounds the uncompressed size a frame may declare.
const DefaultMaxDecodedSize = 4 << 30

// blockCodec is the raw encoder behind a Framed compressor.
type blockCodec interface {
	// encode appends the encoding of src to dst.
	encode(dst, src []byte) ([]byte, error)
	// decode decodes src into dst and returns the number of bytes produced.
	// A result different from len(dst) is reported as a size mismatch.
	decode(dst, src []byte) (int, error)
	// fresh returns a codec with its own scratch state.
	fresh() blockCodec
}

// Framed is a Compressor that wraps a block codec in the signed frame format.
type Framed struct {
	name        string
	description string
	signature   string
	maxDecoded  uint64
	codec       blockCodec
	lastProblem string
}

// Option configures a Framed compressor.
type Option func(*Framed)

// WithMaxDecodedSize limits the uncompressed size accepted by Decompress.
// Zero uses DefaultMaxDecodedSize.
func WithMaxDecodedSize(limit uint64) Option {
	return func(f *Framed) {
		f.maxDecoded = limit
	}
}

func newFramed(name, description, signature string, codec blockCodec, opts []Option) *Framed {
	f := &Framed{
		name:        name,
		description: description,
		signature:   signature,
		codec:       codec,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxDecoded == 0 {
		f.maxDecoded = DefaultMaxDecodedSize
	}
	return f
}

// Name implements Compressor.
func (f *Framed) Name() string { return f.name }

// Description implements Compressor.
func (f *Framed) Description() string { return f.description }

// Signature implements Compressor.
func (f *Framed) Signature() string { return f.signature }

// LastProblem implements Compressor.
func (f *Framed) LastProblem() string { return f.lastProblem }

// IsMyType reports whether p starts with this codec's NUL-terminated
// signature.
func (f *Framed) IsMyType(p []byte) bool {
	return len(p) > len(f.signature) &&
		p[len(f.signature)] == 0 &&
		bytes.HasPrefix(p, []byte(f.signature))
}

// Copy implements Compressor.
func (f *Framed) Copy() Compressor {
	return &Framed{
		name:        f.name,
		description: f.description,
		signature:   f.signature,
		maxDecoded:  f.maxDecoded,
		codec:       f.codec.fresh(),
	}
}

// Compress implements Compressor.
func (f *Framed) Compress(out *stream.Stream, in []byte) (bool, error) {
	f.lastProblem = ""

	frame := stream.New()
	frame.InsertString(f.signature)
	stream.Insert(frame, FrameVersion)
	stream.Insert(frame, sizing.Len(in))
	header := frame.Bytes()

	encoded := header
	if len(in) > 0 {
		var err error
		encoded, err = f.codec.encode(header, in)
		if err != nil {
			return false, f.fail("compress", arctype.KindInvalidParam, fmt.Sprintf("encode: %v", err))
		}
	}
	out.Insert(encoded)
	return len(encoded) < len(in), nil
}

// Decompress implements Compressor.
func (f *Framed) Decompress(out *stream.Stream, in []byte) error {
	f.lastProblem = ""

	if !f.IsMyType(in) {
		return f.fail("decompress", arctype.KindCorruptData, "signature mismatch")
	}
	r := stream.NewReader(buffer.NewView(in))
	r.ReadString()
	version, ok := stream.ReadValue[uint8](r)
	if !ok {
		return f.fail("decompress", arctype.KindCorruptData, "truncated frame header")
	}
	if version != FrameVersion {
		return f.fail("decompress", arctype.KindCorruptData, fmt.Sprintf("unsupported frame version %d", version))
	}
	size, ok := stream.ReadValue[uint64](r)
	if !ok {
		return f.fail("decompress", arctype.KindCorruptData, "truncated frame header")
	}
	if size > f.maxDecoded {
		return f.fail("decompress", arctype.KindCorruptData,
			fmt.Sprintf("declared size %d exceeds limit %d", size, f.maxDecoded))
	}
	n, err := sizing.ToInt(size, arctype.ErrCorruptData)
	if err != nil {
		return f.fail("decompress", arctype.KindCorruptData, "declared size overflows")
	}

	if n == 0 {
		if r.SizeTillEnd() != 0 {
			return f.fail("decompress", arctype.KindCorruptData, "trailing data after empty frame")
		}
		return nil
	}

	decoded := make([]byte, n)
	got, err := f.codec.decode(decoded, r.Remaining())
	if err != nil {
		return f.fail("decompress", arctype.KindCorruptData, fmt.Sprintf("decode: %v", err))
	}
	if got != n {
		return f.fail("decompress", arctype.KindCorruptData,
			fmt.Sprintf("size mismatch: frame declares %d bytes, decoded %d", n, got))
	}
	out.Insert(decoded)
	return nil
}

func (f *Framed) fail(op string, kind arctype.Kind, problem string) error {
	f.lastProblem = problem
	return &arctype.Error{Op: op, Kind: kind, Compressor: f.name, Problem: problem}
}
