package compress

import "strings"

// Info describes a registered codec.
type Info struct {
	Name        string
	Description string
	Signature   string
}

// Factory holds codec prototypes in detection order. The identity codec is
// always last, so detection never fails.
type Factory struct {
	protos []Compressor
}

// NewFactory returns a factory with the built-in codecs (lz4, zstd, s2), then
// extra, then the identity codec.
func NewFactory(extra ...Compressor) *Factory {
	protos := make([]Compressor, 0, len(extra)+4)
	protos = append(protos, builtins()...)
	for _, c := range extra {
		if c != nil {
			protos = append(protos, c)
		}
	}
	protos = append(protos, NewNone())
	return &Factory{protos: protos}
}

func builtins() []Compressor {
	return []Compressor{NewLZ4(), NewZstd(), NewS2()}
}

// Determine returns a fresh instance of the first codec that recognizes p.
func (f *Factory) Determine(p []byte) Compressor {
	for _, c := range f.protos {
		if c.IsMyType(p) {
			return c.Copy()
		}
	}
	return NewNone()
}

// Create returns a fresh instance of the named codec, or the identity codec
// if no codec has that name. Names are matched case-insensitively.
func (f *Factory) Create(name string) Compressor {
	if c, ok := f.Lookup(name); ok {
		return c
	}
	return NewNone()
}

// Lookup returns a fresh instance of the named codec and whether it exists.
func (f *Factory) Lookup(name string) (Compressor, bool) {
	for _, c := range f.protos {
		if strings.EqualFold(c.Name(), name) {
			return c.Copy(), true
		}
	}
	return nil, false
}

// Default returns a fresh instance of the default codec.
func (f *Factory) Default() Compressor {
	return f.Create(LZ4Name)
}

// List describes the registered codecs in detection order.
func (f *Factory) List() []Info {
	infos := make([]Info, len(f.protos))
	for i, c := range f.protos {
		infos[i] = Info{Name: c.Name(), Description: c.Description(), Signature: c.Signature()}
	}
	return infos
}
