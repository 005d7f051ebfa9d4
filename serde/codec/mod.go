// Package codec defines the pure codec layer: named, synchronous transforms
// between in-memory values and wire bytes.
//
// A codec is selected by its identifier. Identifiers can be combined with the
// pipe character to chain codecs, so that "json|gzip" first encodes the value
// in JSON and then compresses the result. Decoding applies the chain in
// reverse order.
//
// The package keeps a default registry populated with the built-in codecs
// (json, raw, binary, gob, yaml, gzip). Additional codecs, or codecs for
// concrete protobuf messages, should be registered once at process start.
package codec

import (
	"strings"

	"golang.org/x/xerrors"
)

// Separator is the character used to chain codec identifiers.
const Separator = "|"

// ID is the identifier of a codec. It can be a single name or a chain of
// names separated by the pipe character.
type ID string

// IsComposite returns true when the identifier is a chain of codecs.
func (id ID) IsComposite() bool {
	return strings.Contains(string(id), Separator)
}

// Codec is the interface of a pure serialization transform. Implementations
// must be stateless and safe for concurrent use.
type Codec interface {
	// Encode returns the bytes of the value in the codec format.
	Encode(value interface{}) ([]byte, error)

	// Decode returns the value read from the codec format.
	Decode(data []byte) (interface{}, error)
}

// Registry is a store of codecs indexed by their name. Registrations are
// expected to happen at process start, before the registry is shared, as the
// store is not protected against concurrent writes.
type Registry struct {
	store map[ID]Codec
}

// NewRegistry returns a new empty codec registry.
func NewRegistry() *Registry {
	return &Registry{
		store: make(map[ID]Codec),
	}
}

// Register adds the codec to the registry under the given name. An existing
// codec with the same name is replaced.
func (r *Registry) Register(name ID, c Codec) {
	r.store[name] = c
}

// Resolve returns the codec for the identifier. A composite identifier is
// resolved into a chain applying each codec from left to right when encoding,
// and from right to left when decoding.
func (r *Registry) Resolve(id ID) (Codec, error) {
	names := strings.Split(string(id), Separator)

	codecs := make([]Codec, len(names))
	for i, name := range names {
		c := r.store[ID(name)]
		if c == nil {
			return nil, xerrors.Errorf("codec '%s' is not registered", name)
		}

		codecs[i] = c
	}

	if len(codecs) == 1 {
		return codecs[0], nil
	}

	return chain(codecs), nil
}

// Dumps encodes the value with the codec of the identifier.
func (r *Registry) Dumps(id ID, value interface{}) ([]byte, error) {
	c, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}

	return c.Encode(value)
}

// Loads decodes the data with the codec of the identifier.
func (r *Registry) Loads(id ID, data []byte) (interface{}, error) {
	c, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}

	return c.Decode(data)
}

// Chain is a codec that applies a sequence of codecs. Encoding runs the
// codecs in order, feeding each one the bytes of the previous. Decoding runs
// them in reverse.
//
// - implements codec.Codec
type chain []Codec

// Encode implements codec.Codec. It applies the codecs from left to right.
func (c chain) Encode(value interface{}) ([]byte, error) {
	data, err := c[0].Encode(value)
	if err != nil {
		return nil, err
	}

	for _, sub := range c[1:] {
		data, err = sub.Encode(data)
		if err != nil {
			return nil, err
		}
	}

	return data, nil
}

// Decode implements codec.Codec. It applies the codecs from right to left.
func (c chain) Decode(data []byte) (interface{}, error) {
	for i := len(c) - 1; i > 0; i-- {
		res, err := c[i].Decode(data)
		if err != nil {
			return nil, err
		}

		bytes, ok := res.([]byte)
		if !ok {
			return nil, xerrors.Errorf("chain step %d did not return bytes", i)
		}

		data = bytes
	}

	return c[0].Decode(data)
}

var defaultRegistry = makeDefault()

func makeDefault() *Registry {
	reg := NewRegistry()
	reg.Register("json", jsonCodec{})
	reg.Register("raw", rawCodec{})
	reg.Register("binary", binaryCodec{})
	reg.Register("gob", gobCodec{})
	reg.Register("yaml", yamlCodec{})
	reg.Register("gzip", gzipCodec{})

	return reg
}

// Default returns the registry holding the built-in codecs.
func Default() *Registry {
	return defaultRegistry
}

// Register adds the codec to the default registry.
func Register(name ID, c Codec) {
	defaultRegistry.Register(name, c)
}

// Dumps encodes the value using the default registry.
func Dumps(id ID, value interface{}) ([]byte, error) {
	return defaultRegistry.Dumps(id, value)
}

// Loads decodes the data using the default registry.
func Loads(id ID, data []byte) (interface{}, error) {
	return defaultRegistry.Loads(id, data)
}
