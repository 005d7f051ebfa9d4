package codec

import (
	"golang.org/x/xerrors"
)

// RawCodec is a codec that passes bytes through unchanged. Strings are
// converted to their bytes when encoding; anything else is refused.
//
// - implements codec.Codec
type rawCodec struct{}

// NewRaw returns a codec that passes bytes through unchanged.
func NewRaw() Codec {
	return rawCodec{}
}

// Encode implements codec.Codec. It returns the value as bytes.
func (rawCodec) Encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, xerrors.Errorf("raw codec expects bytes, got %T", value)
	}
}

// Decode implements codec.Codec. It returns the data unchanged.
func (rawCodec) Decode(data []byte) (interface{}, error) {
	return data, nil
}
