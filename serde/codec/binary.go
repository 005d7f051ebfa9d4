package codec

import (
	"encoding/base64"

	"golang.org/x/xerrors"
)

// BinaryCodec is a codec using the standard Base64 encoding. It is mostly
// useful as the tail of a chain to make binary payloads text-safe, as in
// "json|binary".
//
// - implements codec.Codec
type binaryCodec struct{}

// NewBinary returns a codec using the standard Base64 encoding.
func NewBinary() Codec {
	return binaryCodec{}
}

// Encode implements codec.Codec. It returns the Base64 encoding of the bytes.
func (binaryCodec) Encode(value interface{}) ([]byte, error) {
	var data []byte

	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil, xerrors.Errorf("binary codec expects bytes, got %T", value)
	}

	buffer := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(buffer, data)

	return buffer, nil
}

// Decode implements codec.Codec. It returns the bytes read from the Base64
// encoding.
func (binaryCodec) Decode(data []byte) (interface{}, error) {
	buffer := make([]byte, base64.StdEncoding.DecodedLen(len(data)))

	n, err := base64.StdEncoding.Decode(buffer, data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode base64: %v", err)
	}

	return buffer[:n], nil
}
