package codec

import (
	"bytes"
	"encoding/gob"
)

// GobCodec is a codec using the standard gob format. Concrete types carried
// inside interface values must be registered with gob.Register beforehand.
//
// - implements codec.Codec
type gobCodec struct{}

// NewGob returns a codec using the standard gob format.
func NewGob() Codec {
	return gobCodec{}
}

// Encode implements codec.Codec. It returns the value encoded with gob.
func (gobCodec) Encode(value interface{}) ([]byte, error) {
	buffer := new(bytes.Buffer)

	err := gob.NewEncoder(buffer).Encode(&value)
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// Decode implements codec.Codec. It returns the value decoded with gob.
func (gobCodec) Decode(data []byte) (interface{}, error) {
	var value interface{}

	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&value)
	if err != nil {
		return nil, err
	}

	return value, nil
}
