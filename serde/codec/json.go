package codec

import (
	"encoding/json"
)

// JSONCodec is a codec using the JSON format.
//
// - implements codec.Codec
type jsonCodec struct{}

// NewJSON returns a codec using the JSON format.
func NewJSON() Codec {
	return jsonCodec{}
}

// Encode implements codec.Codec. It returns the value marshaled in JSON.
func (jsonCodec) Encode(value interface{}) ([]byte, error) {
	return json.Marshal(value)
}

// Decode implements codec.Codec. It returns the value unmarshaled from JSON.
func (jsonCodec) Decode(data []byte) (interface{}, error) {
	var value interface{}

	err := json.Unmarshal(data, &value)
	if err != nil {
		return nil, err
	}

	return value, nil
}
