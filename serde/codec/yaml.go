package codec

import (
	"gopkg.in/yaml.v2"
)

// YAMLCodec is a codec using the YAML format.
//
// - implements codec.Codec
type yamlCodec struct{}

// NewYAML returns a codec using the YAML format.
func NewYAML() Codec {
	return yamlCodec{}
}

// Encode implements codec.Codec. It returns the value marshaled in YAML.
func (yamlCodec) Encode(value interface{}) ([]byte, error) {
	return yaml.Marshal(value)
}

// Decode implements codec.Codec. It returns the value unmarshaled from YAML.
func (yamlCodec) Decode(data []byte) (interface{}, error) {
	var value interface{}

	err := yaml.Unmarshal(data, &value)
	if err != nil {
		return nil, err
	}

	return value, nil
}
