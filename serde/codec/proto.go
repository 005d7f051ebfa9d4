package codec

import (
	"github.com/golang/protobuf/proto"
	"golang.org/x/xerrors"
)

// ProtoCodec is a codec for one concrete protobuf message type. The factory
// provides the empty message that decoding populates.
//
// - implements codec.Codec
type protoCodec struct {
	factory func() proto.Message
}

// NewProto returns a codec for the protobuf message type created by the
// factory. The codec is typically registered under the fully qualified name
// of the message.
func NewProto(factory func() proto.Message) Codec {
	return protoCodec{
		factory: factory,
	}
}

// Encode implements codec.Codec. It returns the message marshaled in the
// protobuf wire format.
func (c protoCodec) Encode(value interface{}) ([]byte, error) {
	msg, ok := value.(proto.Message)
	if !ok {
		return nil, xerrors.Errorf("proto codec expects a message, got %T", value)
	}

	return proto.Marshal(msg)
}

// Decode implements codec.Codec. It returns a new message populated from the
// protobuf wire format.
func (c protoCodec) Decode(data []byte) (interface{}, error) {
	msg := c.factory()

	err := proto.Unmarshal(data, msg)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal message: %v", err)
	}

	return msg, nil
}
