// Package serde defines the contracts of the serialization dispatcher that
// converts between wire bytes (message keys and values) and typed in-memory
// records.
//
// The dispatcher routes every operation through one of three paths: the pure
// codec layer for plain values, a cached remote serializer for codecs that
// need I/O (typically a schema registry lookup), or the typed-record path for
// values that know their own schema. The concrete dispatcher lives in the
// registry subpackage; this package only holds the contracts shared between
// the dispatcher, the typed records and the remote serializers.
package serde

import (
	"context"

	"go.hermod.dev/hermod/serde/codec"
)

// Hint restricts how the dispatcher interprets a payload when decoding. The
// accepted values are:
//   - nil, meaning no hint: keys are passed through unchanged, values are
//     decoded with the default serializer;
//   - a codec.ID or a codec.Codec, which is treated like no hint except that
//     the decoded structure may still self-describe a record type;
//   - a Type, which decodes with the type's preferred serializer and
//     constructs an instance of the type.
//
// Any other value makes the operation fail.
type Hint interface{}

// Record is a typed value that knows how to serialize itself.
type Record interface {
	// Serializer returns the preferred serializer of the record, or the
	// empty identifier when the record has no preference.
	Serializer() codec.ID

	// Dumps returns the self-describing bytes of the record in the given
	// serializer, so that decoding can reconstruct the concrete type.
	Dumps(id codec.ID) ([]byte, error)
}

// Type describes a record type registered in the pipeline. It acts as the
// decode hint for payloads of that type.
type Type interface {
	// Namespace returns the unique name of the type, used by payloads to
	// self-describe their concrete type.
	Namespace() string

	// Serializer returns the preferred serializer for instances of the
	// type, or the empty identifier when the registry default applies.
	Serializer() codec.ID

	// New returns a record built from the decoded data.
	New(data interface{}) (Record, error)
}

// Registry is the dispatcher of serialization operations for the keys and
// values of a message pipeline. Remote serializer factories receive the
// registry they are attached to, so that they can read its configuration.
type Registry interface {
	// LoadsKey decodes a message key. A nil hint or nil bytes short-circuit
	// and return the key unchanged.
	LoadsKey(ctx context.Context, hint Hint, key []byte) (interface{}, error)

	// LoadsValue decodes a message value. Nil bytes return nil; otherwise
	// the value is decoded even without a hint.
	LoadsValue(ctx context.Context, hint Hint, value []byte) (interface{}, error)

	// DumpsKey encodes a message key for the topic. The override selects
	// the serializer when the key is not a record.
	DumpsKey(ctx context.Context, topic string, key interface{}, override codec.ID) ([]byte, error)

	// DumpsValue encodes a message value for the topic. The override
	// selects the serializer when the value is not a record.
	DumpsValue(ctx context.Context, topic string, value interface{}, override codec.ID) ([]byte, error)

	// KeySerializer returns the default serializer for keys, or the empty
	// identifier when keys are not serialized.
	KeySerializer() codec.ID

	// ValueSerializer returns the default serializer for values.
	ValueSerializer() codec.ID
}
