package record

import (
	"go.hermod.dev/hermod/serde"
	"go.hermod.dev/hermod/serde/codec"
	"golang.org/x/xerrors"
)

// Base is a generic map-backed record. It carries the namespace of its type,
// the preferred serializer inherited from the type and the decoded fields.
//
// - implements serde.Record
type Base struct {
	namespace  string
	serializer codec.ID
	fields     map[string]interface{}
}

// Namespace returns the namespace of the record type.
func (b Base) Namespace() string {
	return b.namespace
}

// Serializer implements serde.Record. It returns the preferred serializer of
// the record, or the empty identifier.
func (b Base) Serializer() codec.ID {
	return b.serializer
}

// Field returns the value of the field, or nil.
func (b Base) Field(name string) interface{} {
	return b.fields[name]
}

// Fields returns a copy of the fields of the record, without the namespace
// entry.
func (b Base) Fields() map[string]interface{} {
	fields := make(map[string]interface{}, len(b.fields))
	for name, value := range b.fields {
		if name != NamespaceKey {
			fields[name] = value
		}
	}

	return fields
}

// Dumps implements serde.Record. It encodes the fields with the codec of the
// identifier, including the namespace entry so that the payload
// self-describes its type.
func (b Base) Dumps(id codec.ID) ([]byte, error) {
	payload := b.Fields()
	payload[NamespaceKey] = b.namespace

	data, err := codec.Dumps(id, payload)
	if err != nil {
		return nil, xerrors.Errorf("failed to dump record '%s': %v", b.namespace, err)
	}

	return data, nil
}

// BaseType is the record type producing Base records.
//
// - implements serde.Type
type baseType struct {
	namespace  string
	serializer codec.ID
}

// NewType returns a record type for the namespace. The serializer is the
// preferred serializer for instances of the type; the empty identifier defers
// to the registry default.
func NewType(namespace string, serializer codec.ID) serde.Type {
	return baseType{
		namespace:  namespace,
		serializer: serializer,
	}
}

// Namespace implements serde.Type. It returns the namespace of the type.
func (t baseType) Namespace() string {
	return t.namespace
}

// Serializer implements serde.Type. It returns the preferred serializer of
// the type.
func (t baseType) Serializer() codec.ID {
	return t.serializer
}

// New implements serde.Type. It returns a record built from the decoded
// payload, which must be a map.
func (t baseType) New(data interface{}) (serde.Record, error) {
	fields, ok := asMap(data)
	if !ok {
		return nil, xerrors.Errorf("record '%s' expects a map, got %T", t.namespace, data)
	}

	return Base{
		namespace:  t.namespace,
		serializer: t.serializer,
		fields:     fields,
	}, nil
}

// New returns a record of the type with the given fields. It is the
// constructor used by producers; consumers get records back from the
// dispatcher.
func New(t serde.Type, fields map[string]interface{}) Base {
	copied := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		copied[name] = value
	}

	return Base{
		namespace:  t.Namespace(),
		serializer: t.Serializer(),
		fields:     copied,
	}
}
