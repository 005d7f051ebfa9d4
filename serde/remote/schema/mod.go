// Package schema implements a remote serializer that frames payloads with a
// schema identifier, in the manner of registry-backed wire formats: a magic
// byte, a 4-byte big-endian schema id, then the JSON body of the record.
//
// Identifiers are resolved through a local bbolt-backed store standing in for
// the schema cache of a registry client. Talking to an actual remote registry
// is out of scope; implementations that do can reuse the same framing.
package schema

import (
	"context"
	"encoding/binary"
	"encoding/json"

	"go.hermod.dev/hermod/serde"
	"go.hermod.dev/hermod/serde/record"
	"go.hermod.dev/hermod/serde/remote"
	"golang.org/x/xerrors"
)

// Magic is the first byte of every framed payload.
const Magic = byte(0x0)

const headerLen = 5

// Serializer encodes records with a schema-id frame, registering their
// namespace in the store on first use.
//
// - implements remote.Serializer
type Serializer struct {
	reg   serde.Registry
	store *Store
}

// NewFactory returns a factory building schema serializers bound to the
// store. The factory is meant to be registered in a remote.Resolver under the
// alias of the format.
func NewFactory(store *Store) remote.Factory {
	return func(reg serde.Registry) remote.Serializer {
		return &Serializer{
			reg:   reg,
			store: store,
		}
	}
}

// Loads implements remote.Serializer. It checks the frame, verifies that the
// schema id is known and returns the decoded body. The body self-describes
// its record type, so the dispatcher can reconstruct the concrete record.
func (s *Serializer) Loads(ctx context.Context, data []byte) (interface{}, error) {
	if len(data) < headerLen || data[0] != Magic {
		return nil, xerrors.New("malformed schema frame")
	}

	id := binary.BigEndian.Uint32(data[1:headerLen])

	namespace, err := s.store.Lookup(id)
	if err != nil {
		return nil, xerrors.Errorf("failed to look schema up: %v", err)
	}

	var body interface{}

	err = json.Unmarshal(data[headerLen:], &body)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode body: %v", err)
	}

	fields, ok := body.(map[string]interface{})
	if !ok || fields[record.NamespaceKey] != namespace {
		return nil, xerrors.Errorf("body does not match schema '%s'", namespace)
	}

	return body, nil
}

// DumpsKey implements remote.Serializer. It encodes a message key.
func (s *Serializer) DumpsKey(ctx context.Context, topic string, key interface{}) ([]byte, error) {
	return s.dumps(key)
}

// DumpsValue implements remote.Serializer. It encodes a message value.
func (s *Serializer) DumpsValue(ctx context.Context, topic string, value interface{}) ([]byte, error) {
	return s.dumps(value)
}

func (s *Serializer) dumps(value interface{}) ([]byte, error) {
	rec, ok := value.(record.Base)
	if !ok {
		return nil, xerrors.Errorf("schema serializer expects a record, got %T", value)
	}

	id, err := s.store.Register(rec.Namespace())
	if err != nil {
		return nil, xerrors.Errorf("failed to register schema: %v", err)
	}

	payload := rec.Fields()
	payload[record.NamespaceKey] = rec.Namespace()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode body: %v", err)
	}

	data := make([]byte, headerLen, headerLen+len(body))
	data[0] = Magic
	binary.BigEndian.PutUint32(data[1:], id)

	return append(data, body...), nil
}
