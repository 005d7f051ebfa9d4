// Package registry implements the serialization dispatcher of the pipeline.
//
// The dispatcher routes every key/value encode and decode through one of
// three paths: the pure codec layer, a cached remote serializer, or the
// typed-record path when the payload knows its own schema. Remote serializers
// are constructed lazily, at most once per alias, and cached for the lifetime
// of the registry.
//
// Decode failures are always reported as serde.KeyDecodeError or
// serde.ValueDecodeError. Encode failures propagate unwrapped: this asymmetry
// is part of the contract, callers of the encode path must be prepared to
// receive codec or remote serializer errors directly.
package registry

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.hermod.dev/hermod"
	"go.hermod.dev/hermod/serde"
	"go.hermod.dev/hermod/serde/codec"
	"go.hermod.dev/hermod/serde/record"
	"go.hermod.dev/hermod/serde/remote"
	"golang.org/x/xerrors"
)

// DefaultValueSerializer is the serializer used for values when none is
// configured.
const DefaultValueSerializer = codec.ID("json")

// Registry dispatches the serialization of message keys and values. One
// instance is shared by a whole pipeline.
//
// - implements serde.Registry
type Registry struct {
	keySerializer   codec.ID
	valueSerializer codec.ID

	codecs   *codec.Registry
	records  *record.Registry
	resolver remote.Resolver

	clients *xsync.MapOf[codec.ID, remote.Serializer]

	logger zerolog.Logger
}

// Option is a function to configure the registry at creation.
type Option func(*Registry)

// WithKeySerializer sets the default serializer for keys. Without it, keys
// are passed through as bytes.
func WithKeySerializer(id codec.ID) Option {
	return func(reg *Registry) {
		reg.keySerializer = id
	}
}

// WithValueSerializer sets the default serializer for values.
func WithValueSerializer(id codec.ID) Option {
	return func(reg *Registry) {
		reg.valueSerializer = id
	}
}

// WithCodecs sets the codec registry used for the pure serialization path.
func WithCodecs(codecs *codec.Registry) Option {
	return func(reg *Registry) {
		reg.codecs = codecs
	}
}

// WithRecords sets the record type registry used for self-describing
// reconstruction.
func WithRecords(records *record.Registry) Option {
	return func(reg *Registry) {
		reg.records = records
	}
}

// WithResolver sets the resolver of remote serializer aliases.
func WithResolver(resolver remote.Resolver) Option {
	return func(reg *Registry) {
		reg.resolver = resolver
	}
}

// NewRegistry returns a new registry. Without options, keys are passed
// through as bytes and values use the JSON codec.
func NewRegistry(opts ...Option) *Registry {
	reg := &Registry{
		valueSerializer: DefaultValueSerializer,
		codecs:          codec.Default(),
		records:         record.NewRegistry(),
		resolver:        remote.NewResolver(nil),
		clients:         xsync.NewMapOf[codec.ID, remote.Serializer](),
		logger: hermod.Logger.With().
			Str("component", "serde").
			Str("registry", xid.New().String()).
			Logger(),
	}

	for _, opt := range opts {
		opt(reg)
	}

	return reg
}

// KeySerializer implements serde.Registry. It returns the default serializer
// for keys.
func (reg *Registry) KeySerializer() codec.ID {
	return reg.keySerializer
}

// ValueSerializer implements serde.Registry. It returns the default
// serializer for values.
func (reg *Registry) ValueSerializer() codec.ID {
	return reg.valueSerializer
}

// LoadsKey implements serde.Registry. It decodes a message key. When the key
// bytes or the hint are absent the key is returned unchanged. Any failure is
// reported as a serde.KeyDecodeError carrying the message of the cause.
func (reg *Registry) LoadsKey(ctx context.Context, hint serde.Hint, key []byte) (interface{}, error) {
	if key == nil || hint == nil {
		observe(opLoadsKey, nil)
		if key == nil {
			return nil, nil
		}

		return key, nil
	}

	k, err := reg.loadsHinted(ctx, hint, reg.keySerializer, key)
	if err != nil {
		observe(opLoadsKey, err)
		reg.logger.Debug().Err(err).Msg("key decode failed")

		return nil, serde.NewKeyDecodeError(err)
	}

	observe(opLoadsKey, nil)

	return k, nil
}

// LoadsValue implements serde.Registry. It decodes a message value. Nil bytes
// return nil; otherwise the value is decoded with the default serializer even
// without a hint. Any failure is reported as a serde.ValueDecodeError
// carrying the message of the cause.
func (reg *Registry) LoadsValue(ctx context.Context, hint serde.Hint, value []byte) (interface{}, error) {
	if value == nil {
		observe(opLoadsValue, nil)

		return nil, nil
	}

	v, err := reg.loadsHinted(ctx, hint, reg.valueSerializer, value)
	if err != nil {
		observe(opLoadsValue, err)
		reg.logger.Debug().Err(err).Msg("value decode failed")

		return nil, serde.NewValueDecodeError(err)
	}

	observe(opLoadsValue, nil)

	return v, nil
}

// LoadsHinted decodes the data according to the hint. A nil hint, a codec
// identifier or a codec instance all decode with the default serializer of
// the slot and give the payload a chance to self-describe a record type. A
// record type hint decodes with the type's preferred serializer and
// constructs the type, unless the payload self-describes a subtype.
func (reg *Registry) loadsHinted(ctx context.Context, hint serde.Hint,
	fallback codec.ID, data []byte) (interface{}, error) {

	switch typ := hint.(type) {
	case nil, string, codec.ID, codec.Codec:
		return reg.loadsAny(ctx, fallback, data)
	case serde.Type:
		serializer := typ.Serializer()
		if serializer == "" {
			serializer = fallback
		}

		decoded, err := reg.loads(ctx, serializer, data)
		if err != nil {
			return nil, err
		}

		rec, ok, err := reg.records.Reconstruct(decoded)
		if err != nil {
			return nil, err
		}

		if ok {
			return rec, nil
		}

		return typ.New(decoded)
	default:
		return nil, xerrors.Errorf("unsupported hint of type %T", hint)
	}
}

// LoadsAny decodes the data with the serializer and gives the decoded
// structure a chance to reinterpret itself as a concrete record type. When it
// declines, the raw decoded value is returned.
func (reg *Registry) loadsAny(ctx context.Context, serializer codec.ID, data []byte) (interface{}, error) {
	decoded, err := reg.loads(ctx, serializer, data)
	if err != nil {
		return nil, err
	}

	rec, ok, err := reg.records.Reconstruct(decoded)
	if err != nil {
		return nil, err
	}

	if ok {
		return rec, nil
	}

	return decoded, nil
}

// Loads decodes the data with the serializer, going through the remote
// serializer of the alias if one is registered, otherwise through the pure
// codec layer. The empty serializer returns the data unchanged.
func (reg *Registry) loads(ctx context.Context, serializer codec.ID, data []byte) (interface{}, error) {
	if serializer == "" {
		return data, nil
	}

	client, err := reg.getSerializer(serializer)
	if err != nil {
		if !xerrors.Is(err, remote.ErrUnknownSerializer) {
			return nil, err
		}

		return reg.codecs.Loads(serializer, data)
	}

	return client.Loads(ctx, data)
}

// DumpsKey implements serde.Registry. It encodes a message key destined to
// the topic. A record key prefers its own serializer; otherwise the override
// or the registry default applies. Without any serializer the key is coerced
// to bytes. Failures propagate unwrapped.
func (reg *Registry) DumpsKey(ctx context.Context, topic string, key interface{},
	override codec.ID) ([]byte, error) {

	rec, isRecord := key.(serde.Record)

	serializer := reg.pickSerializer(rec, isRecord, override, reg.keySerializer)

	if serializer == "" {
		observe(opDumpsKey, nil)
		if key == nil {
			return nil, nil
		}

		return wantBytes(key)
	}

	client, err := reg.getSerializer(serializer)
	if err != nil {
		if !xerrors.Is(err, remote.ErrUnknownSerializer) {
			observe(opDumpsKey, err)

			return nil, err
		}

		if isRecord {
			data, err := rec.Dumps(serializer)
			observe(opDumpsKey, err)

			return data, err
		}

		data, err := reg.codecs.Dumps(serializer, key)
		observe(opDumpsKey, err)

		return data, err
	}

	data, err := client.DumpsKey(ctx, topic, key)
	observe(opDumpsKey, err)

	return data, err
}

// DumpsValue implements serde.Registry. It encodes a message value destined
// to the topic. A record value prefers its own serializer; otherwise the
// override or the registry default applies. Without any serializer the value
// must already be bytes. Failures propagate unwrapped.
func (reg *Registry) DumpsValue(ctx context.Context, topic string, value interface{},
	override codec.ID) ([]byte, error) {

	rec, isRecord := value.(serde.Record)

	serializer := reg.pickSerializer(rec, isRecord, override, reg.valueSerializer)

	if serializer == "" {
		observe(opDumpsValue, nil)
		if value == nil {
			return nil, nil
		}

		data, ok := value.([]byte)
		if !ok {
			err := xerrors.Errorf("value of type %T is not bytes", value)
			observe(opDumpsValue, err)

			return nil, err
		}

		return data, nil
	}

	client, err := reg.getSerializer(serializer)
	if err != nil {
		if !xerrors.Is(err, remote.ErrUnknownSerializer) {
			observe(opDumpsValue, err)

			return nil, err
		}

		if isRecord {
			data, err := rec.Dumps(serializer)
			observe(opDumpsValue, err)

			return data, err
		}

		data, err := reg.codecs.Dumps(serializer, value)
		observe(opDumpsValue, err)

		return data, err
	}

	data, err := client.DumpsValue(ctx, topic, value)
	observe(opDumpsValue, err)

	return data, err
}

// PickSerializer returns the effective serializer for the encode path. A
// record prefers its own serializer before the registry default; anything
// else uses the override before the registry default.
func (reg *Registry) pickSerializer(rec serde.Record, isRecord bool,
	override, fallback codec.ID) codec.ID {

	if isRecord {
		if serializer := rec.Serializer(); serializer != "" {
			return serializer
		}

		return fallback
	}

	if override != "" {
		return override
	}

	return fallback
}

// GetSerializer returns the remote serializer of the alias. The first
// successful resolution constructs the serializer and caches it; later calls
// return the cached instance. The construction goes through LoadOrCompute so
// that concurrent first uses of the same alias still build a single
// instance.
func (reg *Registry) getSerializer(name codec.ID) (remote.Serializer, error) {
	client, ok := reg.clients.Load(name)
	if ok {
		return client, nil
	}

	factory, err := reg.resolver.Resolve(name)
	if err != nil {
		return nil, xerrors.Errorf("failed to resolve serializer: %w", err)
	}

	client, loaded := reg.clients.LoadOrCompute(name, func() remote.Serializer {
		return factory(reg)
	})

	if !loaded {
		reg.logger.Info().
			Str("serializer", string(name)).
			Msg("remote serializer created")
	}

	return client, nil
}

// WantBytes coerces the key to bytes for the no-serializer path. Only byte
// slices and strings are accepted.
func wantBytes(key interface{}) ([]byte, error) {
	switch k := key.(type) {
	case []byte:
		return k, nil
	case string:
		return []byte(k), nil
	default:
		return nil, xerrors.Errorf("cannot coerce %T to bytes", key)
	}
}
