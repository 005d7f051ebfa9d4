package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.hermod.dev/hermod/internal/testing/fake"
	"go.hermod.dev/hermod/serde"
	"go.hermod.dev/hermod/serde/codec"
	"go.hermod.dev/hermod/serde/record"
	"go.hermod.dev/hermod/serde/remote"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	require.Equal(t, codec.ID(""), reg.KeySerializer())
	require.Equal(t, DefaultValueSerializer, reg.ValueSerializer())

	reg = NewRegistry(WithKeySerializer("raw"), WithValueSerializer("gob"))

	require.Equal(t, codec.ID("raw"), reg.KeySerializer())
	require.Equal(t, codec.ID("gob"), reg.ValueSerializer())
}

func TestRegistry_LoadsKey_ShortCircuit(t *testing.T) {
	reg := NewRegistry(WithKeySerializer("json"))

	// No hint: the raw key is returned unchanged, no codec is invoked.
	key, err := reg.LoadsKey(context.Background(), nil, []byte(`{"a": 1}`))
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a": 1}`), key)

	// No bytes: nil is returned unchanged.
	key, err = reg.LoadsKey(context.Background(), codec.ID("json"), nil)
	require.NoError(t, err)
	require.Nil(t, key)
}

func TestRegistry_LoadsKey_Codec(t *testing.T) {
	reg := NewRegistry(WithKeySerializer("json"))

	key, err := reg.LoadsKey(context.Background(), codec.ID("json"), []byte(`{"a": 1}`))
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"a": float64(1)}, key)
}

func TestRegistry_LoadsKey_Error(t *testing.T) {
	codecs := codec.NewRegistry()
	codecs.Register("json", fake.NewBadCodec())

	reg := NewRegistry(WithKeySerializer("json"), WithCodecs(codecs))

	_, err := reg.LoadsKey(context.Background(), codec.ID("json"), []byte(`{}`))
	require.EqualError(t, err, "failed to decode key: fake error")

	var decodeErr *serde.KeyDecodeError
	require.True(t, errors.As(err, &decodeErr))
}

func TestRegistry_LoadsValue_NilBytes(t *testing.T) {
	reg := NewRegistry()

	value, err := reg.LoadsValue(context.Background(), fake.RecordType{}, nil)
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestRegistry_LoadsValue_NoHint(t *testing.T) {
	reg := NewRegistry()

	value, err := reg.LoadsValue(context.Background(), nil, []byte(`{"a": 1}`))
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"a": float64(1)}, value)
}

func TestRegistry_LoadsValue_SelfDescribing(t *testing.T) {
	records := record.NewRegistry()
	records.Register(record.NewType("test.Point", ""))

	reg := NewRegistry(WithRecords(records))

	value, err := reg.LoadsValue(context.Background(), nil,
		[]byte(`{"__ns": "test.Point", "x": 1}`))
	require.NoError(t, err)

	rec, ok := value.(record.Base)
	require.True(t, ok)
	require.Equal(t, "test.Point", rec.Namespace())
	require.Equal(t, float64(1), rec.Field("x"))
}

func TestRegistry_LoadsValue_TypeHint(t *testing.T) {
	reg := NewRegistry()

	typ := record.NewType("test.Point", "")

	value, err := reg.LoadsValue(context.Background(), typ, []byte(`{"x": 1}`))
	require.NoError(t, err)

	rec, ok := value.(record.Base)
	require.True(t, ok)
	require.Equal(t, "test.Point", rec.Namespace())
}

func TestRegistry_LoadsValue_TypeHint_Subtype(t *testing.T) {
	records := record.NewRegistry()
	records.Register(record.NewType("test.Point3D", ""))

	reg := NewRegistry(WithRecords(records))

	// The payload self-describes a different concrete type than the one
	// requested, so the subtype wins.
	typ := record.NewType("test.Point", "")

	value, err := reg.LoadsValue(context.Background(), typ,
		[]byte(`{"__ns": "test.Point3D", "x": 1, "z": 3}`))
	require.NoError(t, err)

	rec, ok := value.(record.Base)
	require.True(t, ok)
	require.Equal(t, "test.Point3D", rec.Namespace())
}

func TestRegistry_LoadsValue_TypeHint_PreferredSerializer(t *testing.T) {
	calls := fake.NewCall()

	codecs := codec.NewRegistry()
	codecs.Register("alt", fake.Codec{Value: map[string]interface{}{}, Calls: calls})

	reg := NewRegistry(WithCodecs(codecs))

	typ := fake.RecordType{NS: "test.Alt", Pref: "alt", Record: fake.Record{}}

	_, err := reg.LoadsValue(context.Background(), typ, []byte(`...`))
	require.NoError(t, err)
	require.Equal(t, 1, calls.Len())
	require.Equal(t, "decode", calls.Get(0, 0))
}

func TestRegistry_LoadsValue_ReconstructionError(t *testing.T) {
	records := record.NewRegistry()
	records.Register(fake.RecordType{NS: "test.Bad", Err: fake.GetError()})

	reg := NewRegistry(WithRecords(records))

	_, err := reg.LoadsValue(context.Background(), nil, []byte(`{"__ns": "test.Bad"}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "fake error")

	var decodeErr *serde.ValueDecodeError
	require.True(t, errors.As(err, &decodeErr))
}

func TestRegistry_LoadsValue_UnsupportedHint(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.LoadsValue(context.Background(), 42, []byte(`{}`))
	require.EqualError(t, err,
		"failed to decode value: unsupported hint of type int")
}

func TestRegistry_LoadsValue_Remote(t *testing.T) {
	calls := fake.NewCall()
	client := &fake.Remote{Value: map[string]interface{}{"a": float64(1)}, Calls: calls}

	resolver := remote.NewResolver(map[codec.ID]remote.Factory{
		"avro": fake.NewRemoteFactory(client, nil),
	})

	reg := NewRegistry(WithValueSerializer("avro"), WithResolver(resolver))

	value, err := reg.LoadsValue(context.Background(), nil, []byte{0xde, 0xad})
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"a": float64(1)}, value)
	require.Equal(t, 1, calls.Len())
}

func TestRegistry_LoadsValue_RemoteError(t *testing.T) {
	client := &fake.Remote{Err: fake.GetError()}

	resolver := remote.NewResolver(map[codec.ID]remote.Factory{
		"avro": fake.NewRemoteFactory(client, nil),
	})

	reg := NewRegistry(WithValueSerializer("avro"), WithResolver(resolver))

	_, err := reg.LoadsValue(context.Background(), nil, []byte{0xde, 0xad})
	require.EqualError(t, err, "failed to decode value: fake error")
}

func TestRegistry_DumpsKey_NoSerializer(t *testing.T) {
	reg := NewRegistry()

	data, err := reg.DumpsKey(context.Background(), "topic", "abc", "")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), data)

	data, err = reg.DumpsKey(context.Background(), "topic", nil, "")
	require.NoError(t, err)
	require.Nil(t, data)

	_, err = reg.DumpsKey(context.Background(), "topic", 42, "")
	require.EqualError(t, err, "cannot coerce int to bytes")
}

func TestRegistry_DumpsValue_NoSerializer(t *testing.T) {
	reg := NewRegistry(WithValueSerializer(""))

	data, err := reg.DumpsValue(context.Background(), "topic", []byte("raw"), "")
	require.NoError(t, err)
	require.Equal(t, []byte("raw"), data)

	_, err = reg.DumpsValue(context.Background(), "topic", 42, "")
	require.EqualError(t, err, "value of type int is not bytes")
}

func TestRegistry_DumpsValue_Codec(t *testing.T) {
	reg := NewRegistry()

	data, err := reg.DumpsValue(context.Background(), "topic",
		map[string]interface{}{"a": 1}, "")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), data)
}

func TestRegistry_DumpsValue_Override(t *testing.T) {
	calls := fake.NewCall()

	codecs := codec.NewRegistry()
	codecs.Register("alt", fake.Codec{Data: []byte{0xaa}, Calls: calls})

	reg := NewRegistry(WithCodecs(codecs))

	data, err := reg.DumpsValue(context.Background(), "topic", "payload", "alt")
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa}, data)
	require.Equal(t, 1, calls.Len())
}

func TestRegistry_DumpsValue_RecordPreferred(t *testing.T) {
	calls := fake.NewCall()

	rec := fake.Record{Pref: "alt", Data: []byte{0xbb}, Calls: calls}

	reg := NewRegistry()

	// The record prefers "alt" which is neither a remote alias nor relevant
	// here: the record serializes itself with it.
	data, err := reg.DumpsValue(context.Background(), "topic", rec, "")
	require.NoError(t, err)
	require.Equal(t, []byte{0xbb}, data)
	require.Equal(t, 1, calls.Len())
	require.Equal(t, codec.ID("alt"), calls.Get(0, 1))
}

func TestRegistry_DumpsValue_Remote(t *testing.T) {
	calls := fake.NewCall()
	client := &fake.Remote{Data: []byte{0xcc}, Calls: calls}

	resolver := remote.NewResolver(map[codec.ID]remote.Factory{
		"avro": fake.NewRemoteFactory(client, nil),
	})

	reg := NewRegistry(WithValueSerializer("avro"), WithResolver(resolver))

	data, err := reg.DumpsValue(context.Background(), "topic", "payload", "")
	require.NoError(t, err)
	require.Equal(t, []byte{0xcc}, data)
	require.Equal(t, "topic", calls.Get(0, 1))
}

func TestRegistry_DumpsValue_ErrorPropagates(t *testing.T) {
	codecs := codec.NewRegistry()
	codecs.Register("json", fake.NewBadCodec())

	reg := NewRegistry(WithCodecs(codecs))

	// Encode failures are not wrapped into decode errors.
	_, err := reg.DumpsValue(context.Background(), "topic", "payload", "")
	require.EqualError(t, err, "fake error")
}

func TestRegistry_RoundTrip(t *testing.T) {
	reg := NewRegistry()

	value := map[string]interface{}{"a": float64(1)}

	data, err := reg.DumpsValue(context.Background(), "topic", value, "")
	require.NoError(t, err)

	res, err := reg.LoadsValue(context.Background(), nil, data)
	require.NoError(t, err)
	require.Equal(t, value, res)
}

func TestRegistry_GetSerializer_Cache(t *testing.T) {
	counter := &fake.Counter{}
	resolver := &countingResolver{inner: remote.NewResolver(map[codec.ID]remote.Factory{
		"avro": fake.NewRemoteFactory(&fake.Remote{}, counter),
	})}

	reg := NewRegistry(WithResolver(resolver))

	client, err := reg.getSerializer("avro")
	require.NoError(t, err)

	other, err := reg.getSerializer("avro")
	require.NoError(t, err)
	require.Same(t, client, other)
	require.Equal(t, 1, counter.Value)
	require.Equal(t, 1, resolver.count)
}

func TestRegistry_GetSerializer_Concurrent(t *testing.T) {
	counter := &fake.Counter{}
	resolver := remote.NewResolver(map[codec.ID]remote.Factory{
		"avro": fake.NewRemoteFactory(&fake.Remote{}, counter),
	})

	reg := NewRegistry(WithResolver(resolver))

	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := reg.getSerializer("avro")
			require.NoError(t, err)
		}()
	}

	wg.Wait()

	require.Equal(t, 1, counter.Value)
}

func TestRegistry_GetSerializer_Unknown(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.getSerializer("json")
	require.Error(t, err)
	require.True(t, errors.Is(err, remote.ErrUnknownSerializer))
}

// -----------------------------------------------------------------------------
// Utility functions

// countingResolver records how many times an alias is resolved.
//
// - implements remote.Resolver
type countingResolver struct {
	inner remote.Resolver
	count int
}

func (r *countingResolver) Resolve(name codec.ID) (remote.Factory, error) {
	r.count++

	return r.inner.Resolve(name)
}

func (r *countingResolver) Register(name codec.ID, factory remote.Factory) {
	r.inner.Register(name, factory)
}
