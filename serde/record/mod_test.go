package record

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.hermod.dev/hermod/internal/testing/fake"
)

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	reg.Register(NewType("test.Point", ""))
	require.Len(t, reg.types, 1)

	reg.Register(NewType("test.Point", "json"))
	require.Len(t, reg.types, 1)

	reg.Register(NewType("test.Other", ""))
	require.Len(t, reg.types, 2)
}

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry()

	typ := NewType("test.Point", "")
	reg.Register(typ)

	require.Equal(t, typ, reg.Get("test.Point"))
	require.Nil(t, reg.Get("test.Unknown"))
}

func TestRegistry_Reconstruct(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewType("test.Point", ""))

	rec, ok, err := reg.Reconstruct(map[string]interface{}{
		NamespaceKey: "test.Point",
		"x":          float64(1),
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "test.Point", rec.(Base).Namespace())
}

func TestRegistry_Reconstruct_Declines(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewType("test.Point", ""))

	// Not a map.
	_, ok, err := reg.Reconstruct([]byte{1, 2, 3})
	require.NoError(t, err)
	require.False(t, ok)

	// No namespace entry.
	_, ok, err = reg.Reconstruct(map[string]interface{}{"x": float64(1)})
	require.NoError(t, err)
	require.False(t, ok)

	// Unknown namespace.
	_, ok, err = reg.Reconstruct(map[string]interface{}{NamespaceKey: "test.Unknown"})
	require.NoError(t, err)
	require.False(t, ok)

	// Interface keys that cannot be normalized.
	_, ok, err = reg.Reconstruct(map[interface{}]interface{}{42: "a"})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegistry_Reconstruct_YAMLMap(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewType("test.Point", ""))

	rec, ok, err := reg.Reconstruct(map[interface{}]interface{}{
		NamespaceKey: "test.Point",
		"x":          1,
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, rec.(Base).Field("x"))
}

func TestRegistry_Reconstruct_Error(t *testing.T) {
	reg := NewRegistry()
	reg.Register(fake.RecordType{NS: "test.Bad", Err: fake.GetError()})

	_, _, err := reg.Reconstruct(map[string]interface{}{NamespaceKey: "test.Bad"})
	require.EqualError(t, err, "failed to reconstruct 'test.Bad': fake error")
}
