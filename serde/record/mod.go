// Package record implements the typed-record capability of the dispatcher:
// a store of record types indexed by namespace, the self-describing
// reconstruction of decoded payloads, and a generic map-backed record
// implementation for pipelines that do not define their own.
//
// A payload self-describes its concrete type by carrying the namespace of
// the type under the reserved "__ns" entry of the decoded map.
package record

import (
	"go.hermod.dev/hermod"
	"go.hermod.dev/hermod/serde"
	"golang.org/x/xerrors"
)

// NamespaceKey is the reserved entry of a decoded payload that carries the
// namespace of its concrete record type.
const NamespaceKey = "__ns"

// Registry is a store of record types indexed by their namespace.
// Registrations are expected to happen at process start, before the registry
// is shared.
type Registry struct {
	types map[string]serde.Type
}

// NewRegistry returns a new empty record type registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]serde.Type),
	}
}

// Register adds the type to the registry under its namespace. An existing
// type with the same namespace is replaced.
func (r *Registry) Register(t serde.Type) {
	r.types[t.Namespace()] = t

	hermod.Logger.Trace().
		Str("namespace", t.Namespace()).
		Msg("record type registered")
}

// Get returns the type registered under the namespace, or nil.
func (r *Registry) Get(namespace string) serde.Type {
	return r.types[namespace]
}

// Reconstruct gives a decoded payload the chance to reinterpret itself as a
// concrete record type. It returns false when the payload does not
// self-describe a registered type, in which case the caller keeps the decoded
// value as is.
func (r *Registry) Reconstruct(data interface{}) (serde.Record, bool, error) {
	fields, ok := asMap(data)
	if !ok {
		return nil, false, nil
	}

	namespace, ok := fields[NamespaceKey].(string)
	if !ok {
		return nil, false, nil
	}

	typ := r.types[namespace]
	if typ == nil {
		return nil, false, nil
	}

	rec, err := typ.New(data)
	if err != nil {
		return nil, false, xerrors.Errorf("failed to reconstruct '%s': %v", namespace, err)
	}

	return rec, true, nil
}

// asMap normalizes the decoded payload into a string-keyed map. YAML decodes
// maps with interface keys, so those are converted on the fly.
func asMap(data interface{}) (map[string]interface{}, bool) {
	switch m := data.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		fields := make(map[string]interface{}, len(m))
		for key, value := range m {
			name, ok := key.(string)
			if !ok {
				return nil, false
			}

			fields[name] = value
		}

		return fields, true
	default:
		return nil, false
	}
}
