// Package remote defines the contract of stateful serializers that may
// perform I/O, typically to look schemas up in a remote registry, and the
// resolver that maps codec aliases to their implementations.
//
// Remote serializers are expensive to build, so the dispatcher constructs
// them lazily through the resolver and caches them for its whole lifetime.
// The resolver table is built explicitly at process start: there is no
// import-time plugin discovery.
package remote

import (
	"context"

	"go.hermod.dev/hermod/serde"
	"go.hermod.dev/hermod/serde/codec"
	"golang.org/x/xerrors"
)

// Serializer is a stateful serializer bound to a registry. Calls may suspend
// on I/O, so they take a context that the caller owns.
type Serializer interface {
	// Loads decodes the payload.
	Loads(ctx context.Context, data []byte) (interface{}, error)

	// DumpsKey encodes a message key destined to the topic.
	DumpsKey(ctx context.Context, topic string, key interface{}) ([]byte, error)

	// DumpsValue encodes a message value destined to the topic.
	DumpsValue(ctx context.Context, topic string, value interface{}) ([]byte, error)
}

// Factory builds the serializer of an alias for a registry. The registry is
// passed so that the serializer can read its configuration; it must not be
// mutated.
type Factory func(reg serde.Registry) Serializer

// ErrUnknownSerializer is returned by resolvers when an alias has no
// registered factory. The dispatcher catches it to fall back to the pure
// codec layer; it never surfaces to pipeline callers.
var ErrUnknownSerializer = xerrors.New("unknown remote serializer")

// Resolver maps codec aliases to serializer factories.
type Resolver interface {
	// Resolve returns the factory registered for the alias, or an error
	// matching ErrUnknownSerializer.
	Resolve(name codec.ID) (Factory, error)

	// Register adds a factory for the alias. It is meant to be called at
	// process start, before the resolver is shared.
	Register(name codec.ID, factory Factory)
}

// SimpleResolver is a map-based resolver filled explicitly with the known
// aliases.
//
// - implements remote.Resolver
type simpleResolver struct {
	factories map[codec.ID]Factory
}

// NewResolver returns a resolver holding the given aliases. The mapping can
// be nil to start empty.
func NewResolver(aliases map[codec.ID]Factory) Resolver {
	factories := make(map[codec.ID]Factory, len(aliases))
	for name, factory := range aliases {
		factories[name] = factory
	}

	return &simpleResolver{
		factories: factories,
	}
}

// Resolve implements remote.Resolver. It returns the factory of the alias if
// it exists, otherwise an error matching ErrUnknownSerializer.
func (r *simpleResolver) Resolve(name codec.ID) (Factory, error) {
	factory := r.factories[name]
	if factory == nil {
		return nil, xerrors.Errorf("alias '%s': %w", name, ErrUnknownSerializer)
	}

	return factory, nil
}

// Register implements remote.Resolver. It adds the factory for the alias.
func (r *simpleResolver) Register(name codec.ID, factory Factory) {
	r.factories[name] = factory
}
