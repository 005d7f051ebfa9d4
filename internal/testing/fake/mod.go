// Package fake provides fake implementations for the interfaces commonly
// used in the repository.
// The implementations offer configuration to return errors when it is needed
// by the unit test, and record the calls of the functions of an object in
// some cases.
package fake

import (
	"context"

	"go.hermod.dev/hermod/serde"
	"go.hermod.dev/hermod/serde/codec"
	"go.hermod.dev/hermod/serde/remote"
	"golang.org/x/xerrors"
)

// Call is a tool to keep track of a function calls.
type Call struct {
	calls [][]interface{}
}

// NewCall returns a new empty call monitor.
func NewCall() *Call {
	return &Call{}
}

// Get returns the nth call ith parameter.
func (c *Call) Get(n, i int) interface{} {
	return c.calls[n][i]
}

// Len returns the number of calls.
func (c *Call) Len() int {
	if c == nil {
		return 0
	}

	return len(c.calls)
}

// Add adds a call to the list.
func (c *Call) Add(args ...interface{}) {
	if c == nil {
		return
	}

	c.calls = append(c.calls, args)
}

// GetError returns an error built for testing.
func GetError() error {
	return xerrors.New(fakeErr)
}

const fakeErr = "fake error"

// Codec is a fake implementation of codec.Codec. By default it encodes to a
// fixed byte string and decodes to a fixed value; it can be configured to
// fail instead.
//
// - implements codec.Codec
type Codec struct {
	Data  []byte
	Value interface{}
	Err   error
	Calls *Call
}

// NewBadCodec returns a fake codec that always fails.
func NewBadCodec() Codec {
	return Codec{Err: GetError()}
}

// Encode implements codec.Codec.
func (c Codec) Encode(value interface{}) ([]byte, error) {
	c.Calls.Add("encode", value)

	return c.Data, c.Err
}

// Decode implements codec.Codec.
func (c Codec) Decode(data []byte) (interface{}, error) {
	c.Calls.Add("decode", data)

	return c.Value, c.Err
}

// Remote is a fake implementation of remote.Serializer that records its
// calls.
//
// - implements remote.Serializer
type Remote struct {
	Data  []byte
	Value interface{}
	Err   error
	Calls *Call
}

// Loads implements remote.Serializer.
func (r *Remote) Loads(ctx context.Context, data []byte) (interface{}, error) {
	r.Calls.Add("loads", data)

	return r.Value, r.Err
}

// DumpsKey implements remote.Serializer.
func (r *Remote) DumpsKey(ctx context.Context, topic string, key interface{}) ([]byte, error) {
	r.Calls.Add("dumps_key", topic, key)

	return r.Data, r.Err
}

// DumpsValue implements remote.Serializer.
func (r *Remote) DumpsValue(ctx context.Context, topic string, value interface{}) ([]byte, error) {
	r.Calls.Add("dumps_value", topic, value)

	return r.Data, r.Err
}

// Counter is a helper to count the calls to a function.
type Counter struct {
	Value int
}

// Touch increments the counter.
func (c *Counter) Touch() {
	c.Value++
}

// NewRemoteFactory returns a remote.Factory providing the serializer and
// counting its constructions.
func NewRemoteFactory(ser remote.Serializer, counter *Counter) remote.Factory {
	return func(reg serde.Registry) remote.Serializer {
		if counter != nil {
			counter.Touch()
		}

		return ser
	}
}

// Record is a fake implementation of serde.Record.
//
// - implements serde.Record
type Record struct {
	Pref  codec.ID
	Data  []byte
	Err   error
	Calls *Call
}

// Serializer implements serde.Record.
func (r Record) Serializer() codec.ID {
	return r.Pref
}

// Dumps implements serde.Record.
func (r Record) Dumps(id codec.ID) ([]byte, error) {
	r.Calls.Add("dumps", id)

	return r.Data, r.Err
}

// RecordType is a fake implementation of serde.Type.
//
// - implements serde.Type
type RecordType struct {
	NS     string
	Pref   codec.ID
	Record serde.Record
	Err    error
	Calls  *Call
}

// Namespace implements serde.Type.
func (t RecordType) Namespace() string {
	return t.NS
}

// Serializer implements serde.Type.
func (t RecordType) Serializer() codec.ID {
	return t.Pref
}

// New implements serde.Type.
func (t RecordType) New(data interface{}) (serde.Record, error) {
	t.Calls.Add("new", data)

	return t.Record, t.Err
}
