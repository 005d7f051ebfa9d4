package serde

import "fmt"

// KeyDecodeError is returned for any failure while decoding a message key,
// whether it comes from the codec layer, a remote serializer or the record
// construction. It carries only the message of the cause: the cause itself is
// deliberately not exposed so that internal error chains do not leak to
// pipeline callers.
type KeyDecodeError struct {
	msg string
}

// NewKeyDecodeError returns a key decode error keeping only the message of
// the cause.
func NewKeyDecodeError(cause error) *KeyDecodeError {
	return &KeyDecodeError{msg: cause.Error()}
}

// Error implements error.
func (e *KeyDecodeError) Error() string {
	return fmt.Sprintf("failed to decode key: %s", e.msg)
}

// ValueDecodeError is the counterpart of KeyDecodeError for message values.
type ValueDecodeError struct {
	msg string
}

// NewValueDecodeError returns a value decode error keeping only the message
// of the cause.
func NewValueDecodeError(cause error) *ValueDecodeError {
	return &ValueDecodeError{msg: cause.Error()}
}

// Error implements error.
func (e *ValueDecodeError) Error() string {
	return fmt.Sprintf("failed to decode value: %s", e.msg)
}
