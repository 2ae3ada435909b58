package domain

import "errors"

// Inbound message rejections. Messages failing with one of these are logged
// and dropped; they never reach a behavior.
var (
	// ErrIncompleteMessage is returned for fragmented messages.
	ErrIncompleteMessage = errors.New("incomplete message")

	// ErrBinaryMessage is returned for non-text messages on a command channel.
	ErrBinaryMessage = errors.New("binary message")

	// ErrNotObject is returned when the message body is not a JSON object.
	ErrNotObject = errors.New("message is not an object")

	// ErrMissingType is returned when the object has no string "type" field.
	ErrMissingType = errors.New("message has no string type")
)
