// Package envelope implements the outer wire message exchanged between
// peers. The envelope is a tagged union encoded as a CBOR map
// {"type": <kind>, "content": <payload>}; receivers reject kinds they
// don't know.
package envelope

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Kind is the tag of an envelope.
type Kind string

const (
	// KindCallRemote carries an opaque request or response payload.
	KindCallRemote Kind = "CallRemote"
)

var (
	// ErrUnknownKind is returned when decoding an envelope with an unknown tag.
	ErrUnknownKind = errors.New("unknown envelope kind")
	// ErrMalformed is returned when the envelope can't be decoded.
	ErrMalformed = errors.New("malformed envelope")
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("envelope: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 16,
		MaxMapPairs:      16,
		MaxNestedLevels:  4,
	}.DecMode()
	if err != nil {
		panic("envelope: CBOR decoder initialization failed: " + err.Error())
	}
}

// Message is a variant of the envelope.
type Message interface {
	Kind() Kind
}

// CallRemote wraps an opaque application payload.
type CallRemote struct {
	Data []byte `cbor:"data"`
}

// Kind implements Message.
func (*CallRemote) Kind() Kind { return KindCallRemote }

type envelope struct {
	Type    Kind            `cbor:"type"`
	Content cbor.RawMessage `cbor:"content"`
}

// Encode serializes the message together with its tag.
func Encode(msg Message) ([]byte, error) {
	content, err := encMode.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", msg.Kind(), err)
	}
	return encMode.Marshal(envelope{Type: msg.Kind(), Content: content})
}

// Decode parses an envelope and returns its variant.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	var msg Message
	switch env.Type {
	case KindCallRemote:
		msg = &CallRemote{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
	if len(env.Content) == 0 {
		return nil, fmt.Errorf("%w: %s without content", ErrMalformed, env.Type)
	}
	if err := decMode.Unmarshal(env.Content, msg); err != nil {
		return nil, fmt.Errorf("%w: %s content: %w", ErrMalformed, env.Type, err)
	}
	return msg, nil
}

// Wrap encodes data as a CallRemote envelope.
func Wrap(data []byte) ([]byte, error) {
	return Encode(&CallRemote{Data: data})
}

// Unwrap decodes a CallRemote envelope and returns its payload.
func Unwrap(data []byte) ([]byte, error) {
	msg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	call, ok := msg.(*CallRemote)
	if !ok {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrUnknownKind, KindCallRemote, msg.Kind())
	}
	return call.Data, nil
}
