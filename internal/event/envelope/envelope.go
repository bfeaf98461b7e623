// Package envelope converts named events to and from JSON envelopes of the
// form {"event": "name", "args": [...]}.
package envelope

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrInvalidEnvelope matches every DecodeError via errors.Is.
var ErrInvalidEnvelope = errors.New("invalid envelope")

// DecodeError describes why an envelope could not be decoded.
type DecodeError struct {
	Reason string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return "decode envelope: " + e.Reason
}

// Is allows errors.Is to match DecodeError with ErrInvalidEnvelope.
func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidEnvelope
}

// Envelope is a named event with its arguments.
type Envelope struct {
	Event string
	Args  []any
}

// Decode parses an envelope. The event name must be a non-empty string;
// args, when present, must be an array. JSON numbers decode as float64 and
// objects as map[string]any.
func Decode(data []byte) (Envelope, error) {
	if !gjson.ValidBytes(data) {
		return Envelope{}, &DecodeError{Reason: "not valid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Envelope{}, &DecodeError{Reason: "not an object"}
	}

	name := root.Get("event")
	if name.Type != gjson.String || name.Str == "" {
		return Envelope{}, &DecodeError{Reason: `"event" must be a non-empty string`}
	}
	env := Envelope{Event: name.Str}

	args := root.Get("args")
	if !args.Exists() || args.Type == gjson.Null {
		return env, nil
	}
	if !args.IsArray() {
		return Envelope{}, &DecodeError{Reason: fmt.Sprintf(`"args" must be an array (got %s)`, args.Type)}
	}
	for _, arg := range args.Array() {
		env.Args = append(env.Args, arg.Value())
	}
	return env, nil
}

// Encode renders env as a single-line JSON object. Args must be JSON
// marshalable.
func Encode(env Envelope) ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "event", env.Event)
	if err != nil {
		return nil, fmt.Errorf("encode envelope event: %w", err)
	}

	args := env.Args
	if args == nil {
		args = []any{}
	}
	out, err = sjson.SetBytes(out, "args", args)
	if err != nil {
		return nil, fmt.Errorf("encode envelope args for %q: %w", env.Event, err)
	}
	return out, nil
}
