package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope wraps every WebSocket frame with its message type.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals v into a typed envelope.
func NewEnvelope(typ string, v any) (Envelope, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Envelope{Type: typ, Payload: raw}, nil
}

// MustEnvelope is NewEnvelope for payload types that cannot fail to marshal.
func MustEnvelope(typ string, v any) Envelope {
	env, err := NewEnvelope(typ, v)
	if err != nil {
		panic(err)
	}
	return env
}
