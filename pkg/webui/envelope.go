// Package webui bridges an embedded web page and native plugin code. Messages
// travel as {type, payload} JSON envelopes in both directions.
package webui

import (
	"bytes"
	"encoding/json"
)

// Message types understood by the bridge.
const (
	TypeUIReady   = "ui-ready"
	TypeGenerate  = "generate"
	TypeConnected = "connected"
)

// Message types the page listens for while a generation runs. The bridge
// never sends them itself; a generate handler that produces audio reports
// through them.
const (
	TypeGenerationProgress = "generation-progress"
	TypeGenerationComplete = "generation-complete"
)

// Kind discriminates an inbound envelope.
type Kind int

const (
	KindUnknown Kind = iota
	KindUIReady
	KindGenerate
)

func (k Kind) String() string {
	switch k {
	case KindUIReady:
		return TypeUIReady
	case KindGenerate:
		return TypeGenerate
	default:
		return "unknown"
	}
}

// Envelope is one message exchanged with the page. Payload is never
// interpreted by the bridge.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Kind maps the envelope type onto a known kind.
func (e Envelope) Kind() Kind {
	switch e.Type {
	case TypeUIReady:
		return KindUIReady
	case TypeGenerate:
		return KindGenerate
	default:
		return KindUnknown
	}
}

type rawEnvelope struct {
	Type    json.RawMessage `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ParseEnvelope decodes raw as a JSON object. It returns false for anything
// that is not an object: arrays, scalars, null and invalid JSON. A missing,
// null or non-string type decodes as "".
func ParseEnvelope(raw string) (Envelope, bool) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || data[0] != '{' {
		return Envelope{}, false
	}

	var r rawEnvelope
	if err := json.Unmarshal(data, &r); err != nil {
		return Envelope{}, false
	}

	env := Envelope{Payload: r.Payload}
	if len(r.Type) > 0 && r.Type[0] == '"' {
		if err := json.Unmarshal(r.Type, &env.Type); err != nil {
			env.Type = ""
		}
	}
	if bytes.Equal(env.Payload, []byte("null")) {
		env.Payload = nil
	}
	return env, true
}

// NewEnvelope builds an envelope with a JSON-encoded payload. A nil payload
// is omitted from the wire form.
func NewEnvelope(kind string, payload any) (Envelope, error) {
	env := Envelope{Type: kind}
	if payload == nil {
		return env, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	env.Payload = raw
	return env, nil
}

// String returns the compact JSON form of the envelope.
func (e Envelope) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return string(data)
}
