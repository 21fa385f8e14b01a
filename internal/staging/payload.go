package staging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidStagedData marks staged bytes that cannot be turned into a file.
var ErrInvalidStagedData = errors.New("invalid file data")

// bufferTag is the type marker carried by the serialized buffer form.
const bufferTag = "Buffer"

// Payload is what a staged entry holds: either Raw bytes or a Wrapped serialized buffer.
type Payload interface {
	isPayload()
}

// Raw is a staged file kept as its original bytes.
type Raw []byte

// Wrapped is a staged file serialized as {"type":"Buffer","data":[...]}.
type Wrapped struct {
	Type string `json:"type"`
	Data []int  `json:"data"`
}

func (Raw) isPayload()     {}
func (Wrapped) isPayload() {}

// WrapBytes builds the serialized buffer form of data.
func WrapBytes(data []byte) Wrapped {
	out := make([]int, len(data))
	for i, b := range data {
		out[i] = int(b)
	}
	return Wrapped{Type: bufferTag, Data: out}
}

// Encode renders a payload into the bytes written to a cache backend.
func Encode(p Payload) ([]byte, error) {
	switch v := p.(type) {
	case Raw:
		return []byte(v), nil
	case Wrapped:
		return json.Marshal(v)
	default:
		return nil, fmt.Errorf("%w: unsupported payload %T", ErrInvalidStagedData, p)
	}
}

// Decode interprets bytes read back from a cache backend. A JSON object carrying a
// "type" or "data" member is the wrapped form; anything else is raw file bytes.
func Decode(stored []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(stored)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Raw(stored), nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return Raw(stored), nil
	}
	_, hasType := fields["type"]
	_, hasData := fields["data"]
	if !hasType && !hasData {
		return Raw(stored), nil
	}
	var w Wrapped
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStagedData, err)
	}
	return w, nil
}

// Normalize converts any payload variant into the file's byte sequence.
func Normalize(p Payload) ([]byte, error) {
	switch v := p.(type) {
	case Raw:
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty buffer", ErrInvalidStagedData)
		}
		return append([]byte(nil), v...), nil
	case Wrapped:
		if v.Type != bufferTag {
			return nil, fmt.Errorf("%w: unexpected type %q", ErrInvalidStagedData, v.Type)
		}
		if len(v.Data) == 0 {
			return nil, fmt.Errorf("%w: empty buffer", ErrInvalidStagedData)
		}
		out := make([]byte, len(v.Data))
		for i, n := range v.Data {
			if n < 0 || n > 255 {
				return nil, fmt.Errorf("%w: byte %d out of range at %d", ErrInvalidStagedData, n, i)
			}
			out[i] = byte(n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported payload %T", ErrInvalidStagedData, p)
	}
}
