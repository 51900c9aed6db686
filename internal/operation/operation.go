// Package operation assembles typed operations into their wire bytes and
// the logical JSON form used by broadcast APIs.
package operation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danmuck/steemtx/internal/protocol"
)

var ErrMalformedOperation = errors.New("operation: malformed operation")

// Operation is a typed bag. Fields not named by the schema are kept but
// never encoded.
type Operation struct {
	Type   string
	Fields map[string]any
}

func New(opType string) *Operation {
	return &Operation{Type: opType, Fields: make(map[string]any)}
}

// FromParams copies params so later changes to the map do not leak in.
func FromParams(opType string, params map[string]any) *Operation {
	op := New(opType)
	for k, v := range params {
		op.Fields[k] = v
	}
	return op
}

// Set stores a field and returns op for chaining.
func (op *Operation) Set(name string, value any) *Operation {
	if op.Fields == nil {
		op.Fields = make(map[string]any)
	}
	op.Fields[name] = value
	return op
}

func (op *Operation) Get(name string) (any, bool) {
	v, ok := op.Fields[name]
	return v, ok
}

// MarshalJSON writes the loose ["type", {fields}] pair. Use Payload for the
// schema-ordered form.
func (op *Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{op.Type, op.Fields})
}

// UnmarshalJSON reads ["type", {fields}]. Numbers decode as json.Number so
// integer params keep full precision.
func (op *Operation) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var pair []json.RawMessage
	if err := dec.Decode(&pair); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOperation, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: want [type, params], got %d elements", ErrMalformedOperation, len(pair))
	}
	var opType string
	if err := json.Unmarshal(pair[0], &opType); err != nil {
		return fmt.Errorf("%w: type: %v", ErrMalformedOperation, err)
	}
	fields := make(map[string]any)
	dec = json.NewDecoder(bytes.NewReader(pair[1]))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("%w: params: %v", ErrMalformedOperation, err)
	}
	op.Type = opType
	op.Fields = fields
	return nil
}

// Params is the schema-ordered display form of an operation's fields.
type Params = protocol.Object

// Payload is the logical form of one operation. It marshals as
// ["name", {params}].
type Payload struct {
	Name   string
	Params Params
}

func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Name, p.Params})
}
