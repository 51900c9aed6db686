package operation

import (
	"errors"
	"fmt"

	"github.com/danmuck/steemtx/internal/protocol"
	"github.com/danmuck/steemtx/internal/protocol/schema"
	"github.com/rs/zerolog/log"
)

// Assembler walks an operation's schema in declared order. The zero value
// uses schema.Default and protocol.DefaultCoercer.
type Assembler struct {
	Registry *schema.Registry
	Coercer  protocol.Coercer
}

var DefaultAssembler = Assembler{}

func (a Assembler) registry() *schema.Registry {
	if a.Registry == nil {
		return schema.Default()
	}
	return a.Registry
}

// values resolves every declared param to its coerced Value. Missing or nil
// fields are returned as nil (absent).
func (a Assembler) values(op *Operation) (schema.OperationSchema, []protocol.Value, error) {
	if op == nil {
		return schema.OperationSchema{}, nil, fmt.Errorf("%w: nil operation", ErrMalformedOperation)
	}
	s, err := a.registry().Lookup(op.Type)
	if err != nil {
		return schema.OperationSchema{}, nil, err
	}
	if s.Reserved {
		return s, nil, protocol.UnsupportedValueKindError{TypeName: s.Name, Kind: protocol.KindUnsupported}
	}
	c := a.Coercer
	out := make([]protocol.Value, len(s.Params))
	for i, p := range s.Params {
		raw, ok := op.Fields[p.Name]
		if !ok {
			continue
		}
		v, err := c.Coerce(p.Kind, raw)
		if err != nil {
			return s, nil, withParam(err, p.Name)
		}
		out[i] = v
	}
	return s, out, nil
}

func withParam(err error, param string) error {
	var kindErr protocol.UnsupportedValueKindError
	if errors.As(err, &kindErr) {
		kindErr.Param = param
		return kindErr
	}
	return fmt.Errorf("param %q: %w", param, err)
}

// Encode appends the id byte and each param's wire form to w.
func (a Assembler) Encode(w *protocol.Writer, op *Operation) error {
	s, vals, err := a.values(op)
	if err != nil {
		log.Debug().Str("op", opType(op)).Err(err).Msg("operation.Encode rejected")
		return err
	}
	w.Uint8(s.ID)
	for i, v := range vals {
		if v == nil {
			continue
		}
		if err := v.Encode(w); err != nil {
			return withParam(err, s.Params[i].Name)
		}
	}
	return nil
}

func (a Assembler) ToBytes(op *Operation) ([]byte, error) {
	w := protocol.NewWriter()
	if err := a.Encode(w, op); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// LogicalPayload returns the operation name and its params in schema order.
func (a Assembler) LogicalPayload(op *Operation) (string, Params, error) {
	s, vals, err := a.values(op)
	if err != nil {
		return "", nil, err
	}
	params := make(Params, len(s.Params))
	for i, v := range vals {
		params[i] = protocol.Member{Key: s.Params[i].Name, Value: protocol.Display(v)}
	}
	return s.Name, params, nil
}

func (a Assembler) Payload(op *Operation) (Payload, error) {
	name, params, err := a.LogicalPayload(op)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Name: name, Params: params}, nil
}

func opType(op *Operation) string {
	if op == nil {
		return ""
	}
	return op.Type
}

func ToBytes(op *Operation) ([]byte, error) {
	return DefaultAssembler.ToBytes(op)
}

func LogicalPayload(op *Operation) (string, Params, error) {
	return DefaultAssembler.LogicalPayload(op)
}
