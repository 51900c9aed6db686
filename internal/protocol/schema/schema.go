package schema

import (
	"errors"
	"fmt"
	"sync"

	"github.com/danmuck/steemtx/internal/protocol"
	"github.com/rs/zerolog/log"
)

// MaxOperations is the id space of the single id byte.
const MaxOperations = 256

var (
	ErrUnknownOperationType = errors.New("schema: unknown operation type")
	ErrDuplicateOperation   = errors.New("schema: duplicate operation")
	ErrRegistryFull         = errors.New("schema: registry full")
	ErrUnknownParam         = errors.New("schema: unknown param")
)

type Param struct {
	Name string
	Kind protocol.Kind
}

// OperationSchema is one registry row. ID is the position it was
// registered at.
type OperationSchema struct {
	ID       uint8
	Name     string
	Params   []Param
	Reserved bool
}

// Param returns the declared kind of name.
func (s OperationSchema) Param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

type ValidationError struct {
	Operation string
	Param     string
	Reason    string
}

func (e ValidationError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("schema: operation=%s: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf("schema: operation=%s param=%s: %s", e.Operation, e.Param, e.Reason)
}

// Registry is append-only. Ids are never reused or reordered.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]int
	rows   []OperationSchema
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register appends name with the next free id.
func (r *Registry) Register(name string, params ...Param) (OperationSchema, error) {
	return r.register(name, false, params)
}

// Reserve holds the next id for an operation whose params no encoder
// supports. Assembling a reserved operation fails.
func (r *Registry) Reserve(name string) (OperationSchema, error) {
	return r.register(name, true, nil)
}

func (r *Registry) register(name string, reserved bool, params []Param) (OperationSchema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		return OperationSchema{}, ValidationError{Reason: "empty operation name"}
	}
	if _, exists := r.byName[name]; exists {
		log.Error().Str("op", name).Msg("schema.Register duplicate")
		return OperationSchema{}, fmt.Errorf("%w: %s", ErrDuplicateOperation, name)
	}
	if len(r.rows) >= MaxOperations {
		return OperationSchema{}, fmt.Errorf("%w: %s would take id %d", ErrRegistryFull, name, len(r.rows))
	}
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if _, dup := seen[p.Name]; dup {
			return OperationSchema{}, ValidationError{Operation: name, Param: p.Name, Reason: "duplicate param"}
		}
		seen[p.Name] = struct{}{}
	}
	row := OperationSchema{
		ID:       uint8(len(r.rows)),
		Name:     name,
		Params:   append([]Param(nil), params...),
		Reserved: reserved,
	}
	r.byName[name] = len(r.rows)
	r.rows = append(r.rows, row)
	return row, nil
}

func (r *Registry) Lookup(name string) (OperationSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byName[name]
	if !ok {
		log.Debug().Str("op", name).Msg("schema.Lookup miss")
		return OperationSchema{}, fmt.Errorf("%w: %q", ErrUnknownOperationType, name)
	}
	return r.rows[i], nil
}

func (r *Registry) ByID(id uint8) (OperationSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.rows) {
		return OperationSchema{}, fmt.Errorf("%w: id %d", ErrUnknownOperationType, id)
	}
	return r.rows[id], nil
}

// ParamKind returns the declared kind of param on operation name.
func (r *Registry) ParamKind(name, param string) (protocol.Kind, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return protocol.KindUnsupported, err
	}
	p, ok := s.Param(param)
	if !ok {
		return protocol.KindUnsupported, fmt.Errorf("%w: %s.%s", ErrUnknownParam, name, param)
	}
	return p.Kind, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

// All returns the rows in id order.
func (r *Registry) All() []OperationSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]OperationSchema(nil), r.rows...)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry loaded from Operations.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(Operations)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
		log.Debug().Int("operations", r.Len()).Msg("schema.Default loaded")
	})
	return defaultRegistry
}

// Load registers defs in slice order.
func Load(defs []Definition) (*Registry, error) {
	r := NewRegistry()
	for _, d := range defs {
		var err error
		if d.Reserved {
			_, err = r.Reserve(d.Name)
		} else {
			_, err = r.Register(d.Name, d.Params...)
		}
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Lookup resolves name against Default.
func Lookup(name string) (OperationSchema, error) {
	return Default().Lookup(name)
}

// ParamKind resolves against Default.
func ParamKind(name, param string) (protocol.Kind, error) {
	return Default().ParamKind(name, param)
}
