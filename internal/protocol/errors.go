package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedValueKind = errors.New("protocol: unsupported value kind")
	ErrUnregisteredAsset    = errors.New("protocol: unregistered asset")
	ErrAssetMismatch        = errors.New("protocol: asset mismatch")
	ErrChainMismatch        = errors.New("protocol: chain mismatch")
	ErrDivisionByZero       = errors.New("protocol: division by zero")
	ErrInvalidAmount        = errors.New("protocol: invalid amount")
	ErrValueOutOfRange      = errors.New("protocol: value out of range")
	ErrInvalidTimestamp     = errors.New("protocol: invalid timestamp")
	ErrTruncated            = errors.New("protocol: truncated data")
	ErrInvalidLength        = errors.New("protocol: invalid length")
)

// UnsupportedValueKindError reports a value no encoder accepts. TypeName is
// the Go type of the offending value.
type UnsupportedValueKindError struct {
	TypeName string
	Kind     Kind
	Param    string
}

func (e UnsupportedValueKindError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("protocol: unsupported value kind %s for %s", e.TypeName, e.Kind)
	}
	return fmt.Sprintf("protocol: param %q: unsupported value kind %s for %s", e.Param, e.TypeName, e.Kind)
}

func (e UnsupportedValueKindError) Unwrap() error {
	return ErrUnsupportedValueKind
}

func unsupported(raw any, kind Kind) error {
	return UnsupportedValueKindError{TypeName: fmt.Sprintf("%T", raw), Kind: kind}
}
