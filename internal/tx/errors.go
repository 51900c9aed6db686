package tx

import "errors"

var (
	ErrMissingSigningKey = errors.New("tx: missing signing key")
	ErrSigningExhausted  = errors.New("tx: canonical signature search exhausted")
	ErrInvalidHeadBlock  = errors.New("tx: invalid head block")
	ErrNoOperations      = errors.New("tx: transaction has no operations")
)
