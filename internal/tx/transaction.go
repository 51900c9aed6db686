package tx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/danmuck/steemtx/internal/config"
	"github.com/danmuck/steemtx/internal/operation"
	"github.com/danmuck/steemtx/internal/protocol"
	"github.com/danmuck/steemtx/internal/protocol/schema"
)

// Transaction is one unsigned or signed transaction. Chain scopes asset
// resolution and is left empty when ChainID is not a configured network.
type Transaction struct {
	ChainID        [32]byte
	Chain          config.Chain
	RefBlockNum    uint16
	RefBlockPrefix uint32
	Expiration     time.Time
	Operations     []*operation.Operation
	Signature      []byte
}

func New(ops ...*operation.Operation) *Transaction {
	return &Transaction{Operations: ops}
}

func (t *Transaction) Add(ops ...*operation.Operation) *Transaction {
	t.Operations = append(t.Operations, ops...)
	return t
}

// HeadBlock is the chain tip a transaction references. Steem block ids
// are 20 bytes; only the first 8 are read.
type HeadBlock struct {
	Number uint32
	ID     []byte
	Time   time.Time
}

func (h HeadBlock) Validate() error {
	if len(h.ID) < 8 {
		return fmt.Errorf("%w: id has %d bytes, need at least 8", ErrInvalidHeadBlock, len(h.ID))
	}
	if h.Time.IsZero() {
		return fmt.Errorf("%w: missing time", ErrInvalidHeadBlock)
	}
	return nil
}

// RefBlockPrefix is the little-endian u32 at id[4:8].
func (h HeadBlock) RefBlockPrefix() uint32 {
	return uint32(h.ID[4]) | uint32(h.ID[5])<<8 | uint32(h.ID[6])<<16 | uint32(h.ID[7])<<24
}

// Codec serializes transactions against one registry and asset book. The
// zero value uses the process defaults.
type Codec struct {
	Registry *schema.Registry
	Assets   *protocol.AssetBook
}

var DefaultCodec = Codec{}

func (c Codec) assembler(chain config.Chain) operation.Assembler {
	return operation.Assembler{
		Registry: c.Registry,
		Coercer:  protocol.Coercer{Assets: c.Assets, Chain: chain},
	}
}

func (c Codec) body(t *Transaction, w *protocol.Writer, expiration time.Time) error {
	if len(t.Operations) == 0 {
		return ErrNoOperations
	}
	w.Uint16(t.RefBlockNum)
	w.Uint32(t.RefBlockPrefix)
	if err := protocol.NewTimestamp(expiration).Encode(w); err != nil {
		return fmt.Errorf("tx: expiration: %w", err)
	}
	w.Varint(uint64(len(t.Operations)))
	asm := c.assembler(t.Chain)
	for i, op := range t.Operations {
		if err := asm.Encode(w, op); err != nil {
			return fmt.Errorf("tx: operation %d: %w", i, err)
		}
	}
	// extensions: always empty
	w.Varint(0)
	return nil
}

func (c Codec) serialize(t *Transaction, expiration time.Time) ([]byte, error) {
	w := protocol.NewWriter()
	w.Raw(t.ChainID[:])
	if err := c.body(t, w, expiration); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Serialize returns chain_id ‖ ref_block_num ‖ ref_block_prefix ‖
// expiration ‖ operations ‖ extensions.
func (c Codec) Serialize(t *Transaction) ([]byte, error) {
	return c.serialize(t, t.Expiration)
}

func (c Codec) digestAt(t *Transaction, expiration time.Time) ([32]byte, error) {
	b, err := c.serialize(t, expiration)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(b), nil
}

// Digest is the SHA-256 of Serialize. This is what gets signed.
func (c Codec) Digest(t *Transaction) ([32]byte, error) {
	return c.digestAt(t, t.Expiration)
}

// ID is the hex of the first 20 bytes of SHA-256 over the serialization
// without the chain id.
func (c Codec) ID(t *Transaction) (string, error) {
	w := protocol.NewWriter()
	if err := c.body(t, w, t.Expiration); err != nil {
		return "", err
	}
	sum := sha256.Sum256(w.Bytes())
	return hex.EncodeToString(sum[:20]), nil
}

func Serialize(t *Transaction) ([]byte, error) { return DefaultCodec.Serialize(t) }
func Digest(t *Transaction) ([32]byte, error)  { return DefaultCodec.Digest(t) }
func ID(t *Transaction) (string, error)        { return DefaultCodec.ID(t) }
