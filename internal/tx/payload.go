package tx

import (
	"encoding/hex"

	"github.com/danmuck/steemtx/internal/operation"
	"github.com/danmuck/steemtx/internal/protocol"
)

// Payload is the JSON body broadcast APIs accept.
type Payload struct {
	Expiration     string              `json:"expiration"`
	RefBlockNum    uint16              `json:"ref_block_num"`
	RefBlockPrefix uint32              `json:"ref_block_prefix"`
	Operations     []operation.Payload `json:"operations"`
	Extensions     []any               `json:"extensions"`
	Signatures     []string            `json:"signatures"`
}

func (c Codec) Payload(t *Transaction) (*Payload, error) {
	asm := c.assembler(t.Chain)
	ops := make([]operation.Payload, 0, len(t.Operations))
	for _, op := range t.Operations {
		p, err := asm.Payload(op)
		if err != nil {
			return nil, err
		}
		ops = append(ops, p)
	}
	sigs := []string{}
	if len(t.Signature) > 0 {
		sigs = append(sigs, hex.EncodeToString(t.Signature))
	}
	return &Payload{
		Expiration:     protocol.NewTimestamp(t.Expiration).String(),
		RefBlockNum:    t.RefBlockNum,
		RefBlockPrefix: t.RefBlockPrefix,
		Operations:     ops,
		Extensions:     []any{},
		Signatures:     sigs,
	}, nil
}

func PayloadOf(t *Transaction) (*Payload, error) { return DefaultCodec.Payload(t) }
