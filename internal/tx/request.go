package tx

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/danmuck/steemtx/internal/config"
	"github.com/danmuck/steemtx/internal/operation"
	"github.com/danmuck/steemtx/internal/protocol"
)

// Request is the JSON transaction document read by the CLI and the HTTP
// service. Explicit header fields override those derived from HeadBlock.
type Request struct {
	Chain          config.Chain           `json:"chain,omitempty"`
	ChainID        string                 `json:"chain_id,omitempty"`
	RefBlockNum    *uint16                `json:"ref_block_num,omitempty"`
	RefBlockPrefix *uint32                `json:"ref_block_prefix,omitempty"`
	Expiration     string                 `json:"expiration,omitempty"`
	HeadBlock      *HeadBlockDoc          `json:"head_block,omitempty"`
	Operations     []*operation.Operation `json:"operations"`
}

// HeadBlockDoc is the JSON form of HeadBlock with a hex id.
type HeadBlockDoc struct {
	Number uint32 `json:"number"`
	ID     string `json:"id"`
	Time   string `json:"time"`
}

func (d HeadBlockDoc) HeadBlock() (HeadBlock, error) {
	id, err := hex.DecodeString(strings.TrimSpace(d.ID))
	if err != nil {
		return HeadBlock{}, fmt.Errorf("%w: id: %v", ErrInvalidHeadBlock, err)
	}
	ts, err := protocol.ParseTimestamp(d.Time)
	if err != nil {
		return HeadBlock{}, fmt.Errorf("%w: time: %v", ErrInvalidHeadBlock, err)
	}
	return HeadBlock{Number: d.Number, ID: id, Time: ts.Time()}, nil
}

// Transaction turns req into a transaction with a complete header.
func (b *Builder) Transaction(req Request) (*Transaction, error) {
	if len(req.Operations) == 0 {
		return nil, ErrNoOperations
	}
	t := New(req.Operations...)
	t.Chain = req.Chain
	if req.ChainID != "" {
		id, err := config.ParseChainID(req.ChainID)
		if err != nil {
			return nil, fmt.Errorf("tx: %w", err)
		}
		t.ChainID = id
	}
	if req.HeadBlock != nil {
		head, err := req.HeadBlock.HeadBlock()
		if err != nil {
			return nil, err
		}
		if err := b.Header(t, head); err != nil {
			return nil, err
		}
	} else if err := b.resolveChain(t); err != nil {
		return nil, err
	}
	if req.RefBlockNum != nil {
		t.RefBlockNum = *req.RefBlockNum
	}
	if req.RefBlockPrefix != nil {
		t.RefBlockPrefix = *req.RefBlockPrefix
	}
	if req.Expiration != "" {
		ts, err := protocol.ParseTimestamp(req.Expiration)
		if err != nil {
			return nil, fmt.Errorf("tx: expiration: %w", err)
		}
		t.Expiration = ts.Time()
	}
	if t.Expiration.IsZero() {
		return nil, fmt.Errorf("%w: need head_block or expiration", ErrInvalidHeadBlock)
	}
	return t, nil
}
