package tx

import (
	"context"
	"fmt"

	"github.com/danmuck/steemtx/internal/operation"
	"github.com/rs/zerolog/log"
)

// PropertiesSource reports the current head block.
type PropertiesSource interface {
	HeadBlock(ctx context.Context) (HeadBlock, error)
}

type Broadcaster interface {
	BroadcastTransaction(ctx context.Context, p *Payload) error
}

// Broadcast fetches the head block, prepares and signs a transaction
// carrying ops, and hands the payload to bc. Nothing is retried.
func (b *Builder) Broadcast(ctx context.Context, src PropertiesSource, bc Broadcaster, ops ...*operation.Operation) (*Payload, error) {
	if len(ops) == 0 {
		return nil, ErrNoOperations
	}
	signer, err := b.Signer()
	if err != nil {
		return nil, err
	}
	head, err := src.HeadBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("tx: head block: %w", err)
	}
	t := New(ops...)
	if err := b.Prepare(t, head); err != nil {
		return nil, err
	}
	res, err := signer.Sign(ctx, t)
	if err != nil {
		return nil, err
	}
	p, err := b.codec.Payload(t)
	if err != nil {
		return nil, err
	}
	if err := bc.BroadcastTransaction(ctx, p); err != nil {
		log.Error().Err(err).Str("tx_id", res.TxID).Msg("tx.Broadcast failed")
		return nil, fmt.Errorf("tx: broadcast %s: %w", res.TxID, err)
	}
	log.Info().Str("tx_id", res.TxID).Int("operations", len(ops)).Msg("tx.Broadcast ok")
	return p, nil
}

// PropertiesFunc adapts a function to PropertiesSource.
type PropertiesFunc func(ctx context.Context) (HeadBlock, error)

func (f PropertiesFunc) HeadBlock(ctx context.Context) (HeadBlock, error) { return f(ctx) }

// BroadcasterFunc adapts a function to Broadcaster.
type BroadcasterFunc func(ctx context.Context, p *Payload) error

func (f BroadcasterFunc) BroadcastTransaction(ctx context.Context, p *Payload) error { return f(ctx, p) }
