package tx

import (
	"fmt"
	"time"

	"github.com/danmuck/steemtx/internal/config"
	"github.com/danmuck/steemtx/internal/keys"
	"github.com/danmuck/steemtx/internal/observability"
	"github.com/danmuck/steemtx/internal/protocol"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/rs/zerolog/log"
)

// Builder fills transaction headers from a head block and hands out
// signers. It holds only read-only state and is safe for concurrent use.
type Builder struct {
	cfg   config.Config
	chain config.Chain
	codec Codec
	key   *secp256k1.PrivateKey
	wif   string
}

type Option func(*Builder)

func WithPrivateKey(key *secp256k1.PrivateKey) Option {
	return func(b *Builder) { b.key = key }
}

// WithWIF defers decoding to Signer so a bad key surfaces there.
func WithWIF(wif string) Option {
	return func(b *Builder) { b.wif = wif }
}

func WithChain(chain config.Chain) Option {
	return func(b *Builder) { b.chain = chain }
}

func NewBuilder(cfg config.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg, chain: cfg.DefaultChain}
	for _, opt := range opts {
		opt(b)
	}
	b.codec = Codec{Assets: protocol.NewAssetBook(cfg)}
	return b
}

func (b *Builder) Codec() Codec { return b.codec }

func (b *Builder) Chain() config.Chain { return b.chain }

func (b *Builder) HasKey() bool {
	return b.key != nil || b.wif != ""
}

// Prepare is Header after checking that a signing key was supplied.
func (b *Builder) Prepare(t *Transaction, head HeadBlock) error {
	if !b.HasKey() {
		return ErrMissingSigningKey
	}
	return b.Header(t, head)
}

// Header sets ref_block_num, ref_block_prefix and expiration from head, and
// resolves the chain. A chain id no network claims is logged, not rejected.
func (b *Builder) Header(t *Transaction, head HeadBlock) error {
	if err := head.Validate(); err != nil {
		return err
	}
	if err := b.resolveChain(t); err != nil {
		return err
	}
	window := b.cfg.Signing.ExpiryWindow
	if window <= 0 {
		window = config.DefaultExpiryWindow
	}
	t.RefBlockNum = uint16(head.Number & 0xFFFF)
	t.RefBlockPrefix = head.RefBlockPrefix()
	t.Expiration = head.Time.UTC().Truncate(time.Second).Add(window)
	observability.RecordTxBuilt(string(t.Chain))
	log.Debug().
		Str("chain", string(t.Chain)).
		Uint32("head", head.Number).
		Uint16("ref_block_num", t.RefBlockNum).
		Uint32("ref_block_prefix", t.RefBlockPrefix).
		Time("expiration", t.Expiration).
		Msg("tx.Header")
	return nil
}

func (b *Builder) resolveChain(t *Transaction) error {
	if t.Chain == "" {
		if t.ChainID != ([32]byte{}) {
			chain, ok := b.cfg.ChainForID(t.ChainID)
			if !ok {
				log.Warn().Hex("chain_id", t.ChainID[:]).Msg("tx: unrecognized chain id")
				return nil
			}
			t.Chain = chain
			return nil
		}
		t.Chain = b.chain
	}
	n, ok := b.cfg.Network(t.Chain)
	if !ok {
		return fmt.Errorf("tx: unknown chain %q", t.Chain)
	}
	id, err := n.ChainIDBytes()
	if err != nil {
		return fmt.Errorf("tx: chain %s: %w", t.Chain, err)
	}
	if t.ChainID != ([32]byte{}) && t.ChainID != id {
		log.Warn().
			Str("chain", string(t.Chain)).
			Hex("chain_id", t.ChainID[:]).
			Msg("tx: chain id does not match chain, keeping chain id")
		return nil
	}
	t.ChainID = id
	return nil
}

// Signer decodes the configured key.
func (b *Builder) Signer() (*Signer, error) {
	key := b.key
	if key == nil {
		if b.wif == "" {
			return nil, ErrMissingSigningKey
		}
		var err error
		key, err = keys.DecodeWIF(b.wif)
		if err != nil {
			return nil, err
		}
	}
	return NewSigner(key, b.codec, b.cfg.Signing.MaxSignAttempts), nil
}

// Payload renders t with this builder's asset book.
func (b *Builder) Payload(t *Transaction) (*Payload, error) {
	return b.codec.Payload(t)
}
