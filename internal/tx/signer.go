package tx

import (
	"context"
	"fmt"
	"time"

	"github.com/danmuck/steemtx/internal/config"
	"github.com/danmuck/steemtx/internal/keys"
	"github.com/danmuck/steemtx/internal/observability"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/rs/zerolog/log"
)

// SignatureSize is recovery byte ‖ r ‖ s.
const SignatureSize = 65

// Signer owns one private key. Each Sign call keeps its own expiration
// offset, so a Signer may be shared.
type Signer struct {
	key         *secp256k1.PrivateKey
	pub         *secp256k1.PublicKey
	codec       Codec
	maxAttempts int
	canonical   func(sig []byte) bool
}

func NewSigner(key *secp256k1.PrivateKey, codec Codec, maxAttempts int) *Signer {
	if maxAttempts <= 0 {
		maxAttempts = config.DefaultMaxSignAttempts
	}
	return &Signer{
		key:         key,
		pub:         key.PubKey(),
		codec:       codec,
		maxAttempts: maxAttempts,
		canonical:   IsCanonical,
	}
}

func (s *Signer) PublicKey() *secp256k1.PublicKey { return s.pub }

// String never includes key material.
func (s *Signer) String() string {
	return "tx.Signer(" + keys.FormatPublicKey(s.pub, "STM") + ")"
}

// Result describes a finished canonical search.
type Result struct {
	Attempts int
	Offset   time.Duration
	Digest   [32]byte
	TxID     string
}

// Sign searches for a canonical signature. Each non-canonical attempt
// moves the expiration one second later and re-signs. On success t carries
// the signature and the expiration that was actually signed. On failure t
// is left untouched.
func (s *Signer) Sign(ctx context.Context, t *Transaction) (Result, error) {
	start := time.Now()
	chain := string(t.Chain)
	base := t.Expiration
	var offset time.Duration
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			observability.RecordSignExhausted(chain, "context")
			observability.RecordSignDuration(chain, time.Since(start), false)
			return Result{Attempts: attempt - 1}, fmt.Errorf("tx: canonical search: %w", err)
		}
		expiration := base.Add(offset)
		digest, err := s.codec.digestAt(t, expiration)
		if err != nil {
			return Result{}, err
		}
		sig := ecdsa.SignCompact(s.key, digest[:], true)
		recovered, _, err := ecdsa.RecoverCompact(sig, digest[:])
		if err != nil || !recovered.IsEqual(s.pub) {
			log.Warn().Str("chain", chain).Int("attempt", attempt).Msg("tx.Sign recovered key mismatch")
			observability.RecordSignAttempt(chain, false)
			offset += time.Second
			continue
		}
		if !s.canonical(sig) {
			observability.RecordSignAttempt(chain, false)
			offset += time.Second
			continue
		}
		observability.RecordSignAttempt(chain, true)

		t.Expiration = expiration
		t.Signature = sig
		id, err := s.codec.ID(t)
		if err != nil {
			return Result{}, err
		}
		observability.RecordSignDuration(chain, time.Since(start), true)
		log.Info().
			Str("chain", chain).
			Int("attempt", attempt).
			Dur("offset", offset).
			Str("tx_id", id).
			Msg("tx.Sign canonical")
		return Result{Attempts: attempt, Offset: offset, Digest: digest, TxID: id}, nil
	}
	observability.RecordSignExhausted(chain, "attempts")
	observability.RecordSignDuration(chain, time.Since(start), false)
	log.Error().Str("chain", chain).Int("attempts", s.maxAttempts).Msg("tx.Sign exhausted")
	return Result{Attempts: s.maxAttempts}, fmt.Errorf("%w after %d attempts", ErrSigningExhausted, s.maxAttempts)
}

// IsCanonical checks the 64-byte r ‖ s of a 65-byte compact signature:
// the first byte of each half has its high bit clear and is nonzero, and
// the second byte of each half has its high bit clear.
func IsCanonical(sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	r, s := sig[1:33], sig[33:65]
	return half(r) && half(s)
}

func half(b []byte) bool {
	return b[0]&0x80 == 0 && b[0] != 0 && b[1]&0x80 == 0
}

// Verify recovers the signer of t's current digest from its signature.
func Verify(codec Codec, t *Transaction) (*secp256k1.PublicKey, error) {
	if len(t.Signature) != SignatureSize {
		return nil, fmt.Errorf("tx: signature has %d bytes", len(t.Signature))
	}
	digest, err := codec.Digest(t)
	if err != nil {
		return nil, err
	}
	pub, _, err := ecdsa.RecoverCompact(t.Signature, digest[:])
	if err != nil {
		return nil, fmt.Errorf("tx: recover: %w", err)
	}
	return pub, nil
}
