package keys

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

const (
	wifVersion  byte = 0x80
	checksumLen      = 4
	prefixLen        = 3
)

var (
	ErrInvalidWIF       = errors.New("keys: invalid wif")
	ErrChecksumMismatch = errors.New("keys: checksum mismatch")
	ErrInvalidPublicKey = errors.New("keys: invalid public key")
	ErrZeroKey          = errors.New("keys: zero private key")
)

// Roles recognised by FromLogin.
var Roles = []string{"owner", "active", "posting", "memo"}

func doubleSHA256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

func ripemdChecksum(b []byte) []byte {
	h := ripemd160.New()
	_, _ = h.Write(b)
	return h.Sum(nil)[:checksumLen]
}

// DecodeWIF parses a base58check WIF string. Both the 37-byte form and the
// 38-byte compressed-flag form are accepted.
func DecodeWIF(wif string) (*secp256k1.PrivateKey, error) {
	raw, err := base58.Decode(strings.TrimSpace(wif))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWIF, err)
	}
	if len(raw) != 1+32+checksumLen && len(raw) != 1+32+1+checksumLen {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidWIF, len(raw))
	}
	if raw[0] != wifVersion {
		return nil, fmt.Errorf("%w: version 0x%02x", ErrInvalidWIF, raw[0])
	}
	body, sum := raw[:len(raw)-checksumLen], raw[len(raw)-checksumLen:]
	if !bytes.Equal(doubleSHA256(body)[:checksumLen], sum) {
		return nil, ErrChecksumMismatch
	}
	if len(body) == 1+32+1 && body[33] != 0x01 {
		return nil, fmt.Errorf("%w: bad compression flag", ErrInvalidWIF)
	}
	return PrivateKeyFromBytes(body[1:33])
}

// EncodeWIF renders priv in the uncompressed 37-byte WIF form.
func EncodeWIF(priv *secp256k1.PrivateKey) string {
	body := append([]byte{wifVersion}, priv.Serialize()...)
	body = append(body, doubleSHA256(body)[:checksumLen]...)
	return base58.Encode(body)
}

func PrivateKeyFromBytes(b []byte) (*secp256k1.PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: private key must be 32 bytes", ErrInvalidWIF)
	}
	priv := secp256k1.PrivKeyFromBytes(b)
	if priv.Key.IsZero() {
		return nil, ErrZeroKey
	}
	return priv, nil
}

// FromLogin derives the role key the way Steem wallets do:
// sha256(account + role + password).
func FromLogin(account, role, password string) (*secp256k1.PrivateKey, error) {
	if strings.TrimSpace(account) == "" || strings.TrimSpace(role) == "" {
		return nil, errors.New("keys: account and role are required")
	}
	seed := sha256.Sum256([]byte(account + role + password))
	return PrivateKeyFromBytes(seed[:])
}

// FormatPublicKey renders pub as prefix + base58(compressed || ripemd160 checksum).
func FormatPublicKey(pub *secp256k1.PublicKey, prefix string) string {
	compressed := pub.SerializeCompressed()
	body := append(compressed, ripemdChecksum(compressed)...)
	return prefix + base58.Encode(body)
}

// ParsePublicKey reverses FormatPublicKey and returns the prefix it found.
func ParsePublicKey(s string) (*secp256k1.PublicKey, string, error) {
	s = strings.TrimSpace(s)
	if len(s) <= prefixLen {
		return nil, "", ErrInvalidPublicKey
	}
	prefix := s[:prefixLen]
	for _, c := range prefix {
		if c < 'A' || c > 'Z' {
			return nil, "", fmt.Errorf("%w: bad prefix %q", ErrInvalidPublicKey, prefix)
		}
	}
	raw, err := base58.Decode(s[prefixLen:])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != 33+checksumLen {
		return nil, "", fmt.Errorf("%w: length %d", ErrInvalidPublicKey, len(raw))
	}
	compressed, sum := raw[:33], raw[33:]
	if !bytes.Equal(ripemdChecksum(compressed), sum) {
		return nil, "", ErrChecksumMismatch
	}
	pub, err := secp256k1.ParsePubKey(compressed)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pub, prefix, nil
}
