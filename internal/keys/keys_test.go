package keys

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
)

func mustSeedKey(t *testing.T, b byte) []byte {
	t.Helper()
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = b + byte(i)
	}
	return seed
}

func TestWIFRoundTrip(t *testing.T) {
	priv, err := PrivateKeyFromBytes(mustSeedKey(t, 1))
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes: %v", err)
	}
	wif := EncodeWIF(priv)
	if !strings.HasPrefix(wif, "5") {
		t.Fatalf("uncompressed WIF should start with 5, got %q", wif)
	}
	back, err := DecodeWIF(wif)
	if err != nil {
		t.Fatalf("DecodeWIF: %v", err)
	}
	if !bytes.Equal(back.Serialize(), priv.Serialize()) {
		t.Fatalf("round-trip key mismatch")
	}
}

func TestDecodeWIFCompressedFlag(t *testing.T) {
	key := mustSeedKey(t, 7)
	body := append([]byte{wifVersion}, key...)
	body = append(body, 0x01)
	body = append(body, doubleSHA256(body)[:checksumLen]...)
	priv, err := DecodeWIF(base58.Encode(body))
	if err != nil {
		t.Fatalf("DecodeWIF: %v", err)
	}
	if !bytes.Equal(priv.Serialize(), key) {
		t.Fatalf("compressed WIF key mismatch")
	}
}

func TestDecodeWIFRejectsCorruption(t *testing.T) {
	priv, err := PrivateKeyFromBytes(mustSeedKey(t, 3))
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes: %v", err)
	}
	raw, err := base58.Decode(EncodeWIF(priv))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	raw[len(raw)-1] ^= 0xff
	if _, err := DecodeWIF(base58.Encode(raw)); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
	if _, err := DecodeWIF("not-base58-0OIl"); !errors.Is(err, ErrInvalidWIF) {
		t.Fatalf("expected ErrInvalidWIF, got %v", err)
	}
	short := base58.Encode([]byte{wifVersion, 1, 2, 3})
	if _, err := DecodeWIF(short); !errors.Is(err, ErrInvalidWIF) {
		t.Fatalf("expected ErrInvalidWIF for short input, got %v", err)
	}
}

func TestPrivateKeyFromBytesRejectsZero(t *testing.T) {
	if _, err := PrivateKeyFromBytes(make([]byte, 32)); !errors.Is(err, ErrZeroKey) {
		t.Fatalf("expected ErrZeroKey, got %v", err)
	}
}

func TestFromLoginIsDeterministic(t *testing.T) {
	a, err := FromLogin("xeroc", "active", "secret")
	if err != nil {
		t.Fatalf("FromLogin: %v", err)
	}
	b, err := FromLogin("xeroc", "active", "secret")
	if err != nil {
		t.Fatalf("FromLogin: %v", err)
	}
	if !bytes.Equal(a.Serialize(), b.Serialize()) {
		t.Fatalf("expected deterministic derivation")
	}
	want := sha256.Sum256([]byte("xerocactivesecret"))
	if !bytes.Equal(a.Serialize(), want[:]) {
		t.Fatalf("unexpected derivation")
	}
	c, err := FromLogin("xeroc", "posting", "secret")
	if err != nil {
		t.Fatalf("FromLogin: %v", err)
	}
	if bytes.Equal(a.Serialize(), c.Serialize()) {
		t.Fatalf("roles must derive distinct keys")
	}
}

func TestPublicKeyFormatRoundTrip(t *testing.T) {
	priv, err := PrivateKeyFromBytes(mustSeedKey(t, 9))
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes: %v", err)
	}
	s := FormatPublicKey(priv.PubKey(), "STM")
	if !strings.HasPrefix(s, "STM") {
		t.Fatalf("missing prefix: %q", s)
	}
	pub, prefix, err := ParsePublicKey(s)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if prefix != "STM" || !pub.IsEqual(priv.PubKey()) {
		t.Fatalf("round-trip mismatch prefix=%q", prefix)
	}

	broken := s[:len(s)-1] + "1"
	if broken == s {
		broken = s[:len(s)-1] + "2"
	}
	if _, _, err := ParsePublicKey(broken); err == nil {
		t.Fatalf("expected tampered key to fail")
	}
	if _, _, err := ParsePublicKey("stm" + s[3:]); !errors.Is(err, ErrInvalidPublicKey) {
		t.Fatalf("expected ErrInvalidPublicKey for lowercase prefix, got %v", err)
	}
}
