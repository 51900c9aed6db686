package protocol

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/danmuck/steemtx/internal/keys"
	"github.com/danmuck/steemtx/internal/testutil/testlog"
)

func mustEncode(t *testing.T, v Value) []byte {
	t.Helper()
	b, err := Encode(v)
	if err != nil {
		t.Fatalf("encode %T: %v", v, err)
	}
	return b
}

func TestScalarEncodings(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"absent", nil, ""},
		{"string", String("xeroc"), "057865726f63"},
		{"empty string", String(""), "00"},
		{"int16 positive", Int16(10000), "1027"},
		{"int16 negative", Int16(-10000), "f0d8"},
		{"uint16", Uint16(0xBD8C), "8cbd"},
		{"uint32", Uint32(0x456FE25F), "5fe26f45"},
		{"int64", Int64(1), "0100000000000000"},
		{"bool true", Bool(true), "01"},
		{"bool false", Bool(false), "00"},
		{"timestamp", NewTimestamp(time.Unix(0x57a879f1, 0)), "f179a857"},
		{"string array", StringArray{"a", "bc"}, "020161026263"},
		{"empty array", StringArray{}, "00"},
		{"permission", Permission{{Key: "weight_threshold", Value: "1"}}, "0110" + hex.EncodeToString([]byte("weight_threshold")) + "0131"},
	}
	for _, tc := range cases {
		got := hex.EncodeToString(mustEncode(t, tc.v))
		if got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestTimestampRangeAndDisplay(t *testing.T) {
	ts, err := ParseTimestamp("2016-08-08T12:24:17")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if ts.Display() != "2016-08-08T12:24:17" {
		t.Fatalf("unexpected display: %v", ts.Display())
	}
	if _, err := ParseTimestamp("2016-08-08T12:24:17Z"); err != nil {
		t.Fatalf("RFC3339 form should parse: %v", err)
	}
	if _, err := ParseTimestamp("yesterday"); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
	if _, err := Encode(NewTimestamp(time.Unix(-1, 0))); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected pre-epoch timestamp to fail, got %v", err)
	}
}

func TestPublicKeyEncodesCompressedPoint(t *testing.T) {
	seed := bytes.Repeat([]byte{0x11}, 32)
	priv, err := keys.PrivateKeyFromBytes(seed)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	formatted := keys.FormatPublicKey(priv.PubKey(), "STM")
	pk, err := ParsePublicKey(formatted)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	got := mustEncode(t, pk)
	if !bytes.Equal(got, priv.PubKey().SerializeCompressed()) {
		t.Fatalf("unexpected encoding %x", got)
	}
	if pk.Display() != formatted {
		t.Fatalf("display mismatch: %v", pk.Display())
	}
	if _, err := Encode(PublicKey{}); err == nil {
		t.Fatalf("expected nil key to fail")
	}
}

func TestObjectMarshalKeepsOrder(t *testing.T) {
	obj := Object{{Key: "voter", Value: "xeroc"}, {Key: "author", Value: "a"}, {Key: "weight", Value: 1}}
	b, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"voter":"xeroc","author":"a","weight":1}` {
		t.Fatalf("unexpected json: %s", b)
	}
	if v, ok := obj.Get("author"); !ok || v != "a" {
		t.Fatalf("Get author = %v,%v", v, ok)
	}
	perm := Permission{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}}
	b, err = json.Marshal(perm.Display())
	if err != nil {
		t.Fatalf("marshal permission: %v", err)
	}
	if string(b) != `{"b":"2","a":"1"}` {
		t.Fatalf("unexpected permission json: %s", b)
	}
}

func TestKindNames(t *testing.T) {
	if KindAmount.String() != "amount" || KindPermission.String() != "permission" {
		t.Fatalf("unexpected kind names")
	}
	if Kind(200).String() != "unknown" {
		t.Fatalf("expected unknown kind name")
	}
}
