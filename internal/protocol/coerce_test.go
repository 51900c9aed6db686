package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/danmuck/steemtx/internal/config"
	"github.com/danmuck/steemtx/internal/testutil/testlog"
)

func TestCoerceAccepted(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		kind Kind
		raw  any
		want Value
	}{
		{"string", KindString, "xeroc", String("xeroc")},
		{"int16 from float", KindInt16, float64(-100), Int16(-100)},
		{"int16 from json number", KindInt16, json.Number("10000"), Int16(10000)},
		{"uint16 from int", KindUint16, 65535, Uint16(65535)},
		{"uint32 from string", KindUint32, "42", Uint32(42)},
		{"int64 from value", KindInt64, Int64(7), Int64(7)},
		{"bool", KindBool, true, Bool(true)},
		{"bool from string", KindBool, "false", Bool(false)},
		{"string array", KindStringArray, []any{"a", "b"}, nil},
	}
	for _, tc := range cases {
		got, err := DefaultCoercer.Coerce(tc.kind, tc.raw)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got.Kind() != tc.kind {
			t.Fatalf("%s: kind %s want %s", tc.name, got.Kind(), tc.kind)
		}
		if tc.want != nil && got != tc.want {
			t.Fatalf("%s: got %#v want %#v", tc.name, got, tc.want)
		}
	}
}

func TestCoerceNilIsAbsent(t *testing.T) {
	for _, k := range []Kind{KindString, KindAmount, KindPermission, KindPublicKey} {
		v, err := DefaultCoercer.Coerce(k, nil)
		if err != nil || v != nil {
			t.Fatalf("%s: expected absent, got %v %v", k, v, err)
		}
	}
}

func TestCoerceRejectsWrongKind(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		raw  any
	}{
		{"number as string", KindString, 12},
		{"amount as string", KindString, MustAmount("1.000 STEEM")},
		{"string as int16", KindInt16, "lots"},
		{"map as bool", KindBool, map[string]any{}},
		{"bool as amount", KindAmount, true},
		{"string as permission", KindPermission, "owner"},
		{"mixed array", KindStringArray, []any{"a", 1}},
		{"unsupported kind", KindUnsupported, "x"},
	}
	for _, tc := range cases {
		_, err := DefaultCoercer.Coerce(tc.kind, tc.raw)
		if tc.name == "string as int16" {
			if !errors.Is(err, ErrValueOutOfRange) {
				t.Fatalf("%s: expected numeric error, got %v", tc.name, err)
			}
			continue
		}
		if !errors.Is(err, ErrUnsupportedValueKind) {
			t.Fatalf("%s: expected ErrUnsupportedValueKind, got %v", tc.name, err)
		}
		var kindErr UnsupportedValueKindError
		if !errors.As(err, &kindErr) {
			t.Fatalf("%s: expected UnsupportedValueKindError, got %T", tc.name, err)
		}
		if kindErr.Kind != tc.kind {
			t.Fatalf("%s: error carries kind %s", tc.name, kindErr.Kind)
		}
	}
}

func TestCoerceRanges(t *testing.T) {
	if _, err := DefaultCoercer.Coerce(KindInt16, 40000); !errors.Is(err, ErrValueOutOfRange) {
		t.Fatalf("expected int16 overflow, got %v", err)
	}
	if _, err := DefaultCoercer.Coerce(KindUint16, -1); !errors.Is(err, ErrValueOutOfRange) {
		t.Fatalf("expected uint16 underflow, got %v", err)
	}
	if _, err := DefaultCoercer.Coerce(KindUint32, 1.5); !errors.Is(err, ErrValueOutOfRange) {
		t.Fatalf("expected fractional rejection, got %v", err)
	}
}

func TestCoerceTimestamp(t *testing.T) {
	want := time.Unix(0x57a879f1, 0).UTC()
	for _, raw := range []any{"2016-08-08T12:24:17", "2016-08-08T12:24:17Z", want, float64(0x57a879f1)} {
		v, err := DefaultCoercer.Coerce(KindTimestamp, raw)
		if err != nil {
			t.Fatalf("%v: %v", raw, err)
		}
		if !v.(Timestamp).Time().Equal(want) {
			t.Fatalf("%v: got %s", raw, v.(Timestamp).Time())
		}
	}
	if _, err := DefaultCoercer.Coerce(KindTimestamp, "yesterday"); err == nil {
		t.Fatalf("expected bad timestamp to fail")
	}
}

func TestCoerceAmountAndChain(t *testing.T) {
	testlog.Start(t)
	hive := Coercer{Assets: DefaultAssets, Chain: config.ChainHive}
	v, err := hive.Coerce(KindAmount, "1.000 HIVE")
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if v.(Amount).Chain() != config.ChainHive {
		t.Fatalf("unexpected chain %s", v.(Amount).Chain())
	}
	if _, err := hive.Coerce(KindAmount, "1.000 STEEM"); !errors.Is(err, ErrUnregisteredAsset) {
		t.Fatalf("steem symbol should not resolve on hive, got %v", err)
	}
	if _, err := hive.Coerce(KindAmount, MustAmount("1.000 STEEM")); !errors.Is(err, ErrChainMismatch) {
		t.Fatalf("steem amount on hive coercer should mismatch, got %v", err)
	}

	price, err := DefaultCoercer.Coerce(KindPrice, map[string]any{"base": "1.000 SBD", "quote": "3.500 STEEM"})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if price.(Price).Quote.String() != "3.500 STEEM" {
		t.Fatalf("unexpected price %v", price.Display())
	}
	if _, err := DefaultCoercer.Coerce(KindPrice, map[string]any{"base": "1.000 SBD"}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected price without quote to fail, got %v", err)
	}
}

func TestCoercePermissionSortsMapKeys(t *testing.T) {
	v, err := DefaultCoercer.Coerce(KindPermission, map[string]any{
		"weight_threshold": float64(1),
		"account_auths":    "[]",
	})
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	p := v.(Permission)
	if len(p) != 2 || p[0].Key != "account_auths" || p[1].Key != "weight_threshold" || p[1].Value != "1" {
		t.Fatalf("unexpected permission %+v", p)
	}
}
