package operation

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/danmuck/steemtx/internal/config"
	"github.com/danmuck/steemtx/internal/protocol"
	"github.com/danmuck/steemtx/internal/protocol/schema"
	"github.com/danmuck/steemtx/internal/testutil/testlog"
)

func vote() *Operation {
	return New("vote").
		Set("voter", "xeroc").
		Set("author", "xeroc").
		Set("permlink", "piston").
		Set("weight", 10000)
}

func TestVoteBytes(t *testing.T) {
	testlog.Start(t)
	b, err := ToBytes(vote())
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	want := "00" + "057865726f63" + "057865726f63" + "06706973746f6e" + "1027"
	if got := hex.EncodeToString(b); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestFromParamsMatchesBuilder(t *testing.T) {
	testlog.Start(t)
	params := map[string]any{"voter": "xeroc", "author": "xeroc", "permlink": "piston", "weight": float64(10000), "ignored": true}
	a, err := ToBytes(FromParams("vote", params))
	if err != nil {
		t.Fatalf("FromParams: %v", err)
	}
	b, err := ToBytes(vote())
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	if hex.EncodeToString(a) != hex.EncodeToString(b) {
		t.Fatalf("loose and typed assembly differ: %x vs %x", a, b)
	}
	params["voter"] = "someone"
	again, _ := ToBytes(FromParams("vote", map[string]any{"voter": "xeroc", "author": "xeroc", "permlink": "piston", "weight": 10000}))
	if hex.EncodeToString(again) != hex.EncodeToString(b) {
		t.Fatalf("FromParams should copy its input")
	}
}

func TestLengthIsIDPlusParams(t *testing.T) {
	testlog.Start(t)
	op := New("transfer").
		Set("from", "alice").
		Set("to", "bob").
		Set("amount", "1.000 STEEM").
		Set("memo", "thanks")
	b, err := ToBytes(op)
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	s, _ := schema.Lookup("transfer")
	total := 1
	for _, p := range s.Params {
		v, err := protocol.DefaultCoercer.Coerce(p.Kind, op.Fields[p.Name])
		if err != nil {
			t.Fatalf("coerce %s: %v", p.Name, err)
		}
		enc, err := protocol.Encode(v)
		if err != nil {
			t.Fatalf("encode %s: %v", p.Name, err)
		}
		total += len(enc)
	}
	if len(b) != total {
		t.Fatalf("len %d want %d", len(b), total)
	}
	if b[0] != 2 {
		t.Fatalf("transfer id byte %d", b[0])
	}
}

func TestMissingParamIsAbsent(t *testing.T) {
	testlog.Start(t)
	full, _ := ToBytes(vote())
	op := vote()
	delete(op.Fields, "weight")
	partial, err := ToBytes(op)
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	if len(full)-len(partial) != 2 {
		t.Fatalf("absent weight should drop two bytes: %d vs %d", len(full), len(partial))
	}
	op.Set("weight", nil)
	nilWeight, _ := ToBytes(op)
	if len(nilWeight) != len(partial) {
		t.Fatalf("nil field should be absent")
	}
}

func TestAssemblyErrors(t *testing.T) {
	testlog.Start(t)
	if _, err := ToBytes(New("teleport")); !errors.Is(err, schema.ErrUnknownOperationType) {
		t.Fatalf("expected ErrUnknownOperationType, got %v", err)
	}
	if _, err := ToBytes(New("pow2")); !errors.Is(err, protocol.ErrUnsupportedValueKind) {
		t.Fatalf("reserved op should be unsupported, got %v", err)
	}
	_, err := ToBytes(vote().Set("author", true))
	var kindErr protocol.UnsupportedValueKindError
	if !errors.As(err, &kindErr) || kindErr.Param != "author" {
		t.Fatalf("expected unsupported author, got %v", err)
	}
	if _, err := ToBytes(vote().Set("weight", 40000)); !errors.Is(err, protocol.ErrValueOutOfRange) {
		t.Fatalf("expected out of range weight, got %v", err)
	}
	if _, err := ToBytes(nil); !errors.Is(err, ErrMalformedOperation) {
		t.Fatalf("expected ErrMalformedOperation, got %v", err)
	}
}

func TestChainScopedAssembler(t *testing.T) {
	testlog.Start(t)
	hive := Assembler{Coercer: protocol.Coercer{Chain: config.ChainHive}}
	op := New("transfer").Set("from", "a").Set("to", "b").Set("amount", "1.000 HIVE").Set("memo", "")
	hb, err := hive.ToBytes(op)
	if err != nil {
		t.Fatalf("hive transfer: %v", err)
	}
	sb, err := ToBytes(New("transfer").Set("from", "a").Set("to", "b").Set("amount", "1.000 STEEM").Set("memo", ""))
	if err != nil {
		t.Fatalf("steem transfer: %v", err)
	}
	if hex.EncodeToString(hb) != hex.EncodeToString(sb) {
		t.Fatalf("hive core should encode with the legacy symbol")
	}
	if _, err := hive.ToBytes(New("transfer").Set("amount", "1.000 SBD")); !errors.Is(err, protocol.ErrUnregisteredAsset) {
		t.Fatalf("expected SBD to be unregistered on hive, got %v", err)
	}
}

func TestLogicalPayloadOrder(t *testing.T) {
	testlog.Start(t)
	p, err := DefaultAssembler.Payload(vote())
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `["vote",{"voter":"xeroc","author":"xeroc","permlink":"piston","weight":10000}]`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
	name, params, err := LogicalPayload(New("transfer").Set("amount", "0.500 SBD"))
	if err != nil {
		t.Fatalf("LogicalPayload: %v", err)
	}
	if name != "transfer" || len(params) != 4 {
		t.Fatalf("unexpected payload %s %v", name, params)
	}
	if v, _ := params.Get("amount"); v != "0.500 SBD" {
		t.Fatalf("unexpected amount display %v", v)
	}
	if v, ok := params.Get("memo"); !ok || v != nil {
		t.Fatalf("absent memo should display as null, got %v %v", v, ok)
	}
}

func TestOperationJSON(t *testing.T) {
	testlog.Start(t)
	var op Operation
	if err := json.Unmarshal([]byte(`["vote",{"voter":"xeroc","author":"xeroc","permlink":"piston","weight":10000}]`), &op); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if op.Type != "vote" {
		t.Fatalf("unexpected type %s", op.Type)
	}
	if _, ok := op.Fields["weight"].(json.Number); !ok {
		t.Fatalf("weight should decode as json.Number, got %T", op.Fields["weight"])
	}
	b, err := ToBytes(&op)
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	want, _ := ToBytes(vote())
	if hex.EncodeToString(b) != hex.EncodeToString(want) {
		t.Fatalf("decoded operation encodes differently")
	}
	if err := json.Unmarshal([]byte(`["vote"]`), &op); !errors.Is(err, ErrMalformedOperation) {
		t.Fatalf("expected ErrMalformedOperation, got %v", err)
	}
}
