package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danmuck/steemtx/internal/config"
	"github.com/shopspring/decimal"
)

const symbolWidth = 7

var (
	maxSatoshis = decimal.NewFromInt(math.MaxInt64)
	minSatoshis = decimal.NewFromInt(math.MinInt64)
)

// Amount is an immutable quantity of one registered asset on one chain.
type Amount struct {
	value decimal.Decimal
	asset config.Asset
	chain config.Chain
}

// NAIAmount is the numeric-asset-identifier JSON form of an Amount.
type NAIAmount struct {
	Amount    string `json:"amount"`
	Precision uint8  `json:"precision"`
	NAI       string `json:"nai"`
}

func (a Amount) Value() decimal.Decimal { return a.value }
func (a Amount) Precision() uint8       { return a.asset.Precision }
func (a Amount) Symbol() string         { return a.asset.Symbol }
func (a Amount) NAI() string            { return a.asset.NAI }
func (a Amount) Chain() config.Chain    { return a.chain }
func (a Amount) Asset() config.Asset    { return a.asset }

// Satoshis is value × 10^precision as an integer.
func (a Amount) Satoshis() int64 {
	return a.value.Shift(int32(a.asset.Precision)).Round(0).IntPart()
}

func (a Amount) String() string {
	return a.value.StringFixed(int32(a.asset.Precision)) + " " + a.asset.Symbol
}

func (a Amount) ToNAI() NAIAmount {
	return NAIAmount{
		Amount:    strconv.FormatInt(a.Satoshis(), 10),
		Precision: a.asset.Precision,
		NAI:       a.asset.NAI,
	}
}

func (Amount) Kind() Kind { return KindAmount }

// Encode writes i64 satoshis, the precision byte, and the wire symbol
// null-padded to seven bytes.
func (a Amount) Encode(w *Writer) error {
	symbol := a.asset.Encoded()
	if symbol == "" || len(symbol) > symbolWidth {
		return fmt.Errorf("%w: symbol %q", ErrUnregisteredAsset, symbol)
	}
	w.Int64(a.Satoshis())
	w.Uint8(a.asset.Precision)
	var pad [symbolWidth]byte
	copy(pad[:], symbol)
	w.Raw(pad[:])
	return nil
}

func (a Amount) Display() any { return a.String() }
func (Amount) sealed()        {}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// Equal reports whether a and o name the same chain, asset, and value.
func (a Amount) Equal(o Amount) bool {
	return a.chain == o.chain && a.asset == o.asset && a.value.Equal(o.value)
}

func (a Amount) Cmp(o Amount) (int, error) {
	if err := a.compatible(o); err != nil {
		return 0, err
	}
	return a.value.Cmp(o.value), nil
}

func (a Amount) compatible(o Amount) error {
	if a.chain != o.chain {
		return fmt.Errorf("%w: %s vs %s", ErrChainMismatch, a.chain, o.chain)
	}
	if a.asset.Symbol != o.asset.Symbol {
		return fmt.Errorf("%w: %s vs %s", ErrAssetMismatch, a.asset.Symbol, o.asset.Symbol)
	}
	return nil
}

func (a Amount) with(v decimal.Decimal) (Amount, error) {
	v = v.Round(int32(a.asset.Precision))
	if err := checkRange(v, a.asset.Precision); err != nil {
		return Amount{}, err
	}
	return Amount{value: v, asset: a.asset, chain: a.chain}, nil
}

func (a Amount) Add(o Amount) (Amount, error) {
	if err := a.compatible(o); err != nil {
		return Amount{}, err
	}
	return a.with(a.value.Add(o.value))
}

func (a Amount) Sub(o Amount) (Amount, error) {
	if err := a.compatible(o); err != nil {
		return Amount{}, err
	}
	return a.with(a.value.Sub(o.value))
}

func (a Amount) Mul(o Amount) (Amount, error) {
	if err := a.compatible(o); err != nil {
		return Amount{}, err
	}
	return a.with(a.value.Mul(o.value))
}

func (a Amount) Div(o Amount) (Amount, error) {
	if err := a.compatible(o); err != nil {
		return Amount{}, err
	}
	if o.value.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	return a.with(a.value.DivRound(o.value, int32(a.asset.Precision)))
}

func checkRange(v decimal.Decimal, precision uint8) error {
	sats := v.Shift(int32(precision))
	if sats.Cmp(maxSatoshis) > 0 || sats.Cmp(minSatoshis) < 0 {
		return fmt.Errorf("%w: %s overflows int64 satoshis", ErrValueOutOfRange, v)
	}
	return nil
}

func (b *AssetBook) build(v decimal.Decimal, asset config.Asset, chain config.Chain) (Amount, error) {
	if !v.Round(int32(asset.Precision)).Equal(v) {
		return Amount{}, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, v, asset.Precision)
	}
	if err := checkRange(v, asset.Precision); err != nil {
		return Amount{}, err
	}
	return Amount{value: v.Round(int32(asset.Precision)), asset: asset, chain: chain}, nil
}

// ParseAmount reads "3.000 STEEM". An empty chain is inferred from the symbol.
func (b *AssetBook) ParseAmount(s string, chain config.Chain) (Amount, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	v, err := decimal.NewFromString(fields[0])
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	symbol := fields[1]
	chain, err = b.resolveChain(chain, func(a config.Asset) bool { return a.Symbol == symbol }, symbol)
	if err != nil {
		return Amount{}, err
	}
	asset, err := b.Lookup(chain, symbol)
	if err != nil {
		return Amount{}, err
	}
	return b.build(v, asset, chain)
}

// AmountFromNAI reads the integer-satoshi form {amount, precision, nai}.
func (b *AssetBook) AmountFromNAI(n NAIAmount, chain config.Chain) (Amount, error) {
	sats, err := decimal.NewFromString(strings.TrimSpace(n.Amount))
	if err != nil || !sats.Equal(sats.Truncate(0)) {
		return Amount{}, fmt.Errorf("%w: satoshi amount %q", ErrInvalidAmount, n.Amount)
	}
	chain, err = b.resolveChain(chain, func(a config.Asset) bool { return a.NAI == n.NAI }, n.NAI)
	if err != nil {
		return Amount{}, err
	}
	asset, err := b.LookupNAI(chain, n.NAI)
	if err != nil {
		return Amount{}, err
	}
	if asset.Precision != n.Precision {
		return Amount{}, fmt.Errorf("%w: %s precision %d, registered %d", ErrUnregisteredAsset, n.NAI, n.Precision, asset.Precision)
	}
	return b.build(sats.Shift(-int32(n.Precision)), asset, chain)
}

// NewAmount accepts a string, NAIAmount, a {amount, precision, nai} map, the
// [amount, precision, nai] array form, or another Amount.
func (b *AssetBook) NewAmount(input any, chain config.Chain) (Amount, error) {
	switch v := input.(type) {
	case Amount:
		if chain != "" && v.chain != chain {
			return Amount{}, fmt.Errorf("%w: %s vs %s", ErrChainMismatch, v.chain, chain)
		}
		if _, err := b.Lookup(v.chain, v.asset.Symbol); err != nil {
			return Amount{}, err
		}
		return v, nil
	case *Amount:
		if v == nil {
			return Amount{}, unsupported(input, KindAmount)
		}
		return b.NewAmount(*v, chain)
	case string:
		return b.ParseAmount(v, chain)
	case NAIAmount:
		return b.AmountFromNAI(v, chain)
	case map[string]any:
		n, err := naiFromMap(v)
		if err != nil {
			return Amount{}, err
		}
		return b.AmountFromNAI(n, chain)
	case []any:
		n, err := naiFromArray(v)
		if err != nil {
			return Amount{}, err
		}
		return b.AmountFromNAI(n, chain)
	default:
		return Amount{}, unsupported(input, KindAmount)
	}
}

// DecodeAmount reads one wire-encoded Amount from r.
func (b *AssetBook) DecodeAmount(r *Reader, chain config.Chain) (Amount, error) {
	sats, err := r.Int64()
	if err != nil {
		return Amount{}, err
	}
	precision, err := r.Uint8()
	if err != nil {
		return Amount{}, err
	}
	raw, err := r.Raw(symbolWidth)
	if err != nil {
		return Amount{}, err
	}
	symbol := string(bytes.TrimRight(raw, "\x00"))
	chain, err = b.resolveChain(chain, func(a config.Asset) bool { return a.Encoded() == symbol }, symbol)
	if err != nil {
		return Amount{}, err
	}
	asset, err := b.LookupWire(chain, symbol)
	if err != nil {
		return Amount{}, err
	}
	if asset.Precision != precision {
		return Amount{}, fmt.Errorf("%w: %s precision %d, registered %d", ErrUnregisteredAsset, symbol, precision, asset.Precision)
	}
	return b.build(decimal.New(sats, -int32(precision)), asset, chain)
}

func naiFromMap(m map[string]any) (NAIAmount, error) {
	return naiFromParts(m["amount"], m["precision"], m["nai"])
}

func naiFromArray(a []any) (NAIAmount, error) {
	if len(a) != 3 {
		return NAIAmount{}, fmt.Errorf("%w: nai array needs 3 elements, got %d", ErrInvalidAmount, len(a))
	}
	return naiFromParts(a[0], a[1], a[2])
}

func naiFromParts(amount, precision, nai any) (NAIAmount, error) {
	var n NAIAmount
	switch v := amount.(type) {
	case string:
		n.Amount = v
	case json.Number:
		n.Amount = v.String()
	default:
		i, err := toInt64(amount)
		if err != nil {
			return NAIAmount{}, fmt.Errorf("%w: nai amount: %v", ErrInvalidAmount, err)
		}
		n.Amount = strconv.FormatInt(i, 10)
	}
	p, err := toInt64(precision)
	if err != nil || p < 0 || p > math.MaxUint8 {
		return NAIAmount{}, fmt.Errorf("%w: nai precision %v", ErrInvalidAmount, precision)
	}
	n.Precision = uint8(p)
	s, ok := nai.(string)
	if !ok || s == "" {
		return NAIAmount{}, fmt.Errorf("%w: nai %v", ErrInvalidAmount, nai)
	}
	n.NAI = s
	return n, nil
}

// Package-level helpers resolve against DefaultAssets.

func ParseAmount(s string, chain config.Chain) (Amount, error) {
	return DefaultAssets.ParseAmount(s, chain)
}

func NewAmount(input any, chain config.Chain) (Amount, error) {
	return DefaultAssets.NewAmount(input, chain)
}

func MustAmount(s string) Amount {
	a, err := DefaultAssets.ParseAmount(s, "")
	if err != nil {
		panic(err)
	}
	return a
}

// Price is a base/quote exchange rate.
type Price struct {
	Base  Amount
	Quote Amount
}

func (Price) Kind() Kind { return KindPrice }

func (p Price) Encode(w *Writer) error {
	if err := p.Base.Encode(w); err != nil {
		return err
	}
	return p.Quote.Encode(w)
}

func (p Price) Display() any {
	return Object{
		{Key: "base", Value: p.Base.String()},
		{Key: "quote", Value: p.Quote.String()},
	}
}

func (Price) sealed() {}
