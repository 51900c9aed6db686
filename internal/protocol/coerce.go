package protocol

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/steemtx/internal/config"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Coercer turns loosely-typed input (JSON-decoded values, Go scalars, or
// Values) into the Value a parameter kind requires.
type Coercer struct {
	Assets *AssetBook
	// Chain scopes amount parsing. Empty means infer from the symbol.
	Chain config.Chain
}

// DefaultCoercer resolves amounts against DefaultAssets and infers chains.
var DefaultCoercer = Coercer{Assets: DefaultAssets}

// Coerce returns nil for nil input regardless of kind.
func (c Coercer) Coerce(kind Kind, raw any) (Value, error) {
	if raw == nil {
		return nil, nil
	}
	if v, ok := raw.(Value); ok {
		if v.Kind() == kind {
			if a, ok := v.(Amount); ok {
				return c.assets().NewAmount(a, c.Chain)
			}
			return v, nil
		}
	}
	switch kind {
	case KindString:
		return coerceString(raw)
	case KindInt16:
		i, err := coerceInt(raw, math.MinInt16, math.MaxInt16, kind)
		return Int16(i), err
	case KindUint16:
		i, err := coerceInt(raw, 0, math.MaxUint16, kind)
		return Uint16(i), err
	case KindUint32:
		i, err := coerceInt(raw, 0, math.MaxUint32, kind)
		return Uint32(i), err
	case KindInt64:
		i, err := coerceInt(raw, math.MinInt64, math.MaxInt64, kind)
		return Int64(i), err
	case KindBool:
		return coerceBool(raw)
	case KindTimestamp:
		return coerceTimestamp(raw)
	case KindAmount:
		return c.assets().NewAmount(raw, c.Chain)
	case KindPrice:
		return c.coercePrice(raw)
	case KindStringArray:
		return coerceStringArray(raw)
	case KindPermission:
		return coercePermission(raw)
	case KindPublicKey:
		return coercePublicKey(raw)
	default:
		return nil, unsupported(raw, kind)
	}
}

func (c Coercer) assets() *AssetBook {
	if c.Assets == nil {
		return DefaultAssets
	}
	return c.Assets
}

func coerceString(raw any) (Value, error) {
	switch v := raw.(type) {
	case string:
		return String(v), nil
	case []byte:
		return String(v), nil
	case fmt.Stringer:
		if _, isValue := raw.(Value); isValue {
			return nil, unsupported(raw, KindString)
		}
		return String(v.String()), nil
	default:
		return nil, unsupported(raw, KindString)
	}
}

func coerceInt(raw any, lo, hi int64, kind Kind) (int64, error) {
	var i int64
	switch v := raw.(type) {
	case Int16:
		i = int64(v)
	case Uint16:
		i = int64(v)
	case Uint32:
		i = int64(v)
	case Int64:
		i = int64(v)
	case Value:
		return 0, unsupported(raw, kind)
	default:
		var err error
		i, err = toInt64(raw)
		if err != nil {
			if _, isNum := err.(numberError); isNum {
				return 0, err
			}
			return 0, unsupported(raw, kind)
		}
	}
	if i < lo || i > hi {
		return 0, fmt.Errorf("%w: %d does not fit %s", ErrValueOutOfRange, i, kind)
	}
	return i, nil
}

type numberError struct{ msg string }

func (e numberError) Error() string { return e.msg }
func (e numberError) Unwrap() error { return ErrValueOutOfRange }

// toInt64 accepts Go integers, integral float64 (JSON numbers), json.Number,
// and decimal strings.
func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, numberError{fmt.Sprintf("protocol: %d overflows int64", v)}
		}
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, numberError{fmt.Sprintf("protocol: %d overflows int64", v)}
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, numberError{fmt.Sprintf("protocol: %v is not an integer", v)}
		}
		return int64(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, numberError{fmt.Sprintf("protocol: %q is not an integer", v.String())}
		}
		return i, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, numberError{fmt.Sprintf("protocol: %q is not an integer", v)}
		}
		return i, nil
	default:
		return 0, fmt.Errorf("protocol: %T is not numeric", raw)
	}
}

func coerceBool(raw any) (Value, error) {
	switch v := raw.(type) {
	case bool:
		return Bool(v), nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, unsupported(raw, KindBool)
		}
		return Bool(b), nil
	default:
		return nil, unsupported(raw, KindBool)
	}
}

func coerceTimestamp(raw any) (Value, error) {
	switch v := raw.(type) {
	case time.Time:
		return NewTimestamp(v), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return NewTimestamp(*v), nil
	case string:
		return ParseTimestamp(v)
	case Value:
		return nil, unsupported(raw, KindTimestamp)
	default:
		i, err := toInt64(raw)
		if err != nil {
			return nil, unsupported(raw, KindTimestamp)
		}
		return NewTimestamp(time.Unix(i, 0)), nil
	}
}

func (c Coercer) coercePrice(raw any) (Value, error) {
	var base, quote any
	switch v := raw.(type) {
	case map[string]any:
		base, quote = v["base"], v["quote"]
	case map[string]string:
		base, quote = v["base"], v["quote"]
	default:
		return nil, unsupported(raw, KindPrice)
	}
	if base == nil || quote == nil {
		return nil, fmt.Errorf("%w: price needs base and quote", ErrInvalidAmount)
	}
	b, err := c.assets().NewAmount(base, c.Chain)
	if err != nil {
		return nil, err
	}
	q, err := c.assets().NewAmount(quote, c.Chain)
	if err != nil {
		return nil, err
	}
	return Price{Base: b, Quote: q}, nil
}

func coerceStringArray(raw any) (Value, error) {
	switch v := raw.(type) {
	case []string:
		return StringArray(append([]string(nil), v...)), nil
	case []any:
		out := make(StringArray, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, unsupported(item, KindStringArray)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, unsupported(raw, KindStringArray)
	}
}

// coercePermission sorts map input by key so the wire order is stable.
func coercePermission(raw any) (Value, error) {
	switch v := raw.(type) {
	case []PermissionEntry:
		return Permission(append([]PermissionEntry(nil), v...)), nil
	case map[string]string:
		out := make(Permission, 0, len(v))
		for _, k := range sortedKeys(v) {
			out = append(out, PermissionEntry{Key: k, Value: v[k]})
		}
		return out, nil
	case map[string]any:
		out := make(Permission, 0, len(v))
		for _, k := range sortedKeys(v) {
			s, err := scalarString(v[k])
			if err != nil {
				return nil, err
			}
			out = append(out, PermissionEntry{Key: k, Value: s})
		}
		return out, nil
	default:
		return nil, unsupported(raw, KindPermission)
	}
}

func scalarString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		if i, err := toInt64(raw); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		return "", unsupported(raw, KindPermission)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func coercePublicKey(raw any) (Value, error) {
	switch v := raw.(type) {
	case string:
		return ParsePublicKey(v)
	case *secp256k1.PublicKey:
		if v == nil {
			return nil, unsupported(raw, KindPublicKey)
		}
		return PublicKey{Key: v}, nil
	default:
		return nil, unsupported(raw, KindPublicKey)
	}
}
