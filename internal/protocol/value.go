package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/danmuck/steemtx/internal/keys"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// TimeLayout is the chain's ISO-8601 timestamp form, second precision, UTC.
const TimeLayout = "2006-01-02T15:04:05"

// Value is one encodable operation field. The set of implementations is
// closed; nil stands for an absent optional field and encodes to nothing.
type Value interface {
	Kind() Kind
	Encode(w *Writer) error
	// Display returns the JSON-ready form used by broadcast endpoints that
	// accept structured objects instead of raw bytes.
	Display() any
	sealed()
}

// Encode returns the wire bytes of v. A nil v yields no bytes.
func Encode(v Value) ([]byte, error) {
	w := NewWriter()
	if v == nil {
		return w.Bytes(), nil
	}
	if err := v.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Display returns the display form of v, or nil when absent.
func Display(v Value) any {
	if v == nil {
		return nil
	}
	return v.Display()
}

type String string

func (String) Kind() Kind { return KindString }
func (s String) Encode(w *Writer) error {
	w.String(string(s))
	return nil
}

func (s String) Display() any { return string(s) }
func (String) sealed()        {}

type Int16 int16

func (Int16) Kind() Kind { return KindInt16 }

// Encode writes the two's-complement value as a little-endian u16.
func (v Int16) Encode(w *Writer) error {
	w.Uint16(uint16(v))
	return nil
}

func (v Int16) Display() any { return int64(v) }
func (Int16) sealed()        {}

type Uint16 uint16

func (Uint16) Kind() Kind { return KindUint16 }
func (v Uint16) Encode(w *Writer) error {
	w.Uint16(uint16(v))
	return nil
}

func (v Uint16) Display() any { return uint64(v) }
func (Uint16) sealed()        {}

type Uint32 uint32

func (Uint32) Kind() Kind { return KindUint32 }
func (v Uint32) Encode(w *Writer) error {
	w.Uint32(uint32(v))
	return nil
}

func (v Uint32) Display() any { return uint64(v) }
func (Uint32) sealed()        {}

type Int64 int64

func (Int64) Kind() Kind { return KindInt64 }
func (v Int64) Encode(w *Writer) error {
	w.Int64(int64(v))
	return nil
}

// Display renders 64-bit values as strings, as the chain's JSON API does.
func (v Int64) Display() any { return strconv.FormatInt(int64(v), 10) }
func (Int64) sealed()        {}

// Bool encodes as a single 0/1 byte.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (v Bool) Encode(w *Writer) error {
	w.Bool(bool(v))
	return nil
}

func (v Bool) Display() any { return bool(v) }
func (Bool) sealed()        {}

// Timestamp is a UTC instant encoded as u32 unix seconds.
type Timestamp time.Time

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC().Truncate(time.Second))
}

// ParseTimestamp accepts the chain layout with or without a trailing Z.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range []string{TimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimestamp(t), nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

func (t Timestamp) Time() time.Time { return time.Time(t).UTC() }
func (Timestamp) Kind() Kind        { return KindTimestamp }

func (t Timestamp) Encode(w *Writer) error {
	unix := t.Time().Unix()
	if unix < 0 || unix > int64(^uint32(0)) {
		return fmt.Errorf("%w: %s outside u32 range", ErrInvalidTimestamp, t.Time())
	}
	w.Uint32(uint32(unix))
	return nil
}

func (t Timestamp) Display() any   { return t.Time().Format(TimeLayout) }
func (t Timestamp) String() string { return t.Time().Format(TimeLayout) }
func (Timestamp) sealed()          {}

type StringArray []string

func (StringArray) Kind() Kind { return KindStringArray }

func (a StringArray) Encode(w *Writer) error {
	w.Varint(uint64(len(a)))
	for _, s := range a {
		w.String(s)
	}
	return nil
}

func (a StringArray) Display() any {
	out := make([]string, len(a))
	copy(out, a)
	return out
}

func (StringArray) sealed() {}

type PermissionEntry struct {
	Key   string
	Value string
}

// Permission is an ordered key/value authority set. Entry order is wire order.
type Permission []PermissionEntry

func (Permission) Kind() Kind { return KindPermission }

func (p Permission) Encode(w *Writer) error {
	w.Varint(uint64(len(p)))
	for _, e := range p {
		w.String(e.Key)
		w.String(e.Value)
	}
	return nil
}

func (p Permission) Display() any {
	obj := make(Object, 0, len(p))
	for _, e := range p {
		obj = append(obj, Member{Key: e.Key, Value: e.Value})
	}
	return obj
}

func (Permission) sealed() {}

// PublicKey is a compressed secp256k1 point, displayed with its address prefix.
type PublicKey struct {
	Key    *secp256k1.PublicKey
	Prefix string
}

func ParsePublicKey(s string) (PublicKey, error) {
	pub, prefix, err := keys.ParsePublicKey(s)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKey{Key: pub, Prefix: prefix}, nil
}

func (PublicKey) Kind() Kind { return KindPublicKey }

func (p PublicKey) Encode(w *Writer) error {
	if p.Key == nil {
		return fmt.Errorf("%w: nil public key", ErrInvalidLength)
	}
	w.Raw(p.Key.SerializeCompressed())
	return nil
}

func (p PublicKey) Display() any { return p.String() }

func (p PublicKey) String() string {
	if p.Key == nil {
		return ""
	}
	prefix := p.Prefix
	if prefix == "" {
		prefix = "STM"
	}
	return keys.FormatPublicKey(p.Key, prefix)
}

func (PublicKey) sealed() {}

// Member is one key of an ordered JSON object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object that keeps insertion order when marshalled.
type Object []Member

func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
