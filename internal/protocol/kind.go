package protocol

// Kind selects the encoder for a schema parameter.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindInt16
	KindUint16
	KindUint32
	KindInt64
	KindBool
	KindTimestamp
	KindAmount
	KindPrice
	KindStringArray
	KindPermission
	KindPublicKey
	// KindUnsupported marks parameter shapes with no encoder.
	KindUnsupported
)

var kindNames = map[Kind]string{
	KindAbsent:      "absent",
	KindString:      "string",
	KindInt16:       "int16",
	KindUint16:      "uint16",
	KindUint32:      "uint32",
	KindInt64:       "int64",
	KindBool:        "bool",
	KindTimestamp:   "timestamp",
	KindAmount:      "amount",
	KindPrice:       "price",
	KindStringArray: "string_array",
	KindPermission:  "permission",
	KindPublicKey:   "public_key",
	KindUnsupported: "unsupported",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}
