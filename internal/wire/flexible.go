package wire

import (
	"github.com/vmihailenco/msgpack/v5"
)

// toFloat64 normalizes any MessagePack numeric representation — positive
// or negative fixint, any width of (u)int, float32, or float64 — into a
// float64. Used by FlexBytes' array-of-ints fallback decode.
func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case uint:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// FlexBytes decodes either a MessagePack binary string (the normal wire
// form) or an array of small integers (a quirk of some permissive
// encoders, notably the web client's) into a byte slice.
type FlexBytes []byte

var (
	_ msgpack.CustomDecoder = (*FlexBytes)(nil)
	_ msgpack.CustomEncoder = (*FlexBytes)(nil)
)

func (b *FlexBytes) DecodeMsgpack(dec *msgpack.Decoder) error {
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}
	if msgpack.IsBinType(code) {
		raw, err := dec.DecodeBytes()
		if err != nil {
			return err
		}
		*b = raw
		return nil
	}

	// Fall back to the array-of-ints shape.
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n < 0 {
		*b = nil
		return nil
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		v, err := dec.DecodeInterface()
		if err != nil {
			return err
		}
		out[i] = byte(int64(toFloat64(v)))
	}
	*b = out
	return nil
}

func (b FlexBytes) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeBytes(b)
}
