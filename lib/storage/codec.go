package storage

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Binary value codec. The format is self-contained and streamable:
//
//   - 1 byte:  kind tag (ValueKind)
//   - string/bytes: 4 bytes length (uint32, big endian) + N bytes data
//   - int/float:    8 bytes (uint64, big endian; floats as IEEE 754 bits)
//   - bool:         1 byte (0 or 1)
//   - none:         no payload
//
// The same encoding is used for values stored by the durable engine and
// for values embedded in binary-serialized protocol messages.

// EncodeValue serializes a Value into its binary form.
func EncodeValue(v Value) []byte {
	return AppendValue(nil, v)
}

// AppendValue appends the binary form of a Value to dst and returns the
// extended slice.
func AppendValue(dst []byte, v Value) []byte {
	dst = append(dst, byte(v.kind))
	switch v.kind {
	case ValueKindString:
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(v.str)))
		dst = append(dst, v.str...)
	case ValueKindBytes:
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(v.bin)))
		dst = append(dst, v.bin...)
	case ValueKindInt, ValueKindFloat:
		dst = binary.BigEndian.AppendUint64(dst, v.num)
	case ValueKindBool:
		if v.num != 0 {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
	}
	return dst
}

// DecodeValue deserializes a Value from the start of b. It returns the
// decoded Value and the number of bytes consumed.
func DecodeValue(b []byte) (Value, int, error) {
	if len(b) < 1 {
		return Value{}, 0, fmt.Errorf("value data too short for kind tag")
	}
	kind := ValueKind(b[0])
	pos := 1

	switch kind {
	case ValueKindNone:
		return Value{}, pos, nil

	case ValueKindString, ValueKindBytes:
		if len(b) < pos+4 {
			return Value{}, 0, fmt.Errorf("value data too short for %s length", kind)
		}
		n := int(binary.BigEndian.Uint32(b[pos : pos+4]))
		pos += 4
		if len(b) < pos+n {
			return Value{}, 0, fmt.Errorf("value data too short for %s payload", kind)
		}
		payload := b[pos : pos+n]
		pos += n
		if kind == ValueKindString {
			return NewStringValue(string(payload)), pos, nil
		}
		return NewBytesValue(payload), pos, nil

	case ValueKindInt, ValueKindFloat:
		if len(b) < pos+8 {
			return Value{}, 0, fmt.Errorf("value data too short for %s payload", kind)
		}
		num := binary.BigEndian.Uint64(b[pos : pos+8])
		pos += 8
		if kind == ValueKindInt {
			return NewIntValue(int64(num)), pos, nil
		}
		return NewFloatValue(math.Float64frombits(num)), pos, nil

	case ValueKindBool:
		if len(b) < pos+1 {
			return Value{}, 0, fmt.Errorf("value data too short for bool payload")
		}
		v := NewBoolValue(b[pos] != 0)
		pos++
		return v, pos, nil

	default:
		return Value{}, 0, fmt.Errorf("unknown value kind tag: %d", kind)
	}
}
