package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// --------------------------------------------------------------------------
// Value Type (tagged union over the supported primitives)
// --------------------------------------------------------------------------

// ValueKind identifies which primitive a Value wraps.
type ValueKind uint8

const (
	ValueKindNone ValueKind = iota
	ValueKindString
	ValueKindBytes
	ValueKindInt
	ValueKindFloat
	ValueKindBool
)

// String returns the string representation of a ValueKind.
func (k ValueKind) String() string {
	switch k {
	case ValueKindNone:
		return "none"
	case ValueKindString:
		return "string"
	case ValueKindBytes:
		return "bytes"
	case ValueKindInt:
		return "int"
	case ValueKindFloat:
		return "float"
	case ValueKindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is an immutable tagged union over string, byte slice, int64,
// float64 and bool. The zero Value has kind ValueKindNone and is used
// wherever an absent value must travel through the system.
type Value struct {
	kind ValueKind
	str  string
	bin  []byte
	num  uint64 // int64, float64 or bool stored as raw bits
}

// --------------------------------------------------------------------------
// Value Constructors
// --------------------------------------------------------------------------

// NewStringValue creates a Value wrapping a string.
func NewStringValue(s string) Value {
	return Value{kind: ValueKindString, str: s}
}

// NewBytesValue creates a Value wrapping a byte slice.
// The slice is copied so later modifications by the caller are not visible.
func NewBytesValue(b []byte) Value {
	return Value{kind: ValueKindBytes, bin: bytes.Clone(b)}
}

// NewIntValue creates a Value wrapping an int64.
func NewIntValue(i int64) Value {
	return Value{kind: ValueKindInt, num: uint64(i)}
}

// NewFloatValue creates a Value wrapping a float64.
func NewFloatValue(f float64) Value {
	return Value{kind: ValueKindFloat, num: math.Float64bits(f)}
}

// NewBoolValue creates a Value wrapping a bool.
func NewBoolValue(b bool) Value {
	var num uint64
	if b {
		num = 1
	}
	return Value{kind: ValueKindBool, num: num}
}

// --------------------------------------------------------------------------
// Value Accessors
// --------------------------------------------------------------------------

// Kind returns the wrapped primitive's kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsNone reports whether the Value is the absent value.
func (v Value) IsNone() bool { return v.kind == ValueKindNone }

// AsString returns the wrapped string. The bool is false if the Value
// does not wrap a string.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == ValueKindString
}

// AsBytes returns a copy of the wrapped byte slice. The bool is false
// if the Value does not wrap a byte slice.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != ValueKindBytes {
		return nil, false
	}
	return bytes.Clone(v.bin), true
}

// AsInt returns the wrapped int64. The bool is false if the Value does
// not wrap an int64.
func (v Value) AsInt() (int64, bool) {
	return int64(v.num), v.kind == ValueKindInt
}

// AsFloat returns the wrapped float64. The bool is false if the Value
// does not wrap a float64.
func (v Value) AsFloat() (float64, bool) {
	return math.Float64frombits(v.num), v.kind == ValueKindFloat
}

// AsBool returns the wrapped bool. The bool is false if the Value does
// not wrap a bool.
func (v Value) AsBool() (bool, bool) {
	return v.num != 0, v.kind == ValueKindBool
}

// String returns a human-readable representation of the wrapped primitive.
func (v Value) String() string {
	switch v.kind {
	case ValueKindNone:
		return "<none>"
	case ValueKindString:
		return v.str
	case ValueKindBytes:
		return fmt.Sprintf("0x%x", v.bin)
	case ValueKindInt:
		return strconv.FormatInt(int64(v.num), 10)
	case ValueKindFloat:
		return strconv.FormatFloat(math.Float64frombits(v.num), 'g', -1, 64)
	case ValueKindBool:
		return strconv.FormatBool(v.num != 0)
	default:
		return "<invalid>"
	}
}

// Equal reports whether two Values wrap the same kind and content.
func (v Value) Equal(other Value) bool {
	return v.Compare(other) == 0
}

// Compare orders two Values, first by kind, then by content. It exists
// so result sets can be sorted deterministically in tests and snapshots.
func (v Value) Compare(other Value) int {
	if v.kind != other.kind {
		if v.kind < other.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case ValueKindString:
		return bytes.Compare([]byte(v.str), []byte(other.str))
	case ValueKindBytes:
		return bytes.Compare(v.bin, other.bin)
	case ValueKindInt:
		a, b := int64(v.num), int64(other.num)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	case ValueKindFloat:
		a, b := math.Float64frombits(v.num), math.Float64frombits(other.num)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	case ValueKindBool:
		switch {
		case v.num < other.num:
			return -1
		case v.num > other.num:
			return 1
		}
	}
	return 0
}

// --------------------------------------------------------------------------
// Value JSON / GOB support
// --------------------------------------------------------------------------

// valueJSON is the plain struct used to move a Value through encoding/json.
type valueJSON struct {
	Kind  string   `json:"kind"`
	Str   string   `json:"str,omitempty"`
	Bin   []byte   `json:"bin,omitempty"`
	Int   *int64   `json:"int,omitempty"`
	Float *float64 `json:"float,omitempty"`
	Bool  *bool    `json:"bool,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface for Value.
func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Kind: v.kind.String()}
	switch v.kind {
	case ValueKindString:
		out.Str = v.str
	case ValueKindBytes:
		out.Bin = v.bin
	case ValueKindInt:
		i := int64(v.num)
		out.Int = &i
	case ValueKindFloat:
		f := math.Float64frombits(v.num)
		out.Float = &f
	case ValueKindBool:
		b := v.num != 0
		out.Bool = &b
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements the json.Unmarshaler interface for Value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case "none":
		*v = Value{}
	case "string":
		*v = NewStringValue(in.Str)
	case "bytes":
		*v = NewBytesValue(in.Bin)
	case "int":
		if in.Int == nil {
			*v = NewIntValue(0)
		} else {
			*v = NewIntValue(*in.Int)
		}
	case "float":
		if in.Float == nil {
			*v = NewFloatValue(0)
		} else {
			*v = NewFloatValue(*in.Float)
		}
	case "bool":
		if in.Bool == nil {
			*v = NewBoolValue(false)
		} else {
			*v = NewBoolValue(*in.Bool)
		}
	default:
		return fmt.Errorf("unknown value kind: %s", in.Kind)
	}
	return nil
}

// GobEncode implements the gob.GobEncoder interface for Value.
// It reuses the binary value codec so gob and disk share one format.
func (v Value) GobEncode() ([]byte, error) {
	return EncodeValue(v), nil
}

// GobDecode implements the gob.GobDecoder interface for Value.
func (v *Value) GobDecode(data []byte) error {
	decoded, _, err := DecodeValue(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// --------------------------------------------------------------------------
// Kvpair Type
// --------------------------------------------------------------------------

// Kvpair is a single key-value pair as moved through scans and responses.
type Kvpair struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// NewKvpair creates a new Kvpair.
func NewKvpair(key string, value Value) Kvpair {
	return Kvpair{Key: key, Value: value}
}

// ComparePairs orders two Kvpairs by key, then by value. Engines return
// scan results in no contractual order; consumers sort with this to get
// deterministic comparisons.
func ComparePairs(a, b Kvpair) int {
	if c := bytes.Compare([]byte(a.Key), []byte(b.Key)); c != 0 {
		return c
	}
	return a.Value.Compare(b.Value)
}
