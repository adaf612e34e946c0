package storage

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestValueAccessors(t *testing.T) {
	if s, ok := NewStringValue("hi").AsString(); !ok || s != "hi" {
		t.Errorf("AsString: got %q ok=%t", s, ok)
	}
	if _, ok := NewStringValue("hi").AsInt(); ok {
		t.Error("AsInt on a string value must report false")
	}
	if i, ok := NewIntValue(-7).AsInt(); !ok || i != -7 {
		t.Errorf("AsInt: got %d ok=%t", i, ok)
	}
	if f, ok := NewFloatValue(1.5).AsFloat(); !ok || f != 1.5 {
		t.Errorf("AsFloat: got %g ok=%t", f, ok)
	}
	if b, ok := NewBoolValue(true).AsBool(); !ok || !b {
		t.Errorf("AsBool: got %t ok=%t", b, ok)
	}
	if !(Value{}).IsNone() {
		t.Error("Zero value must be none")
	}
}

// Values are immutable: a byte slice handed to a constructor or returned
// from an accessor must not alias the stored data.
func TestBytesValueIsCopied(t *testing.T) {
	buf := []byte{1, 2, 3}
	v := NewBytesValue(buf)
	buf[0] = 99

	got, ok := v.AsBytes()
	if !ok || got[0] != 1 {
		t.Errorf("Constructor aliased caller slice: got %v", got)
	}

	got[1] = 99
	again, _ := v.AsBytes()
	if again[1] != 2 {
		t.Errorf("Accessor aliased stored slice: got %v", again)
	}
}

func TestValueCodecRoundTrip(t *testing.T) {
	values := []Value{
		{},
		NewStringValue(""),
		NewStringValue("hello world"),
		NewBytesValue(nil),
		NewBytesValue([]byte{0x00, 0xff}),
		NewIntValue(0),
		NewIntValue(-1),
		NewFloatValue(-2.75),
		NewBoolValue(false),
		NewBoolValue(true),
	}

	for _, v := range values {
		encoded := EncodeValue(v)
		decoded, n, err := DecodeValue(encoded)
		if err != nil {
			t.Errorf("Decode %v failed: %v", v, err)
			continue
		}
		if n != len(encoded) {
			t.Errorf("Decode %v consumed %d of %d bytes", v, n, len(encoded))
		}
		if !decoded.Equal(v) {
			t.Errorf("Round trip changed value: %v -> %v", v, decoded)
		}
	}
}

func TestValueCodecRejectsTruncatedInput(t *testing.T) {
	encoded := EncodeValue(NewStringValue("hello"))
	for cut := 0; cut < len(encoded); cut++ {
		if _, _, err := DecodeValue(encoded[:cut]); err == nil {
			t.Errorf("Expected error for input truncated to %d bytes", cut)
		}
	}
	if _, _, err := DecodeValue([]byte{0xee}); err == nil {
		t.Error("Expected error for unknown kind tag")
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	values := []Value{
		{},
		NewStringValue("hello"),
		NewBytesValue([]byte{1, 2, 3}),
		NewIntValue(42),
		NewFloatValue(2.5),
		NewBoolValue(true),
	}
	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			t.Errorf("Marshal %v failed: %v", v, err)
			continue
		}
		var decoded Value
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Errorf("Unmarshal %s failed: %v", data, err)
			continue
		}
		if !decoded.Equal(v) {
			t.Errorf("JSON round trip changed value: %v -> %v", v, decoded)
		}
	}
}

func TestComparePairsOrdersByKeyThenValue(t *testing.T) {
	pairs := []Kvpair{
		NewKvpair("b", NewStringValue("x")),
		NewKvpair("a", NewStringValue("z")),
		NewKvpair("a", NewStringValue("y")),
	}
	slices.SortFunc(pairs, ComparePairs)

	want := []string{"a", "a", "b"}
	for i, pair := range pairs {
		if pair.Key != want[i] {
			t.Fatalf("Unexpected key order: %v", pairs)
		}
	}
	if v, _ := pairs[0].Value.AsString(); v != "y" {
		t.Errorf("Pairs with equal keys must be ordered by value, got %v first", pairs[0].Value)
	}
}
