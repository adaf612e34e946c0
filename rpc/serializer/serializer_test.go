package serializer

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/ValentinKolb/tKV/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testRequests creates a set of requests covering every command variant
func testRequests() []common.CommandRequest {
	return []common.CommandRequest{
		*common.NewHSet("table1", "hello", storage.NewStringValue("world")),
		*common.NewHSet("table1", "counter", storage.NewIntValue(-3)),
		*common.NewHSet("table1", "blob", storage.NewBytesValue([]byte{0, 1, 0xff})),
		*common.NewHGet("table1", "hello"),
		*common.NewHGetAll("table1"),
		*common.NewHDel("table1", "hello"),
		*common.NewHExist("table1", "hello"),
	}
}

// testResponses creates a set of responses with different fields filled
func testResponses() []common.CommandResponse {
	return []common.CommandResponse{
		*common.NewValueResponse(),
		*common.NewValueResponse(storage.NewStringValue("world")),
		*common.NewValueResponse(
			storage.NewStringValue("k1"), storage.NewFloatValue(1.5),
			storage.NewStringValue("k2"), storage.NewBoolValue(true),
		),
		*common.NewNotFoundResponse(),
		*common.NewBadRequestResponse("unknown command"),
		{Status: common.StatusInternalError, Message: "engine failure"},
	}
}

// TestRequestRoundTrip tests that requests survive serialization unchanged
func TestRequestRoundTrip(t *testing.T) {
	requests := testRequests()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, req := range requests {
				data, err := serializer.SerializeRequest(&req)
				if err != nil {
					t.Errorf("Failed to serialize request %d: %v", i, err)
					continue
				}

				var result common.CommandRequest
				if err := serializer.DeserializeRequest(data, &result); err != nil {
					t.Errorf("Failed to deserialize request %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(req, result) {
					t.Errorf("Request %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, req, result)
				}
			}
		})
	}
}

// TestResponseRoundTrip tests that responses survive serialization unchanged
func TestResponseRoundTrip(t *testing.T) {
	responses := testResponses()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, resp := range responses {
				data, err := serializer.SerializeResponse(&resp)
				if err != nil {
					t.Errorf("Failed to serialize response %d: %v", i, err)
					continue
				}

				var result common.CommandResponse
				if err := serializer.DeserializeResponse(data, &result); err != nil {
					t.Errorf("Failed to deserialize response %d: %v", i, err)
					continue
				}

				if resp.Status != result.Status || resp.Message != result.Message {
					t.Errorf("Response %d header changed: %+v -> %+v", i, resp, result)
				}
				if len(resp.Values) != len(result.Values) {
					t.Errorf("Response %d value count changed: %d -> %d",
						i, len(resp.Values), len(result.Values))
					continue
				}
				for j := range resp.Values {
					if !resp.Values[j].Equal(result.Values[j]) {
						t.Errorf("Response %d value %d changed: %v -> %v",
							i, j, resp.Values[j], result.Values[j])
					}
				}
			}
		})
	}
}

// TestBinaryRejectsGarbage ensures decode failures surface as errors,
// never panics - a decode failure must only cost the offending stream.
func TestBinaryRejectsGarbage(t *testing.T) {
	serializer := NewBinarySerializer()

	inputs := [][]byte{
		nil,
		{},
		{0x01},
		{0x01, 0xff},
		{0x01, 0x01, 0x00, 0x00, 0x00, 0xff},
	}
	for i, input := range inputs {
		var req common.CommandRequest
		if err := serializer.DeserializeRequest(input, &req); err == nil && len(input) < 2 {
			t.Errorf("Input %d: expected error for truncated request", i)
		}
		var resp common.CommandResponse
		if err := serializer.DeserializeResponse(input, &resp); err == nil && len(input) < 5 {
			t.Errorf("Input %d: expected error for truncated response", i)
		}
	}
}

// TestBinaryRejectsAbsurdValueCount ensures a response announcing far more
// values than the payload can hold fails with an error before any slice is
// allocated for it. A hostile 9-byte frame must not cost gigabytes.
func TestBinaryRejectsAbsurdValueCount(t *testing.T) {
	serializer := NewBinarySerializer()

	// Status 200, hasValues flag, count 0xFFFFFFFF, no value data
	input := []byte{
		0x00, 0x00, 0x00, 0xc8,
		0x10,
		0xff, 0xff, 0xff, 0xff,
	}

	var resp common.CommandResponse
	if err := serializer.DeserializeResponse(input, &resp); err == nil {
		t.Fatal("expected error for value count exceeding payload")
	}
	if resp.Values != nil {
		t.Fatalf("expected no values to be decoded, got %v", resp.Values)
	}
}
