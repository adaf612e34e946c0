package serializer

import "github.com/ValentinKolb/tKV/rpc/common"

// IRPCSerializer is the interface for all message serializers. A
// serializer converts protocol messages to and from the self-describing
// byte form carried inside one transport frame; the length prefix is the
// transport's job, not the serializer's.
type IRPCSerializer interface {
	// SerializeRequest serializes a CommandRequest into a byte array.
	SerializeRequest(req *common.CommandRequest) ([]byte, error)
	// DeserializeRequest deserializes a byte array into a CommandRequest.
	DeserializeRequest(b []byte, req *common.CommandRequest) error
	// SerializeResponse serializes a CommandResponse into a byte array.
	SerializeResponse(resp *common.CommandResponse) ([]byte, error)
	// DeserializeResponse deserializes a byte array into a CommandResponse.
	DeserializeResponse(b []byte, resp *common.CommandResponse) error
}
