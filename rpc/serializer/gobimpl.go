package serializer

import (
	"bytes"
	"encoding/gob"

	"github.com/ValentinKolb/tKV/rpc/common"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format
func NewGOBSerializer() IRPCSerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the IRPCSerializer interface using gob encoding
type gobSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) SerializeRequest(req *common.CommandRequest) ([]byte, error) {
	return gobEncode(req)
}

func (g gobSerializerImpl) DeserializeRequest(b []byte, req *common.CommandRequest) error {
	return gobDecode(b, req)
}

func (g gobSerializerImpl) SerializeResponse(resp *common.CommandResponse) ([]byte, error) {
	return gobEncode(resp)
}

func (g gobSerializerImpl) DeserializeResponse(b []byte, resp *common.CommandResponse) error {
	return gobDecode(b, resp)
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

func gobEncode(msg any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(b []byte, msg any) error {
	dec := gob.NewDecoder(bytes.NewBuffer(b))
	return dec.Decode(msg)
}
