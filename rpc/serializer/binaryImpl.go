package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/ValentinKolb/tKV/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary
// format optimized for speed and efficiency. This is the default wire
// format. Values are encoded with the storage package's value codec, so
// the form is self-describing without a schema compiler.
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasTable   byte = 1 << 0
	hasKey     byte = 1 << 1
	hasValue   byte = 1 << 2
	hasMessage byte = 1 << 3
	hasValues  byte = 1 << 4
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

// Request layout:
//   - 1 byte: command type
//   - 1 byte: flags
//   - table:  4 bytes length + data (if flagged)
//   - key:    4 bytes length + data (if flagged)
//   - value:  value codec form (if flagged)
func (s binarySerializerImpl) SerializeRequest(req *common.CommandRequest) ([]byte, error) {
	result := make([]byte, 2, 2+len(req.Table)+len(req.Key)+16)
	result[0] = byte(req.Cmd)

	var flags byte
	if req.Table != "" {
		flags |= hasTable
		result = appendString(result, req.Table)
	}
	if req.Key != "" {
		flags |= hasKey
		result = appendString(result, req.Key)
	}
	if !req.Value.IsNone() {
		flags |= hasValue
		result = storage.AppendValue(result, req.Value)
	}

	result[1] = flags
	return result, nil
}

func (s binarySerializerImpl) DeserializeRequest(data []byte, req *common.CommandRequest) error {
	if len(data) < 2 {
		return fmt.Errorf("data too short for request header")
	}
	req.Cmd = common.CommandType(data[0])
	flags := data[1]
	pos := 2

	var err error
	req.Table = ""
	if flags&hasTable != 0 {
		if req.Table, pos, err = readString(data, pos, "table"); err != nil {
			return err
		}
	}

	req.Key = ""
	if flags&hasKey != 0 {
		if req.Key, pos, err = readString(data, pos, "key"); err != nil {
			return err
		}
	}

	req.Value = storage.Value{}
	if flags&hasValue != 0 {
		value, n, err := storage.DecodeValue(data[pos:])
		if err != nil {
			return fmt.Errorf("invalid request value: %w", err)
		}
		req.Value = value
		pos += n
	}

	return nil
}

// Response layout:
//   - 4 bytes: status (uint32, big endian)
//   - 1 byte:  flags
//   - message: 4 bytes length + data (if flagged)
//   - values:  4 bytes count + repeated value codec forms (if flagged)
func (s binarySerializerImpl) SerializeResponse(resp *common.CommandResponse) ([]byte, error) {
	result := make([]byte, 5, 5+len(resp.Message)+len(resp.Values)*16)
	binary.BigEndian.PutUint32(result[:4], resp.Status)

	var flags byte
	if resp.Message != "" {
		flags |= hasMessage
		result = appendString(result, resp.Message)
	}
	if len(resp.Values) > 0 {
		flags |= hasValues
		result = binary.BigEndian.AppendUint32(result, uint32(len(resp.Values)))
		for _, value := range resp.Values {
			result = storage.AppendValue(result, value)
		}
	}

	result[4] = flags
	return result, nil
}

func (s binarySerializerImpl) DeserializeResponse(data []byte, resp *common.CommandResponse) error {
	if len(data) < 5 {
		return fmt.Errorf("data too short for response header")
	}
	resp.Status = binary.BigEndian.Uint32(data[:4])
	flags := data[4]
	pos := 5

	var err error
	resp.Message = ""
	if flags&hasMessage != 0 {
		if resp.Message, pos, err = readString(data, pos, "message"); err != nil {
			return err
		}
	}

	resp.Values = nil
	if flags&hasValues != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for value count")
		}
		count := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		// Every encoded value occupies at least one byte, so a count larger
		// than the remaining payload can only come from a corrupt frame.
		// Checked before the allocation so a bad count never sizes a slice.
		if count > len(data)-pos {
			return fmt.Errorf("value count %d exceeds remaining %d bytes", count, len(data)-pos)
		}

		resp.Values = make([]storage.Value, 0, count)
		for i := 0; i < count; i++ {
			value, n, err := storage.DecodeValue(data[pos:])
			if err != nil {
				return fmt.Errorf("invalid response value %d: %w", i, err)
			}
			resp.Values = append(resp.Values, value)
			pos += n
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// appendString appends a length-prefixed string.
func appendString(dst []byte, s string) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(s)))
	return append(dst, s...)
}

// readString reads a length-prefixed string starting at pos.
func readString(data []byte, pos int, field string) (string, int, error) {
	if pos+4 > len(data) {
		return "", 0, fmt.Errorf("data too short for %s length", field)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if pos+n > len(data) {
		return "", 0, fmt.Errorf("data too short for %s data", field)
	}
	return string(data[pos : pos+n]), pos + n, nil
}
