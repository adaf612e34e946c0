package common

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/tKV/lib/storage"
)

// --------------------------------------------------------------------------
// Status Codes
// --------------------------------------------------------------------------

// Response status codes, HTTP-status-like.
const (
	StatusOK            uint32 = 200
	StatusNotFound      uint32 = 404
	StatusBadRequest    uint32 = 400
	StatusInternalError uint32 = 500
)

// --------------------------------------------------------------------------
// Command Type Definition
// --------------------------------------------------------------------------

// CommandType identifies one operation of the command protocol.
type CommandType uint8

const (
	CmdUnknown CommandType = iota
	CmdHSet                // Set a key-value pair in a table
	CmdHGet                // Get a value by table and key
	CmdHGetAll             // Get all pairs of a table
	CmdHDel                // Delete a key from a table
	CmdHExist              // Check if a key exists in a table
)

// String returns the string representation of a CommandType.
func (t CommandType) String() string {
	switch t {
	case CmdHSet:
		return "HSET"
	case CmdHGet:
		return "HGET"
	case CmdHGetAll:
		return "HGETALL"
	case CmdHDel:
		return "HDEL"
	case CmdHExist:
		return "HEXIST"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON implements the json.Marshaler interface for CommandType.
// This allows CommandType to be serialized as a string in JSON.
func (t CommandType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for CommandType.
func (t *CommandType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "HSET":
		*t = CmdHSet
	case "HGET":
		*t = CmdHGet
	case "HGETALL":
		*t = CmdHGetAll
	case "HDEL":
		*t = CmdHDel
	case "HEXIST":
		*t = CmdHExist
	case "UNKNOWN":
		*t = CmdUnknown
	default:
		return fmt.Errorf("unknown command type: %s", s)
	}
	return nil
}

// --------------------------------------------------------------------------
// Command Request
// --------------------------------------------------------------------------

// CommandRequest is one operation sent from a client to the server: the
// command variant plus the table name and the key/value arguments that
// variant uses.
type CommandRequest struct {
	Cmd   CommandType   `json:"cmd"`
	Table string        `json:"table,omitempty"`
	Key   string        `json:"key,omitempty"`
	Value storage.Value `json:"value,omitempty"`
}

// NewHSet creates a HSET request.
func NewHSet(table, key string, value storage.Value) *CommandRequest {
	return &CommandRequest{Cmd: CmdHSet, Table: table, Key: key, Value: value}
}

// NewHGet creates a HGET request.
func NewHGet(table, key string) *CommandRequest {
	return &CommandRequest{Cmd: CmdHGet, Table: table, Key: key}
}

// NewHGetAll creates a HGETALL request.
func NewHGetAll(table string) *CommandRequest {
	return &CommandRequest{Cmd: CmdHGetAll, Table: table}
}

// NewHDel creates a HDEL request.
func NewHDel(table, key string) *CommandRequest {
	return &CommandRequest{Cmd: CmdHDel, Table: table, Key: key}
}

// NewHExist creates a HEXIST request.
func NewHExist(table, key string) *CommandRequest {
	return &CommandRequest{Cmd: CmdHExist, Table: table, Key: key}
}

// --------------------------------------------------------------------------
// Command Response
// --------------------------------------------------------------------------

// CommandResponse is the result of one CommandRequest: a status code, the
// returned values (empty on absence) and an optional human-readable error
// message for non-2xx statuses.
type CommandResponse struct {
	Status  uint32          `json:"status"`
	Message string          `json:"message,omitempty"`
	Values  []storage.Value `json:"values,omitempty"`
}

// Ok reports whether the response carries a success status.
func (r *CommandResponse) Ok() bool {
	return r.Status == StatusOK
}

// NewValueResponse creates a 200 response carrying the given values.
func NewValueResponse(values ...storage.Value) *CommandResponse {
	return &CommandResponse{Status: StatusOK, Values: values}
}

// NewNotFoundResponse creates a 404 response for an absent key.
func NewNotFoundResponse() *CommandResponse {
	return &CommandResponse{Status: StatusNotFound}
}

// NewBadRequestResponse creates a 400 response for a malformed request.
func NewBadRequestResponse(message string) *CommandResponse {
	return &CommandResponse{Status: StatusBadRequest, Message: message}
}

// NewInternalErrorResponse creates a 5xx response carrying the engine
// error description.
func NewInternalErrorResponse(err error) *CommandResponse {
	return &CommandResponse{Status: StatusInternalError, Message: err.Error()}
}

// FlattenPairs turns scanned pairs into the flat value sequence of a
// HGETALL response: alternating key (as string value) and value, in the
// order the engine returned the pairs.
func FlattenPairs(pairs []storage.Kvpair) []storage.Value {
	values := make([]storage.Value, 0, len(pairs)*2)
	for _, pair := range pairs {
		values = append(values, storage.NewStringValue(pair.Key), pair.Value)
	}
	return values
}

// UnflattenPairs is the inverse of FlattenPairs. It fails on an odd
// number of values or a non-string key position.
func UnflattenPairs(values []storage.Value) ([]storage.Kvpair, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("cannot unflatten odd number of values: %d", len(values))
	}
	pairs := make([]storage.Kvpair, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].AsString()
		if !ok {
			return nil, fmt.Errorf("expected string key at position %d, got %s", i, values[i].Kind())
		}
		pairs = append(pairs, storage.NewKvpair(key, values[i+1]))
	}
	return pairs, nil
}
