package server

import (
	"fmt"

	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/ValentinKolb/tKV/rpc/common"
)

// Dispatch executes one command against the storage engine and maps the
// outcome to a response. It is state-free and safe for any number of
// concurrent callers sharing one engine.
//
// The mapping is:
//   - read with a value          -> 200, values = [value]
//   - read of an absent key      -> 404, no values
//   - write                      -> 200, values = [previous value] or empty
//   - existence check            -> 200, values = [bool]
//   - table scan                 -> 200, values = alternating key, value
//   - engine failure             -> 500, message carries the engine error
//   - unknown command            -> 400, the engine is never called
func Dispatch(req *common.CommandRequest, st storage.Storage) *common.CommandResponse {
	switch req.Cmd {
	case common.CmdHSet:
		prev, existed, err := st.Set(req.Table, req.Key, req.Value)
		if err != nil {
			return common.NewInternalErrorResponse(err)
		}
		if existed {
			return common.NewValueResponse(prev)
		}
		return common.NewValueResponse()

	case common.CmdHGet:
		value, found, err := st.Get(req.Table, req.Key)
		if err != nil {
			return common.NewInternalErrorResponse(err)
		}
		if !found {
			return common.NewNotFoundResponse()
		}
		return common.NewValueResponse(value)

	case common.CmdHGetAll:
		pairs, err := st.GetAll(req.Table)
		if err != nil {
			return common.NewInternalErrorResponse(err)
		}
		return common.NewValueResponse(common.FlattenPairs(pairs)...)

	case common.CmdHDel:
		prev, existed, err := st.Del(req.Table, req.Key)
		if err != nil {
			return common.NewInternalErrorResponse(err)
		}
		if existed {
			return common.NewValueResponse(prev)
		}
		return common.NewValueResponse()

	case common.CmdHExist:
		found, err := st.Contains(req.Table, req.Key)
		if err != nil {
			return common.NewInternalErrorResponse(err)
		}
		return common.NewValueResponse(storage.NewBoolValue(found))

	default:
		return common.NewBadRequestResponse(fmt.Sprintf("unknown command: %d", uint8(req.Cmd)))
	}
}
