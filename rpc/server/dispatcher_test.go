package server

import (
	"errors"
	"strings"
	"testing"

	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/ValentinKolb/tKV/lib/storage/memory"
	"github.com/ValentinKolb/tKV/rpc/common"
)

func newTestEngine(t *testing.T) storage.Storage {
	t.Helper()
	engine := memory.New()
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestDispatchSetReturnsPrevious(t *testing.T) {
	engine := newTestEngine(t)

	resp := Dispatch(common.NewHSet("t1", "hello", storage.NewStringValue("world")), engine)
	if !resp.Ok() {
		t.Fatalf("expected status 200, got %d (%s)", resp.Status, resp.Message)
	}
	if len(resp.Values) != 0 {
		t.Fatalf("expected no previous value, got %v", resp.Values)
	}

	resp = Dispatch(common.NewHSet("t1", "hello", storage.NewStringValue("world1")), engine)
	if !resp.Ok() {
		t.Fatalf("expected status 200, got %d (%s)", resp.Status, resp.Message)
	}
	if len(resp.Values) != 1 || !resp.Values[0].Equal(storage.NewStringValue("world")) {
		t.Fatalf("expected previous value world, got %v", resp.Values)
	}
}

func TestDispatchGet(t *testing.T) {
	engine := newTestEngine(t)

	resp := Dispatch(common.NewHGet("t1", "absent"), engine)
	if resp.Status != common.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Status)
	}
	if len(resp.Values) != 0 {
		t.Fatalf("expected no values, got %v", resp.Values)
	}

	Dispatch(common.NewHSet("t1", "hello", storage.NewStringValue("world")), engine)

	resp = Dispatch(common.NewHGet("t1", "hello"), engine)
	if !resp.Ok() {
		t.Fatalf("expected status 200, got %d (%s)", resp.Status, resp.Message)
	}
	if len(resp.Values) != 1 || !resp.Values[0].Equal(storage.NewStringValue("world")) {
		t.Fatalf("expected value world, got %v", resp.Values)
	}
}

func TestDispatchDel(t *testing.T) {
	engine := newTestEngine(t)
	Dispatch(common.NewHSet("t1", "hello", storage.NewStringValue("world")), engine)

	resp := Dispatch(common.NewHDel("t1", "hello"), engine)
	if !resp.Ok() {
		t.Fatalf("expected status 200, got %d (%s)", resp.Status, resp.Message)
	}
	if len(resp.Values) != 1 || !resp.Values[0].Equal(storage.NewStringValue("world")) {
		t.Fatalf("expected removed value world, got %v", resp.Values)
	}

	// Deleting again is not an error, just empty
	resp = Dispatch(common.NewHDel("t1", "hello"), engine)
	if !resp.Ok() {
		t.Fatalf("expected status 200, got %d (%s)", resp.Status, resp.Message)
	}
	if len(resp.Values) != 0 {
		t.Fatalf("expected no values, got %v", resp.Values)
	}
}

func TestDispatchExist(t *testing.T) {
	engine := newTestEngine(t)

	assertExist := func(want bool) {
		t.Helper()
		resp := Dispatch(common.NewHExist("t1", "hello"), engine)
		if !resp.Ok() {
			t.Fatalf("expected status 200, got %d (%s)", resp.Status, resp.Message)
		}
		if len(resp.Values) != 1 {
			t.Fatalf("expected one value, got %v", resp.Values)
		}
		got, ok := resp.Values[0].AsBool()
		if !ok || got != want {
			t.Fatalf("expected %v, got %v", want, resp.Values[0])
		}
	}

	assertExist(false)
	Dispatch(common.NewHSet("t1", "hello", storage.NewStringValue("world")), engine)
	assertExist(true)
}

func TestDispatchGetAll(t *testing.T) {
	engine := newTestEngine(t)

	want := map[string]string{"a": "1", "b": "2", "c": "3"}
	for k, v := range want {
		Dispatch(common.NewHSet("scan", k, storage.NewStringValue(v)), engine)
	}

	resp := Dispatch(common.NewHGetAll("scan"), engine)
	if !resp.Ok() {
		t.Fatalf("expected status 200, got %d (%s)", resp.Status, resp.Message)
	}

	pairs, err := common.UnflattenPairs(resp.Values)
	if err != nil {
		t.Fatalf("failed to unflatten values: %v", err)
	}
	if len(pairs) != len(want) {
		t.Fatalf("expected %d pairs, got %d", len(want), len(pairs))
	}
	for _, pair := range pairs {
		got, _ := pair.Value.AsString()
		if want[pair.Key] != got {
			t.Errorf("pair %q: expected %q, got %q", pair.Key, want[pair.Key], got)
		}
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	// An unknown command must be rejected before the engine is touched
	st := &failingStorage{}

	resp := Dispatch(&common.CommandRequest{Cmd: common.CommandType(99)}, st)
	if resp.Status != common.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Status)
	}
	if st.calls != 0 {
		t.Fatalf("expected no storage calls, got %d", st.calls)
	}
}

func TestDispatchEngineFailure(t *testing.T) {
	st := &failingStorage{}

	for _, req := range []*common.CommandRequest{
		common.NewHSet("t", "k", storage.NewStringValue("v")),
		common.NewHGet("t", "k"),
		common.NewHGetAll("t"),
		common.NewHDel("t", "k"),
		common.NewHExist("t", "k"),
	} {
		resp := Dispatch(req, st)
		if resp.Status != common.StatusInternalError {
			t.Errorf("%s: expected status 500, got %d", req.Cmd, resp.Status)
		}
		if !strings.Contains(resp.Message, "disk on fire") {
			t.Errorf("%s: expected engine error in message, got %q", req.Cmd, resp.Message)
		}
	}
}

// failingStorage fails every operation and counts how often it was called
type failingStorage struct {
	calls int
}

var errEngine = errors.New("disk on fire")

func (s *failingStorage) Get(_, _ string) (storage.Value, bool, error) {
	s.calls++
	return storage.Value{}, false, errEngine
}

func (s *failingStorage) Set(_, _ string, _ storage.Value) (storage.Value, bool, error) {
	s.calls++
	return storage.Value{}, false, errEngine
}

func (s *failingStorage) Contains(_, _ string) (bool, error) {
	s.calls++
	return false, errEngine
}

func (s *failingStorage) Del(_, _ string) (storage.Value, bool, error) {
	s.calls++
	return storage.Value{}, false, errEngine
}

func (s *failingStorage) GetAll(_ string) ([]storage.Kvpair, error) {
	s.calls++
	return nil, errEngine
}

func (s *failingStorage) GetIter(_ string) (storage.Iterator, error) {
	s.calls++
	return nil, errEngine
}

func (s *failingStorage) Close() error { return nil }
