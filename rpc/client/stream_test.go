package client

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
)

// stalledStream fails every Recv, like a stream whose response never
// arrived within the timeout.
type stalledStream struct {
	closed bool
}

func (s *stalledStream) Recv() ([]byte, error) {
	return nil, errors.New("receive timed out after 1s")
}

func (s *stalledStream) Send([]byte) error {
	if s.closed {
		return fmt.Errorf("stream is closed")
	}
	return nil
}

func (s *stalledStream) Close() error {
	s.closed = true
	return nil
}

// TestExecuteTerminatesStreamOnReceiveFailure ensures a failed receive
// closes the stream. Left open, the late response would still be queued
// and the next Execute on the stream would pair it with the wrong request.
func TestExecuteTerminatesStreamOnReceiveFailure(t *testing.T) {
	fake := &stalledStream{}
	cs := &ClientStream{stream: fake, serializer: serializer.NewBinarySerializer()}

	if _, err := cs.Execute(common.NewHGet("t", "k")); err == nil {
		t.Fatal("expected error from failed receive")
	}
	if !fake.closed {
		t.Fatal("expected stream to be closed after failed receive")
	}

	// Reuse fails fast instead of consuming a stale response
	if _, err := cs.Execute(common.NewHSet("t", "k", storage.NewStringValue("v"))); err == nil {
		t.Fatal("expected error when reusing a terminated stream")
	}
}
