package base

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		name     string
		streamID uint64
		flags    byte
		payload  []byte
	}{
		{"Payload", 1, 0, []byte("hello world")},
		{"Empty", 42, 0, []byte{}},
		{"FIN", 7, flagFIN, nil},
		{"Large", 1 << 40, 0, bytes.Repeat([]byte{0xab}, 1<<16)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			server, client := net.Pipe()
			defer server.Close()
			defer client.Close()

			errCh := make(chan error, 1)
			go func() {
				errCh <- writeFrame(client, tt.streamID, tt.flags, tt.payload)
			}()

			streamID, flags, data, err := readFrame(server)
			if err != nil {
				t.Fatalf("readFrame failed: %v", err)
			}
			if err := <-errCh; err != nil {
				t.Fatalf("writeFrame failed: %v", err)
			}

			if streamID != tt.streamID {
				t.Errorf("expected stream ID %d, got %d", tt.streamID, streamID)
			}
			if flags != tt.flags {
				t.Errorf("expected flags %b, got %b", tt.flags, flags)
			}
			if !bytes.Equal(data, tt.payload) {
				t.Errorf("payload mismatch: expected %q, got %q", tt.payload, data)
			}
		})
	}
}

func TestFrameRejectsOversizedLength(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	// Hand-craft a header announcing a payload above the frame limit
	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint64(header[:8], 1)
	binary.BigEndian.PutUint32(header[9:13], maxFrameSize+1)

	go func() {
		client.Write(header)
	}()

	if _, _, _, err := readFrame(server); err == nil {
		t.Fatal("expected error for oversized frame, got nil")
	}
}

func TestFrameRejectsOversizedPayloadOnWrite(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	// The send must fail locally before any bytes hit the wire; a frame
	// written in full would kill the peer's whole connection instead of
	// just this Send.
	payload := make([]byte, maxFrameSize+1)
	if err := writeFrame(client, 1, 0, payload); err == nil {
		t.Fatal("expected error for oversized payload, got nil")
	}
}

func TestFrameSequence(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	payloads := [][]byte{
		[]byte("first"),
		[]byte("second"),
		[]byte("third"),
	}

	go func() {
		for i, p := range payloads {
			if err := writeFrame(client, uint64(i), 0, p); err != nil {
				return
			}
		}
	}()

	for i, want := range payloads {
		streamID, _, data, err := readFrame(server)
		if err != nil {
			t.Fatalf("readFrame %d failed: %v", i, err)
		}
		if streamID != uint64(i) {
			t.Errorf("expected stream ID %d, got %d", i, streamID)
		}
		if !bytes.Equal(data, want) {
			t.Errorf("frame %d: expected %q, got %q", i, want, data)
		}
	}
}
