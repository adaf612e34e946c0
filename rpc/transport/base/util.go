package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

const (
	// frameHeaderSize is the fixed size of the frame header in bytes
	frameHeaderSize = 13

	// flagFIN marks the last frame of a logical stream. A FIN frame
	// carries no payload and closes the stream on the receiving side.
	flagFIN byte = 1 << 0

	// maxFrameSize bounds the frame payload length. Sends above this limit
	// are rejected locally; announced lengths above it are treated as
	// protocol corruption and kill the connection.
	maxFrameSize = 64 * 1024 * 1024 // 64 MB
)

// writeFrame writes a frame to the connection with the format:
// - 8 bytes: streamID (uint64, big endian)
// - 1 byte:  flags
// - 4 bytes: data length (uint32, big endian)
// - N bytes: data payload
func writeFrame(conn net.Conn, streamID uint64, flags byte, data []byte) error {
	// Reject oversized payloads here so only the offending Send fails.
	// Written in full, the peer would read the announced length as
	// corruption and tear down the whole connection.
	if len(data) > maxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds limit of %d bytes", len(data), maxFrameSize)
	}

	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint64(header[:8], streamID)
	header[8] = flags
	binary.BigEndian.PutUint32(header[9:13], uint32(len(data)))

	b := net.Buffers{header, data}
	if len(data) == 0 {
		// A zero-length buffer still triggers a write on connections
		// without vectored-write support (net.Pipe blocks on it); the
		// bytes on the wire are identical without it.
		b = net.Buffers{header}
	}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads a single frame from the connection. The payload is
// freshly allocated for every frame since it may outlive the read loop
// while queued on a stream.
func readFrame(conn net.Conn) (uint64, byte, []byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return 0, 0, nil, err
	}

	streamID := binary.BigEndian.Uint64(header[:8])
	flags := header[8]
	contentLength := binary.BigEndian.Uint32(header[9:13])

	if contentLength > maxFrameSize {
		return 0, 0, nil, fmt.Errorf("frame of %d bytes exceeds limit of %d bytes", contentLength, maxFrameSize)
	}

	if contentLength == 0 {
		return streamID, flags, []byte{}, nil
	}

	data := make([]byte, contentLength)
	if _, err := io.ReadFull(conn, data); err != nil {
		return 0, 0, nil, err
	}

	return streamID, flags, data, nil
}
