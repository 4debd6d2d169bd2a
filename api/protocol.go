package api

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Frames on the TCP endpoint carry either an Arrow IPC stream (requests), a
// JSON FrameResponse (replies) or a JSON auth message. Each frame is a
// 4-byte big-endian payload length followed by the payload.
const frameHeaderSize = 4

// MaxMessageSize caps one frame payload at 50 MiB, enough for a large
// record batch stream and its rendered reply.
const MaxMessageSize = 50 * 1024 * 1024

// ErrMessageTooLarge is returned for frames above MaxMessageSize, in either
// direction.
var ErrMessageTooLarge = errors.New("message size exceeds maximum allowed size")

// ReadMessage reads one frame and returns its payload. A clean end of
// stream before the header returns io.EOF.
func ReadMessage(r io.Reader) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint32(header[:])
	if size > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrMessageTooLarge, size, MaxMessageSize)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return payload, nil
}

// WriteMessage writes payload as one frame, header and payload in a single
// Write.
func WriteMessage(w io.Writer, payload []byte) error {
	if len(payload) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrMessageTooLarge, len(payload), MaxMessageSize)
	}

	frame := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload))) // #nosec G115 - bounded by MaxMessageSize
	copy(frame[frameHeaderSize:], payload)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}
