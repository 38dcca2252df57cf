package lpframe

import (
	"encoding/binary"
	"net"
)

// coalesceLimit is the largest payload copied next to its prefix so the
// frame goes out in a single Write. Larger payloads are written from the
// caller's slice through net.Buffers.
const coalesceLimit = 64 * 1024

// WriteFrame writes payload as one frame: its length as a big-endian uint32,
// then the payload bytes.
//
// If payload is longer than the length field or the configured MaxLength
// allows, WriteFrame returns a *MessageTooLargeError and writes nothing. An
// empty payload writes the terminator.
//
// Example:
//
//	enc.WriteFrame([]byte("hello")) // writes 00000005 68656c6c6f
func (e *Encoder) WriteFrame(payload []byte) error {
	if err := checkLength(uint64(len(payload)), e.maxLength); err != nil {
		return err
	}

	if len(payload) <= coalesceLimit {
		e.buf = binary.BigEndian.AppendUint32(e.buf[:0], uint32(len(payload)))
		e.buf = append(e.buf, payload...)
		_, err := e.w.Write(e.buf)
		return err
	}

	var prefix [PrefixLen]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
	bufs := net.Buffers{prefix[:], payload}
	_, err := bufs.WriteTo(e.w)
	return err
}

// WriteTerminator writes the zero-length frame that ends a sequence.
func (e *Encoder) WriteTerminator() error {
	return e.WriteFrame(nil)
}

// WriteMessage writes an application message. Unlike WriteFrame it refuses
// an empty message with ErrEmptyMessage, since on the wire it would be
// indistinguishable from the terminator.
func (e *Encoder) WriteMessage(msg []byte) error {
	if len(msg) == 0 {
		return ErrEmptyMessage
	}
	return e.WriteFrame(msg)
}

// checkLength validates a payload length against the 32-bit field and limit.
func checkLength(n uint64, limit uint32) error {
	if n > MaxFrameLength || n > uint64(limit) {
		return &MessageTooLargeError{Length: n, Limit: uint64(limit)}
	}
	return nil
}
