package lpframe

import (
	"io"
	"math"
)

const (
	// PrefixLen is the size of the length field on the wire.
	PrefixLen = 4

	// MaxFrameLength is the largest payload a 32-bit length field can describe.
	MaxFrameLength = math.MaxUint32
)

// Frame is one length-prefixed unit on the wire.
// Length always equals len(Payload).
type Frame struct {
	Length  uint32
	Payload []byte
}

// IsTerminator reports whether f is the zero-length terminator frame.
func (f Frame) IsTerminator() bool {
	return f.Length == 0
}

// Decoder reads length-prefixed frames from an io.Reader.
//
// The decoder never reads ahead: each ReadFrame consumes exactly one prefix
// and one payload. It is not safe for concurrent use.
//
//	dec := lpframe.NewDecoder(conn)
type Decoder struct {
	r         io.Reader
	acc       Accumulator
	prefix    [PrefixLen]byte
	maxLength uint32
	offset    int64 // Track position for error reporting
}

// NewDecoder creates a new frame decoder reading from r.
//
// Example:
//
//	dec := lpframe.NewDecoder(conn, lpframe.MaxLength(1<<20))
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	cfg := newConfig(opts)
	return &Decoder{
		r:         r,
		acc:       Accumulator{Reuse: cfg.reuseBuffer},
		maxLength: cfg.maxLength,
	}
}

// Encoder writes length-prefixed frames to an io.Writer.
//
// Writes are unbuffered: every frame is handed to w as soon as it is
// encoded. The encoder is not safe for concurrent use; callers sharing a
// connection must serialize whole frames.
type Encoder struct {
	w         io.Writer
	buf       []byte
	maxLength uint32
}

// NewEncoder creates a new frame encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	cfg := newConfig(opts)
	return &Encoder{
		w:         w,
		maxLength: cfg.maxLength,
	}
}
