package blockseq

import (
	"bytes"
	"io"
	"iter"
	"log/slog"

	"github.com/epithet-ssh/lpframe/pkg/lpframe"
)

// Reader reads one block sequence from a stream. It follows the
// bufio.Scanner pattern:
//
//	seq := blockseq.NewReader(conn)
//	for seq.Next() {
//		handle(seq.Message())
//	}
//	if err := seq.Err(); err != nil {
//		// connection dropped before the terminator
//	}
//
// A Reader is single use. Once it reaches Terminated or Failed it performs
// no further reads.
type Reader struct {
	dec    *lpframe.Decoder
	logger *slog.Logger
	state  State
	msg    []byte
	err    error
	count  int
}

// NewReader returns a Reader consuming frames from r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	cfg := newConfig(opts)
	return &Reader{
		dec:    lpframe.NewDecoder(r, cfg.frameOpts...),
		logger: cfg.logger,
	}
}

// Next reads the next frame. It returns true if a message is available
// through Message, and false once the sequence has ended or failed.
func (r *Reader) Next() bool {
	if r.state != AwaitingFrame {
		return false
	}
	r.msg = nil

	frame, err := r.dec.ReadFrame()
	if err != nil {
		r.state = Failed
		r.err = err
		r.logger.Debug("sequence failed", "messages", r.count, "offset", r.dec.Offset(), "error", err)
		return false
	}
	if frame.IsTerminator() {
		r.state = Terminated
		r.logger.Debug("sequence terminated", "messages", r.count, "offset", r.dec.Offset())
		return false
	}

	r.msg = frame.Payload
	r.count++
	return true
}

// Message returns the message read by the last successful call to Next.
// With lpframe.ReuseBuffer it is only valid until the following Next.
func (r *Reader) Message() []byte {
	return r.msg
}

// CopyMessage is like Message but returns a slice the caller may keep.
// It only copies when the decoder reuses its buffer.
func (r *Reader) CopyMessage() []byte {
	if r.dec.ReusesBuffer() {
		return bytes.Clone(r.msg)
	}
	return r.msg
}

// Err returns the error that stopped the sequence, or nil if it is still
// running or ended with its terminator.
func (r *Reader) Err() error {
	return r.err
}

// State reports where the reader is in the sequence.
func (r *Reader) State() State {
	return r.state
}

// Count returns how many messages have been read so far.
func (r *Reader) Count() int {
	return r.count
}

// Messages returns an iterator over the remaining messages. If the sequence
// fails, the final pair carries a nil message and the error.
//
//	for msg, err := range seq.Messages() {
//		if err != nil {
//			return err
//		}
//		...
//	}
func (r *Reader) Messages() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for r.Next() {
			if !yield(r.Message(), nil) {
				return
			}
		}
		if r.err != nil {
			yield(nil, r.err)
		}
	}
}

// ReadAll reads a whole sequence from r. On failure it returns the messages
// that were complete before the error along with the error.
func ReadAll(r io.Reader, opts ...Option) ([][]byte, error) {
	seq := NewReader(r, opts...)
	var msgs [][]byte
	for seq.Next() {
		msgs = append(msgs, seq.CopyMessage())
	}
	return msgs, seq.Err()
}
