package blockseq

import (
	"errors"
	"io"
	"iter"
	"log/slog"

	"github.com/epithet-ssh/lpframe/pkg/lpframe"
)

// Writer writes one block sequence to a stream.
//
// The first failed write to the stream poisons the writer: the terminator
// is never sent and every later call returns the same error. A message
// rejected before anything is written (empty or too large) leaves the
// writer usable, so the caller can split it and carry on.
type Writer struct {
	enc      *lpframe.Encoder
	logger   *slog.Logger
	err      error
	finished bool
	count    int
}

// NewWriter returns a Writer producing frames on w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	cfg := newConfig(opts)
	return &Writer{
		enc:    lpframe.NewEncoder(w, cfg.frameOpts...),
		logger: cfg.logger,
	}
}

// Write sends msg as the next message of the sequence. Empty messages are
// rejected with lpframe.ErrEmptyMessage.
func (w *Writer) Write(msg []byte) error {
	if w.err != nil {
		return w.err
	}
	if w.finished {
		return ErrFinished
	}
	if err := w.enc.WriteMessage(msg); err != nil {
		if !rejected(err) {
			w.fail(err)
		}
		return err
	}
	w.count++
	return nil
}

// Finish writes the terminator. Calling it again is a no-op.
func (w *Writer) Finish() error {
	if w.err != nil {
		return w.err
	}
	if w.finished {
		return nil
	}
	if err := w.enc.WriteTerminator(); err != nil {
		w.fail(err)
		return err
	}
	w.finished = true
	w.logger.Debug("sequence finished", "messages", w.count)
	return nil
}

// WriteAll writes each message in order, then the terminator.
func (w *Writer) WriteAll(msgs [][]byte) error {
	for _, msg := range msgs {
		if err := w.Write(msg); err != nil {
			return err
		}
	}
	return w.Finish()
}

// WriteSeq writes every message produced by seq, then the terminator.
// Iteration stops at the first error.
func (w *Writer) WriteSeq(seq iter.Seq[[]byte]) error {
	for msg := range seq {
		if err := w.Write(msg); err != nil {
			return err
		}
	}
	return w.Finish()
}

// Count returns how many messages have been written.
func (w *Writer) Count() int {
	return w.count
}

// rejected reports whether err came from checking msg, before any write.
func rejected(err error) bool {
	return errors.Is(err, lpframe.ErrEmptyMessage) || errors.Is(err, lpframe.ErrTooLarge)
}

func (w *Writer) fail(err error) {
	w.err = err
	w.logger.Debug("sequence aborted", "messages", w.count, "error", err)
}

// WriteAll writes msgs as one complete sequence to w.
func WriteAll(w io.Writer, msgs ...[]byte) error {
	return NewWriter(w).WriteAll(msgs)
}
