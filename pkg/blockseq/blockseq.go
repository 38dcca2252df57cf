// Package blockseq sends and receives open-ended sequences of messages over
// a byte stream.
//
// Each message travels as a length-prefixed frame (see package lpframe) and
// the sequence ends with one zero-length terminator frame:
//
//	Sequence := Frame* Terminator
//
// A Reader hides the terminator from its caller: iteration simply stops.
// A stream that ends before the terminator is an error, so a receiver can
// always tell a complete sequence from a dropped connection. A Writer that
// fails part way never writes the terminator, which the peer then sees as
// exactly that kind of truncation.
//
// Neither side closes the underlying connection.
package blockseq

import (
	"errors"
	"log/slog"

	"github.com/epithet-ssh/lpframe/pkg/lpframe"
)

// ErrFinished is returned when writing to a Writer whose sequence has
// already been terminated.
var ErrFinished = errors.New("blockseq: sequence already finished")

// State is the position of a Reader in its sequence.
type State int

const (
	// AwaitingFrame means more messages may follow.
	AwaitingFrame State = iota
	// Terminated means the terminator was read and the sequence is complete.
	Terminated
	// Failed means reading stopped on an error before the terminator.
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingFrame:
		return "awaiting-frame"
	case Terminated:
		return "terminated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type config struct {
	frameOpts []lpframe.Option
	logger    *slog.Logger
}

// Option configures a Reader or Writer.
type Option func(*config)

// WithFrameOptions passes options through to the underlying frame encoder
// or decoder, for example lpframe.MaxLength.
func WithFrameOptions(opts ...lpframe.Option) Option {
	return func(c *config) {
		c.frameOpts = append(c.frameOpts, opts...)
	}
}

// WithLogger sets the logger used for sequence-level debug events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
