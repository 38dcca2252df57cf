// Package seqserver serves block sequences over stream sockets.
//
// Each connection carries one exchange: the client sends a block sequence,
// the server answers every message with a reply through its Handler as the
// messages arrive, and ends its own sequence once the client's terminator
// has been read. If the client's sequence is cut short the server stops
// without a terminator, so the client sees the failure the same way.
package seqserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"time"

	"github.com/epithet-ssh/lpframe/pkg/blockseq"
	"github.com/epithet-ssh/lpframe/pkg/lpframe"
	"github.com/epithet-ssh/lpframe/pkg/streamconn"
	"golang.org/x/sync/errgroup"
)

// Server answers block sequences on accepted connections.
type Server struct {
	handler     Handler
	logger      *slog.Logger
	frameOpts   []lpframe.Option
	idleTimeout time.Duration
	stats       Stats
}

// Option configures a Server, Client or Pool.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	maxLength   uint32
	idleTimeout time.Duration
	cooldown    time.Duration
	tripAfter   uint32
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxLength caps the size of a single message in either direction.
func WithMaxLength(n uint32) Option {
	return func(o *options) {
		o.maxLength = n
	}
}

// WithIdleTimeout bounds how long the server waits for each frame. Zero
// disables the deadline.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) {
		o.idleTimeout = d
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:    slog.New(slog.DiscardHandler),
		maxLength: lpframe.MaxFrameLength,
		cooldown:  30 * time.Second,
		tripAfter: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// New creates a Server that answers with h.
func New(h Handler, opts ...Option) *Server {
	o := newOptions(opts)
	return &Server{
		handler:     h,
		logger:      o.logger,
		frameOpts:   []lpframe.Option{lpframe.MaxLength(o.maxLength)},
		idleTimeout: o.idleTimeout,
	}
}

// Stats returns the server's live counters.
func (s *Server) Stats() *Stats {
	return &s.stats
}

// Serve accepts connections on ln until ctx is cancelled or accepting
// fails, then closes ln and waits for in-flight exchanges to stop. Open
// connections are closed when ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		_ = ln.Close()
		return nil
	})

	s.logger.Info("serving", "address", ln.Addr().String())
	var acceptErr error
	for {
		conn, err := streamconn.Accept(ln)
		if err != nil {
			if ctx.Err() == nil {
				acceptErr = fmt.Errorf("accept: %w", err)
			}
			break
		}
		g.Go(func() error {
			s.ServeConn(gctx, conn)
			return nil
		})
	}

	cancel()
	err := errors.Join(acceptErr, g.Wait())
	s.logger.Info("stopped serving", "address", ln.Addr().String(), "error", err)
	return err
}

// ServeConn runs one exchange on conn and closes it.
func (s *Server) ServeConn(ctx context.Context, conn *streamconn.Conn) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	s.stats.accepted.Add(1)
	s.stats.active.Add(1)
	defer s.stats.active.Add(-1)

	logger := s.logger.With("remote", conn.RemoteAddr())
	logger.Debug("connection accepted")

	// Each message is handled and answered before the next frame is read.
	readOpts := append(slices.Clone(s.frameOpts), lpframe.ReuseBuffer())
	seq := blockseq.NewReader(conn, blockseq.WithFrameOptions(readOpts...), blockseq.WithLogger(logger))
	out := blockseq.NewWriter(conn, blockseq.WithFrameOptions(s.frameOpts...), blockseq.WithLogger(logger))

	for {
		if s.idleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil && !errors.Is(err, streamconn.ErrNoDeadline) {
				logger.Error("failed to set read deadline", "error", err)
				s.stats.failed.Add(1)
				return
			}
		}
		if !seq.Next() {
			break
		}
		msg := seq.Message()
		s.stats.messagesIn.Add(1)
		s.stats.bytesIn.Add(int64(len(msg)))

		reply, err := s.handler.Handle(ctx, msg)
		if err != nil {
			logger.Error("handler failed", "message", seq.Count(), "error", err)
			s.stats.failed.Add(1)
			return
		}
		if err := out.Write(reply); err != nil {
			logger.Error("failed to write reply", "message", seq.Count(), "error", err)
			s.stats.failed.Add(1)
			return
		}
		s.stats.messagesOut.Add(1)
		s.stats.bytesOut.Add(int64(len(reply)))
	}

	if err := seq.Err(); err != nil {
		if errors.Is(err, lpframe.ErrTruncated) {
			s.stats.truncated.Add(1)
			logger.Warn("sequence truncated", "messages", seq.Count(), "error", err)
		} else {
			s.stats.failed.Add(1)
			logger.Error("sequence failed", "messages", seq.Count(), "error", err)
		}
		return
	}

	if err := out.Finish(); err != nil {
		s.stats.failed.Add(1)
		logger.Error("failed to finish reply", "error", err)
		return
	}
	if err := conn.CloseWrite(); err != nil {
		logger.Debug("half-close failed", "error", err)
	}
	s.stats.completed.Add(1)
	logger.Info("exchange complete", "messages", seq.Count())
}
