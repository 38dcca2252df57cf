package seqserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/epithet-ssh/lpframe/pkg/blockseq"
	"github.com/epithet-ssh/lpframe/pkg/lpframe"
	"github.com/epithet-ssh/lpframe/pkg/streamconn"
	"golang.org/x/sync/errgroup"
)

// Client sends block sequences to a Server.
type Client struct {
	network   string
	addr      string
	logger    *slog.Logger
	frameOpts []lpframe.Option
}

// NewClient returns a client for the server at addr on network ("tcp" or "unix").
func NewClient(network, addr string, opts ...Option) *Client {
	o := newOptions(opts)
	return &Client{
		network:   network,
		addr:      addr,
		logger:    o.logger,
		frameOpts: []lpframe.Option{lpframe.MaxLength(o.maxLength)},
	}
}

// Exchange dials the server, sends msgs as one sequence and returns the
// replies. A deadline on ctx applies to the whole exchange.
func (c *Client) Exchange(ctx context.Context, msgs [][]byte) ([][]byte, error) {
	conn, err := streamconn.Dial(ctx, c.network, c.addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set write deadline: %w", err)
		}
	}

	c.logger.Debug("exchange started", "address", c.addr, "messages", len(msgs))
	replies, err := Exchange(ctx, conn, msgs, blockseq.WithFrameOptions(c.frameOpts...), blockseq.WithLogger(c.logger))
	if err != nil {
		return replies, err
	}
	c.logger.Debug("exchange complete", "address", c.addr, "replies", len(replies))
	return replies, nil
}

// Exchange sends msgs as one sequence on conn while reading the peer's
// reply sequence, and half-closes the write side once the sequence is
// written or has failed. The two halves run concurrently so neither side
// stalls on a full socket buffer.
//
// The caller keeps ownership of conn; it is only closed early if ctx is
// cancelled.
func Exchange(ctx context.Context, conn *streamconn.Conn, msgs [][]byte, opts ...blockseq.Option) ([][]byte, error) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var g errgroup.Group
	g.Go(func() error {
		err := blockseq.NewWriter(conn, opts...).WriteAll(msgs)
		if cerr := conn.CloseWrite(); err == nil && cerr != nil {
			err = fmt.Errorf("half-close: %w", cerr)
		}
		return err
	})

	var replies [][]byte
	var readErr error
	g.Go(func() error {
		replies, readErr = blockseq.ReadAll(conn, opts...)
		return readErr
	})

	err := g.Wait()
	if ctx.Err() != nil {
		err = errors.Join(ctx.Err(), err)
	}
	return replies, err
}
