package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/epithet-ssh/lpframe/pkg/seqserver"
)

type SendCLI struct {
	Addr      []string      `help:"Server addresses, tried in order until one answers" short:"a" env:"LPFRAME_ADDR" default:"localhost:7411" sep:","`
	Network   string        `help:"Network for --addr" enum:"tcp,unix" default:"tcp"`
	Stdin     bool          `help:"Also send each non-empty line of stdin as a message"`
	Timeout   time.Duration `help:"Deadline for the whole exchange" short:"t" default:"30s"`
	Cooldown  time.Duration `help:"How long to skip a server after it fails" default:"30s"`
	MaxLength uint32        `help:"Largest message sent or accepted, in bytes (0 for no limit)" default:"0"`
	Messages  []string      `arg:"" optional:"" help:"Messages to send, in order"`
}

func (s *SendCLI) Run(ctx context.Context, logger *slog.Logger, out io.Writer) error {
	msgs := make([][]byte, 0, len(s.Messages))
	for _, m := range s.Messages {
		msgs = append(msgs, []byte(m))
	}
	if s.Stdin {
		lines, err := readLines(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		msgs = append(msgs, lines...)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	opts := []seqserver.Option{
		seqserver.WithLogger(logger),
		seqserver.WithCooldown(s.Cooldown),
	}
	if s.MaxLength > 0 {
		opts = append(opts, seqserver.WithMaxLength(s.MaxLength))
	}
	endpoints := make([]seqserver.Endpoint, len(s.Addr))
	for i, addr := range s.Addr {
		// Earlier addresses are preferred.
		endpoints[i] = seqserver.Endpoint{Network: s.Network, Addr: addr, Priority: len(s.Addr) - i}
	}
	pool := seqserver.NewPool(endpoints, opts...)

	logger.Info("sending sequence", "addresses", s.Addr, "messages", len(msgs))
	replies, err := pool.Exchange(ctx, msgs)
	for _, reply := range replies {
		fmt.Fprintf(out, "%s\n", reply)
	}
	if err != nil {
		return fmt.Errorf("exchange failed after %d replies: %w", len(replies), err)
	}
	logger.Info("sequence answered", "replies", len(replies))
	return nil
}

// readLines returns each non-empty line of r. Empty lines are dropped
// because an empty message cannot be framed.
func readLines(r io.Reader) ([][]byte, error) {
	var lines [][]byte
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), sc.Bytes()...))
	}
	return lines, sc.Err()
}
