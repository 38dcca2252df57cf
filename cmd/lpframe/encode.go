package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/epithet-ssh/lpframe/pkg/blockseq"
)

type EncodeCLI struct {
	Out      string   `help:"Write to this file instead of stdout" short:"o" type:"path"`
	Stdin    bool     `help:"Also encode each non-empty line of stdin"`
	Messages []string `arg:"" optional:"" help:"Messages to encode, in order"`
}

func (e *EncodeCLI) Run(logger *slog.Logger, out io.Writer) (err error) {
	msgs := make([][]byte, 0, len(e.Messages))
	for _, m := range e.Messages {
		msgs = append(msgs, []byte(m))
	}
	if e.Stdin {
		lines, err := readLines(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		msgs = append(msgs, lines...)
	}

	if e.Out != "" {
		f, cerr := os.Create(e.Out)
		if cerr != nil {
			return fmt.Errorf("unable to create output: %w", cerr)
		}
		defer closeOutput(f, &err)
		out = f
	}

	w := blockseq.NewWriter(out, blockseq.WithLogger(logger))
	if err := w.WriteSeq(slices.Values(msgs)); err != nil {
		return fmt.Errorf("encoding stopped after %d messages: %w", w.Count(), err)
	}
	logger.Info("sequence encoded", "messages", w.Count(), "out", e.Out)
	return nil
}

// closeOutput closes c and reports its error through err unless an
// earlier error is already there.
func closeOutput(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("unable to close output: %w", cerr)
	}
}
