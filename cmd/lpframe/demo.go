package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/epithet-ssh/lpframe/pkg/blockseq"
	"github.com/epithet-ssh/lpframe/pkg/lpframe"
	"github.com/epithet-ssh/lpframe/pkg/streamconn"
	"golang.org/x/sync/errgroup"
)

var zen = []string{
	"Beautiful is better than ugly.",
	"Explicit is better than implicit.",
	"Simple is better than complex.",
}

type DemoCLI struct {
	Chunk int `help:"Deliver the wire bytes in chunks of this size (0 sends them in one write)" default:"0"`
}

func (d *DemoCLI) Run(logger *slog.Logger, out io.Writer) error {
	if d.Chunk < 0 {
		return fmt.Errorf("chunk size must not be negative, got %d", d.Chunk)
	}

	var wire bytes.Buffer
	w := blockseq.NewWriter(&wire, blockseq.WithLogger(logger))
	for _, m := range zen {
		if err := w.Write([]byte(m)); err != nil {
			return err
		}
	}
	if err := w.Finish(); err != nil {
		return err
	}

	fmt.Fprintf(out, "wire (%d bytes):\n", wire.Len())
	if err := dumpFrames(out, wire.Bytes()); err != nil {
		return err
	}

	// Push the same bytes through an in-memory connection, chunk by chunk.
	a, b := streamconn.Pipe()
	defer a.Close()
	defer b.Close()

	var g errgroup.Group
	g.Go(func() error {
		defer a.CloseWrite()
		data := wire.Bytes()
		size := d.Chunk
		if size == 0 {
			size = len(data)
		}
		for len(data) > 0 {
			n := min(size, len(data))
			if _, err := a.Write(data[:n]); err != nil {
				return err
			}
			data = data[n:]
		}
		return nil
	})

	fmt.Fprintln(out, "decoded:")
	seq := blockseq.NewReader(b, blockseq.WithLogger(logger))
	for seq.Next() {
		fmt.Fprintf(out, "  %d: %s\n", seq.Count(), seq.Message())
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := seq.Err(); err != nil {
		return err
	}
	fmt.Fprintf(out, "sequence %s after %d messages\n", seq.State(), seq.Count())
	return nil
}

// dumpFrames prints each frame of data as its prefix and payload in hex.
func dumpFrames(out io.Writer, data []byte) error {
	dec := lpframe.NewDecoder(bytes.NewReader(data))
	for {
		offset := dec.Offset()
		f, err := dec.ReadFrame()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %04x  %08x %s\n", offset, f.Length, hex.EncodeToString(f.Payload))
		if f.IsTerminator() {
			return nil
		}
	}
}
