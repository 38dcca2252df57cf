package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/epithet-ssh/lpframe/pkg/config"
	"github.com/epithet-ssh/lpframe/pkg/lpframe"
)

type InspectCLI struct {
	File      string `arg:"" optional:"" help:"Captured stream to read (stdin if omitted or -)" default:"-"`
	MaxLength uint32 `help:"Reject frames longer than this (0 for no limit)" default:"0"`
	JSON      bool   `help:"Output in JSON format" short:"j"`
	Preview   int    `help:"Payload bytes to show per frame" default:"32"`
}

// frameInfo describes one frame of an inspected stream.
type frameInfo struct {
	Offset     int64  `json:"offset"`
	Length     uint32 `json:"length"`
	Terminator bool   `json:"terminator,omitempty"`
	Preview    string `json:"preview,omitempty"`
}

type inspectReport struct {
	Frames   []frameInfo `json:"frames"`
	Messages int         `json:"messages"`
	Complete bool        `json:"complete"`
	Trailing bool        `json:"trailing_data,omitempty"`
	Error    string      `json:"error,omitempty"`
}

func (i *InspectCLI) Run(logger *slog.Logger, out io.Writer) error {
	var r io.Reader = os.Stdin
	if i.File != "" && i.File != "-" {
		f, err := os.Open(i.File)
		if err != nil {
			return fmt.Errorf("unable to open capture: %w", err)
		}
		defer f.Close()
		r = f
	}

	report, err := inspect(r, i.Preview, config.FrameOptions(i.MaxLength)...)
	logger.Debug("inspected stream", "frames", len(report.Frames), "complete", report.Complete)

	if i.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			return encErr
		}
		return err
	}

	fmt.Fprintf(out, "%-10s %-10s %s\n", "OFFSET", "LENGTH", "PAYLOAD")
	for _, f := range report.Frames {
		if f.Terminator {
			fmt.Fprintf(out, "%-10d %-10d (terminator)\n", f.Offset, f.Length)
			continue
		}
		fmt.Fprintf(out, "%-10d %-10d %s\n", f.Offset, f.Length, f.Preview)
	}
	switch {
	case report.Complete:
		fmt.Fprintf(out, "\nclean end: %d messages\n", report.Messages)
		if report.Trailing {
			fmt.Fprintln(out, "warning: data follows the terminator")
		}
	default:
		fmt.Fprintf(out, "\nincomplete after %d messages: %s\n", report.Messages, report.Error)
	}
	return err
}

// inspect decodes frames from r until the terminator or an error. The
// returned report is filled in either way.
func inspect(r io.Reader, preview int, opts ...lpframe.Option) (inspectReport, error) {
	var report inspectReport
	dec := lpframe.NewDecoder(r, opts...)
	for {
		offset := dec.Offset()
		f, err := dec.ReadFrame()
		if err != nil {
			var te *lpframe.TruncatedStreamError
			if errors.As(err, &te) && te.Received == 0 && errors.Is(te.Err, io.EOF) {
				err = fmt.Errorf("stream ended at offset %d without a terminator: %w", dec.Offset(), err)
			} else {
				err = fmt.Errorf("bad frame at offset %d: %w", offset, err)
			}
			report.Error = err.Error()
			return report, err
		}

		info := frameInfo{Offset: offset, Length: f.Length, Terminator: f.IsTerminator()}
		if !info.Terminator {
			report.Messages++
			p := f.Payload
			if preview >= 0 && len(p) > preview {
				p = p[:preview]
			}
			info.Preview = strconv.Quote(string(p))
		}
		report.Frames = append(report.Frames, info)

		if info.Terminator {
			report.Complete = true
			var one [1]byte
			n, _ := io.ReadFull(r, one[:])
			report.Trailing = n > 0
			return report, nil
		}
	}
}
