package channel

import (
	"errors"
	"io"

	"github.com/epithet-ssh/lpframe/pkg/blockseq"
	"github.com/epithet-ssh/lpframe/pkg/lpframe"
)

// LengthPrefixed returns a framing that sends each message as a block
// sequence frame. Close writes the terminator before closing the writer,
// and Recv reports io.EOF only after reading that terminator; a stream that
// ends without it is reported as truncated.
func LengthPrefixed(opts ...lpframe.Option) Framing {
	return func(r io.Reader, wc io.WriteCloser) Channel {
		return &length{
			seq: blockseq.NewReader(r, blockseq.WithFrameOptions(opts...)),
			out: blockseq.NewWriter(wc, blockseq.WithFrameOptions(opts...)),
			wc:  wc,
		}
	}
}

type length struct {
	seq *blockseq.Reader
	out *blockseq.Writer
	wc  io.WriteCloser
}

// Send implements part of the Channel interface.
func (c *length) Send(msg []byte) error { return c.out.Write(msg) }

// Recv implements part of the Channel interface.
func (c *length) Recv() ([]byte, error) {
	if c.seq.Next() {
		return c.seq.CopyMessage(), nil
	}
	if err := c.seq.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close implements part of the Channel interface.
func (c *length) Close() error {
	return errors.Join(c.out.Finish(), c.wc.Close())
}
