package channel

import (
	"errors"
	"fmt"
	"io"

	"github.com/epithet-ssh/lpframe/pkg/lpframe"
)

// DefaultFixedSize is the message size used by the "fixed" framing.
const DefaultFixedSize = 16

// Fixed returns a framing in which every message is exactly size bytes.
// Nothing is added on the wire; both peers must agree on size beforehand.
func Fixed(size int) Framing {
	return func(r io.Reader, wc io.WriteCloser) Channel {
		return &fixed{size: size, r: r, wc: wc}
	}
}

type fixed struct {
	size int
	r    io.Reader
	wc   io.WriteCloser
}

// Send implements part of the Channel interface.
func (c *fixed) Send(msg []byte) error {
	if len(msg) != c.size {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFixedSize, len(msg), c.size)
	}
	_, err := c.wc.Write(msg)
	return err
}

// Recv implements part of the Channel interface. A stream that ends on a
// message boundary reports io.EOF; one that ends inside a message reports
// a *lpframe.TruncatedStreamError.
func (c *fixed) Recv() ([]byte, error) {
	msg, err := lpframe.ReadExact(c.r, c.size)
	var te *lpframe.TruncatedStreamError
	if errors.As(err, &te) && te.Received == 0 && errors.Is(te.Err, io.EOF) {
		return nil, io.EOF
	}
	return msg, err
}

// Close implements part of the Channel interface.
func (c *fixed) Close() error { return c.wc.Close() }
