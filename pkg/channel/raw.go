package channel

import "io"

// Raw is a framing with no framing at all: a message is everything the
// peer writes until it closes its side. Only one message can be carried per
// stream, and an empty stream is an empty message.
func Raw(r io.Reader, wc io.WriteCloser) Channel {
	return &raw{r: r, wc: wc}
}

type raw struct {
	r    io.Reader
	wc   io.WriteCloser
	done bool
}

// Send implements part of the Channel interface.
func (c *raw) Send(msg []byte) error { _, err := c.wc.Write(msg); return err }

// Recv implements part of the Channel interface.
func (c *raw) Recv() ([]byte, error) {
	if c.done {
		return nil, io.EOF
	}
	data, err := io.ReadAll(c.r)
	if err != nil {
		return nil, err
	}
	c.done = true
	return data, nil
}

// Close implements part of the Channel interface.
func (c *raw) Close() error { return c.wc.Close() }
