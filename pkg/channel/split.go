package channel

import (
	"bufio"
	"bytes"
	"io"
)

// Line is a framing that terminates each message with a newline.
var Line = Split('\n')

// Split returns a framing in which each message is followed by delim.
// Messages containing delim cannot be sent, and the receiver must scan
// every byte to find the end of a message.
func Split(delim byte) Framing {
	return func(r io.Reader, wc io.WriteCloser) Channel {
		return &split{delim: delim, rd: bufio.NewReader(r), wc: wc}
	}
}

type split struct {
	delim byte
	rd    *bufio.Reader
	wc    io.WriteCloser
	buf   bytes.Buffer
}

// Send implements part of the Channel interface.
func (c *split) Send(msg []byte) error {
	if bytes.IndexByte(msg, c.delim) >= 0 {
		return ErrDelimiterInPayload
	}
	c.buf.Reset()
	c.buf.Write(msg)
	c.buf.WriteByte(c.delim)
	_, err := c.wc.Write(c.buf.Bytes())
	return err
}

// Recv implements part of the Channel interface. Trailing bytes without a
// delimiter at the end of the stream are returned as a final message.
func (c *split) Recv() ([]byte, error) {
	line, err := c.rd.ReadBytes(c.delim)
	if err == io.EOF && len(line) > 0 {
		return line, nil
	} else if err != nil {
		return nil, err
	}
	return line[:len(line)-1], nil
}

// Close implements part of the Channel interface.
func (c *split) Close() error { return c.wc.Close() }
