// Package channel puts several message framings behind one interface, so
// that the length-prefixed block sequence can be compared with the simpler
// ways of carving a byte stream into messages.
//
// Raw sends one message per stream and relies on the writer closing its
// side. Fixed sends messages of one agreed size. Split ends each message
// with a delimiter byte, which therefore cannot appear inside a message.
// LengthPrefixed carries arbitrary non-empty binary messages and ends the
// stream with a terminator frame.
package channel

import (
	"errors"
	"fmt"
	"io"
)

// A Channel transmits and receives discrete messages over a stream. The
// methods of a Channel need not be safe for concurrent use.
type Channel interface {
	// Send transmits one message.
	Send([]byte) error

	// Recv returns the next message. At a clean end of the stream it
	// returns io.EOF.
	Recv() ([]byte, error)

	// Close ends the sending side. Peers see io.EOF from Recv once they
	// have consumed everything sent before it.
	Close() error
}

// A Framing converts a reader and a writer into a Channel with a particular
// message-framing discipline.
type Framing func(io.Reader, io.WriteCloser) Channel

var (
	// ErrFixedSize is returned by a Fixed channel for a message of the wrong size.
	ErrFixedSize = errors.New("channel: message size does not match fixed framing")

	// ErrDelimiterInPayload is returned by a Split channel for a message
	// containing the delimiter.
	ErrDelimiterInPayload = errors.New("channel: message contains the delimiter")
)

// ByName returns the framing registered under name: "raw", "fixed"
// (16-byte messages), "line", or "length".
func ByName(name string) (Framing, error) {
	switch name {
	case "raw":
		return Raw, nil
	case "fixed":
		return Fixed(DefaultFixedSize), nil
	case "line":
		return Line, nil
	case "length":
		return LengthPrefixed(), nil
	default:
		return nil, fmt.Errorf("channel: unknown framing %q", name)
	}
}

// Pipe creates a pair of connected in-memory channels using the specified
// framing discipline. Pipe will panic if framing == nil.
func Pipe(framing Framing) (client, server Channel) {
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	client = framing(cr, cw)
	server = framing(sr, sw)
	return
}
