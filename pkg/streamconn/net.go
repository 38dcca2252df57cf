package streamconn

import (
	"context"
	"fmt"
	"net"
)

// Dial connects to addr and returns a Conn with both directions open.
func Dial(ctx context.Context, network, addr string) (*Conn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s %s: %w", network, addr, err)
	}
	return New(nc, Both), nil
}

// Listen opens a stream listener. The Go runtime already sets SO_REUSEADDR
// on TCP listeners, so a restarted server can rebind at once.
func Listen(ctx context.Context, network, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s %s: %w", network, addr, err)
	}
	return ln, nil
}

// Accept waits for the next connection on ln and wraps it.
func Accept(ln net.Listener) (*Conn, error) {
	nc, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	return New(nc, Both), nil
}
