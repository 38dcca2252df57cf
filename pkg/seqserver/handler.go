package seqserver

import (
	"bytes"
	"context"
	"fmt"
	"slices"
)

// Handler turns one received message into one reply. msg is only valid
// until Handle returns and the reply has been written; a handler that keeps
// it must copy it.
type Handler interface {
	Handle(ctx context.Context, msg []byte) ([]byte, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, msg []byte) ([]byte, error)

// Handle calls f(ctx, msg).
func (f HandlerFunc) Handle(ctx context.Context, msg []byte) ([]byte, error) {
	return f(ctx, msg)
}

// Echo replies with the message unchanged.
var Echo = HandlerFunc(func(_ context.Context, msg []byte) ([]byte, error) {
	return msg, nil
})

// Upper replies with ASCII letters upper-cased.
var Upper = HandlerFunc(func(_ context.Context, msg []byte) ([]byte, error) {
	return bytes.ToUpper(msg), nil
})

// Reverse replies with the bytes in reverse order.
var Reverse = HandlerFunc(func(_ context.Context, msg []byte) ([]byte, error) {
	out := bytes.Clone(msg)
	slices.Reverse(out)
	return out, nil
})

// HandlerByName returns the built-in handler called name.
func HandlerByName(name string) (Handler, error) {
	switch name {
	case "echo":
		return Echo, nil
	case "upper":
		return Upper, nil
	case "reverse":
		return Reverse, nil
	default:
		return nil, fmt.Errorf("seqserver: unknown mode %q", name)
	}
}
