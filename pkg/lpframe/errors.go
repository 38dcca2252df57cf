package lpframe

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrTruncated indicates the stream ended before a frame was complete.
	ErrTruncated = errors.New("lpframe: truncated stream")

	// ErrTooLarge indicates a frame length exceeds the encodable or configured maximum.
	ErrTooLarge = errors.New("lpframe: length exceeds maximum")

	// ErrEmptyMessage is returned by WriteMessage for a zero-length message.
	// The zero-length frame is reserved for the sequence terminator.
	ErrEmptyMessage = errors.New("lpframe: empty message is reserved for the terminator")

	// ErrNegativeLength is returned by ReadExact when asked for fewer than zero bytes.
	ErrNegativeLength = errors.New("lpframe: negative read length")
)

// TruncatedStreamError reports a read that ended before the expected number
// of bytes arrived. Err holds the transport's reason, io.EOF for a clean
// close.
//
// A truncated length prefix has Expected == PrefixLen. A 4-byte payload has
// the same Expected value, so the two cases can only be told apart by the
// caller's own bookkeeping.
type TruncatedStreamError struct {
	Received int   // Bytes collected before the stream ended
	Expected int   // Bytes the read asked for
	Err      error // Underlying transport error
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("lpframe: truncated stream: received %d of %d bytes: %v", e.Received, e.Expected, e.Err)
}

// Unwrap returns the transport error so callers can tell a close from a reset.
func (e *TruncatedStreamError) Unwrap() error {
	return e.Err
}

// Is reports ErrTruncated as matching.
func (e *TruncatedStreamError) Is(target error) bool {
	return target == ErrTruncated
}

// MessageTooLargeError reports a frame whose length cannot be sent or will
// not be accepted. The encoder returns it before writing anything and the
// decoder before reading any payload, so the stream position is still known.
type MessageTooLargeError struct {
	Length uint64 // Attempted or declared length
	Limit  uint64 // Largest length allowed
}

func (e *MessageTooLargeError) Error() string {
	return fmt.Sprintf("lpframe: message length %d exceeds maximum %d", e.Length, e.Limit)
}

func (e *MessageTooLargeError) Unwrap() error {
	return ErrTooLarge
}
