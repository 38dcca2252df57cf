package lpframe

import (
	"encoding/binary"
	"math"
)

// maxInt bounds a payload length so that it fits in an int.
var maxInt uint64 = math.MaxInt

// ReadFrame reads the next frame: a 4-byte length prefix, then exactly that
// many payload bytes.
//
// A terminator is returned as an ordinary Frame with Length 0; deciding what
// it means is up to the caller. Errors from either read are returned as-is,
// so a stream that ends between frames yields a *TruncatedStreamError with
// Received == 0 that wraps io.EOF.
func (d *Decoder) ReadFrame() (Frame, error) {
	// Read length
	if err := fill(d.r, d.prefix[:]); err != nil {
		if te, ok := err.(*TruncatedStreamError); ok {
			d.offset += int64(te.Received)
		}
		return Frame{}, err
	}
	d.offset += PrefixLen
	length := binary.BigEndian.Uint32(d.prefix[:])

	if length > d.maxLength {
		return Frame{}, &MessageTooLargeError{Length: uint64(length), Limit: uint64(d.maxLength)}
	}
	// Only reachable where int is 32 bits.
	if uint64(length) > maxInt {
		return Frame{}, &MessageTooLargeError{Length: uint64(length), Limit: maxInt}
	}

	// Read payload
	payload, err := d.acc.ReadExact(d.r, int(length))
	if err != nil {
		if te, ok := err.(*TruncatedStreamError); ok {
			d.offset += int64(te.Received)
		}
		return Frame{}, err
	}
	d.offset += int64(length)

	return Frame{Length: length, Payload: payload}, nil
}

// ReusesBuffer reports whether payloads share one buffer that is
// overwritten by the next ReadFrame.
func (d *Decoder) ReusesBuffer() bool {
	return d.acc.Reuse
}

// Offset returns the number of stream bytes the decoder has consumed,
// including those of a frame that failed part way.
func (d *Decoder) Offset() int64 {
	return d.offset
}
