// Package lpframe implements length-prefixed framing over byte streams.
//
// A frame is a 4-byte big-endian unsigned length followed by exactly that
// many payload bytes. There is no magic number, version or checksum; the
// transport is trusted for byte integrity and the framing only adds message
// boundaries:
//
//	Frame      := LENGTH(4 bytes, uint32) PAYLOAD(LENGTH bytes)
//	Terminator := 0x00000000
//
// The zero-length frame is reserved as a terminator. Package blockseq uses
// it to end a sequence of messages; WriteMessage refuses to send an empty
// application message for that reason.
//
// # Examples
//
//	"\x00\x00\x00\x05hello"  // the 5-byte message "hello"
//	"\x00\x00\x00\x00"       // the terminator
//
// # Basic Usage
//
// Encoding:
//
//	enc := lpframe.NewEncoder(conn)
//	enc.WriteMessage([]byte("hello")) // writes 00000005 68656c6c6f
//	enc.WriteTerminator()             // writes 00000000
//
// Decoding:
//
//	dec := lpframe.NewDecoder(conn, lpframe.MaxLength(1<<20))
//	frame, err := dec.ReadFrame()
//
// # Partial Reads
//
// A single Read on a stream may return fewer bytes than asked for, or bytes
// that span two frames. ReadExact loops until the requested count has
// arrived and never reads past it, so the decoder holds no bytes across
// calls and two decoders may share a reader one after the other.
//
// If the stream ends before a length prefix or payload is complete the
// decoder returns a *TruncatedStreamError. A partial payload is never
// returned.
//
// # Security
//
// A corrupt or hostile length prefix can ask for up to 4GiB. Decoders are
// unbounded by default; use MaxLength to cap what a peer may request.
package lpframe
