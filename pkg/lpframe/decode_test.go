package lpframe

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func TestDecoder_ReadFrame_Terminator(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{0, 0, 0, 0}))
	frame, err := dec.ReadFrame()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !frame.IsTerminator() {
		t.Errorf("expected terminator, got length %d", frame.Length)
	}
	if len(frame.Payload) != 0 {
		t.Errorf("expected empty payload, got %d bytes", len(frame.Payload))
	}
}

func TestDecoder_ReadFrame_Simple(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte("\x00\x00\x00\x05hello")))
	frame, err := dec.ReadFrame()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Length != 5 {
		t.Errorf("length: got %d, want 5", frame.Length)
	}
	if string(frame.Payload) != "hello" {
		t.Errorf("got %q, want %q", string(frame.Payload), "hello")
	}
}

func TestDecoder_ReadFrame_Binary(t *testing.T) {
	input := []byte("\x00\x00\x00\x04\x00\x01\xFF\xFE")
	dec := NewDecoder(bytes.NewReader(input))
	frame, err := dec.ReadFrame()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x00, 0x01, 0xFF, 0xFE}
	if !bytes.Equal(frame.Payload, want) {
		t.Errorf("got %v, want %v", frame.Payload, want)
	}
}

func TestDecoder_ReadFrame_Multiple(t *testing.T) {
	input := "\x00\x00\x00\x05hello\x00\x00\x00\x05world\x00\x00\x00\x03foo"
	dec := NewDecoder(bytes.NewReader([]byte(input)))

	for _, want := range []string{"hello", "world", "foo"} {
		frame, err := dec.ReadFrame()
		if err != nil {
			t.Fatalf("unexpected error decoding %q: %v", want, err)
		}
		if string(frame.Payload) != want {
			t.Errorf("got %q, want %q", frame.Payload, want)
		}
	}

	// Stream ends cleanly between frames
	_, err := dec.ReadFrame()
	var te *TruncatedStreamError
	if !errors.As(err, &te) {
		t.Fatalf("expected TruncatedStreamError, got %v", err)
	}
	if te.Received != 0 || te.Expected != PrefixLen {
		t.Errorf("got received=%d expected=%d, want 0 and %d", te.Received, te.Expected, PrefixLen)
	}
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected wrapped io.EOF, got %v", te.Err)
	}
}

func TestDecoder_ReadFrame_TruncatedPrefix(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{0, 0}))
	_, err := dec.ReadFrame()

	var te *TruncatedStreamError
	if !errors.As(err, &te) {
		t.Fatalf("expected TruncatedStreamError, got %v", err)
	}
	if te.Received != 2 || te.Expected != 4 {
		t.Errorf("got received=%d expected=%d, want 2 and 4", te.Received, te.Expected)
	}
	if dec.Offset() != 2 {
		t.Errorf("offset: got %d, want 2", dec.Offset())
	}
}

func TestDecoder_ReadFrame_TruncatedPayload(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte("\x00\x00\x00\x05hel")))
	frame, err := dec.ReadFrame()

	var te *TruncatedStreamError
	if !errors.As(err, &te) {
		t.Fatalf("expected TruncatedStreamError, got %v", err)
	}
	if te.Received != 3 || te.Expected != 5 {
		t.Errorf("got received=%d expected=%d, want 3 and 5", te.Received, te.Expected)
	}
	if frame.Payload != nil {
		t.Errorf("partial payload exposed: %q", frame.Payload)
	}
	if dec.Offset() != 7 {
		t.Errorf("offset: got %d, want 7", dec.Offset())
	}
}

func TestDecoder_MaxLength(t *testing.T) {
	r := bytes.NewReader([]byte("\x00\x00\x00\x10" + "0123456789abcdef"))
	dec := NewDecoder(r, MaxLength(8))

	_, err := dec.ReadFrame()
	var tl *MessageTooLargeError
	if !errors.As(err, &tl) {
		t.Fatalf("expected MessageTooLargeError, got %v", err)
	}
	if tl.Length != 16 || tl.Limit != 8 {
		t.Errorf("got length=%d limit=%d, want 16 and 8", tl.Length, tl.Limit)
	}
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if r.Len() != 16 {
		t.Errorf("payload must not be read: %d bytes left, want 16", r.Len())
	}
}

func TestDecoder_MaxLength_AtLimit(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte("\x00\x00\x00\x08abcdefgh")), MaxLength(8))
	frame, err := dec.ReadFrame()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(frame.Payload) != "abcdefgh" {
		t.Errorf("got %q", frame.Payload)
	}
}

func TestDecoder_SharedReaderNoReadAhead(t *testing.T) {
	r := bytes.NewReader([]byte("\x00\x00\x00\x03one\x00\x00\x00\x03two"))

	first, err := NewDecoder(r).ReadFrame()
	if err != nil {
		t.Fatalf("first decoder: %v", err)
	}
	second, err := NewDecoder(r).ReadFrame()
	if err != nil {
		t.Fatalf("second decoder: %v", err)
	}
	if string(first.Payload) != "one" || string(second.Payload) != "two" {
		t.Errorf("got %q then %q", first.Payload, second.Payload)
	}
}

func TestDecoder_Offset(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte("\x00\x00\x00\x02hi\x00\x00\x00\x00")))
	if _, err := dec.ReadFrame(); err != nil {
		t.Fatal(err)
	}
	if dec.Offset() != 6 {
		t.Errorf("after first frame: got %d, want 6", dec.Offset())
	}
	if _, err := dec.ReadFrame(); err != nil {
		t.Fatal(err)
	}
	if dec.Offset() != 10 {
		t.Errorf("after terminator: got %d, want 10", dec.Offset())
	}
}

func TestDecoder_ReuseBuffer(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte("\x00\x00\x00\x04abcd\x00\x00\x00\x02xy")), ReuseBuffer())

	first, err := dec.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	kept := string(first.Payload)

	second, err := dec.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	if kept != "abcd" || string(second.Payload) != "xy" {
		t.Errorf("got %q then %q", kept, second.Payload)
	}
	if &first.Payload[0] != &second.Payload[0] {
		t.Errorf("expected payloads to share a buffer")
	}
}

func TestDecoder_LengthBeyondInt(t *testing.T) {
	// Behave as if int were 32 bits.
	saved := maxInt
	maxInt = math.MaxInt32
	t.Cleanup(func() { maxInt = saved })

	dec := NewDecoder(bytes.NewReader([]byte{0x80, 0, 0, 0, 'x'}))
	_, err := dec.ReadFrame()
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	var tl *MessageTooLargeError
	if !errors.As(err, &tl) {
		t.Fatalf("expected *MessageTooLargeError, got %T", err)
	}
	if tl.Length != 1<<31 || tl.Limit != math.MaxInt32 {
		t.Errorf("got length %d limit %d", tl.Length, tl.Limit)
	}
	if errors.Is(err, ErrNegativeLength) {
		t.Error("length reported as negative")
	}
}
