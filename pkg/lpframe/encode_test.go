package lpframe

import (
	"bytes"
	"errors"
	"testing"

	"github.com/epithet-ssh/lpframe/internal/streamtest"
)

func TestEncoder_WriteFrame_Simple(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	if err := enc.WriteFrame([]byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte("\x00\x00\x00\x05hello")
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got %x, want %x", buf.Bytes(), want)
	}
}

func TestEncoder_WriteTerminator(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	if err := enc.WriteTerminator(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0, 0, 0, 0}) {
		t.Errorf("got %x, want 00000000", buf.Bytes())
	}
}

func TestEncoder_WriteFrame_EmptyIsTerminator(t *testing.T) {
	var a, b bytes.Buffer
	if err := NewEncoder(&a).WriteFrame([]byte{}); err != nil {
		t.Fatal(err)
	}
	if err := NewEncoder(&b).WriteTerminator(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("WriteFrame(empty) = %x, WriteTerminator = %x", a.Bytes(), b.Bytes())
	}
}

func TestEncoder_WriteMessage_Empty(t *testing.T) {
	var rec streamtest.RecordingWriter
	enc := NewEncoder(&rec)

	err := enc.WriteMessage(nil)
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if rec.Calls() != 0 {
		t.Errorf("expected no writes, got %d", rec.Calls())
	}
}

func TestEncoder_SingleWritePerFrame(t *testing.T) {
	var rec streamtest.RecordingWriter
	enc := NewEncoder(&rec)

	for _, msg := range streamtest.Zen {
		if err := enc.WriteMessage([]byte(msg)); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.WriteTerminator(); err != nil {
		t.Fatal(err)
	}

	writes := rec.Writes()
	if len(writes) != len(streamtest.Zen)+1 {
		t.Fatalf("expected %d writes, got %d", len(streamtest.Zen)+1, len(writes))
	}
	for i, msg := range streamtest.Zen {
		if len(writes[i]) != PrefixLen+len(msg) {
			t.Errorf("write %d: got %d bytes, want %d", i, len(writes[i]), PrefixLen+len(msg))
		}
	}
}

func TestEncoder_WriteFrame_Large(t *testing.T) {
	var rec streamtest.RecordingWriter
	enc := NewEncoder(&rec)

	payload := bytes.Repeat([]byte("0123456789abcdef"), 8192) // 128 KiB
	if err := enc.WriteFrame(payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := rec.Bytes()
	if len(got) != PrefixLen+len(payload) {
		t.Fatalf("got %d bytes, want %d", len(got), PrefixLen+len(payload))
	}
	if !bytes.Equal(got[:PrefixLen], []byte{0x00, 0x02, 0x00, 0x00}) {
		t.Errorf("prefix: got %x, want 00020000", got[:PrefixLen])
	}
	if !bytes.Equal(got[PrefixLen:], payload) {
		t.Errorf("payload mismatch")
	}
}

func TestEncoder_MaxLength_NoWrite(t *testing.T) {
	var rec streamtest.RecordingWriter
	enc := NewEncoder(&rec, MaxLength(4))

	err := enc.WriteFrame([]byte("hello"))
	var tl *MessageTooLargeError
	if !errors.As(err, &tl) {
		t.Fatalf("expected MessageTooLargeError, got %v", err)
	}
	if tl.Length != 5 || tl.Limit != 4 {
		t.Errorf("got length=%d limit=%d, want 5 and 4", tl.Length, tl.Limit)
	}
	if rec.Calls() != 0 {
		t.Errorf("expected no writes, got %d", rec.Calls())
	}

	// Nothing was written, so the encoder is still usable.
	if err := enc.WriteFrame([]byte("hey")); err != nil {
		t.Fatalf("unexpected error after rejection: %v", err)
	}
}

func TestCheckLength_FieldBoundary(t *testing.T) {
	if err := checkLength(MaxFrameLength, MaxFrameLength); err != nil {
		t.Errorf("2^32-1 should be encodable: %v", err)
	}

	err := checkLength(MaxFrameLength+1, MaxFrameLength)
	var tl *MessageTooLargeError
	if !errors.As(err, &tl) {
		t.Fatalf("expected MessageTooLargeError for 2^32, got %v", err)
	}
	if tl.Length != 1<<32 {
		t.Errorf("got length %d, want %d", tl.Length, uint64(1)<<32)
	}
}

func TestEncoder_TransportError(t *testing.T) {
	w := &streamtest.FailingWriter{Limit: 2}
	enc := NewEncoder(w)

	err := enc.WriteFrame([]byte("hello"))
	if !errors.Is(err, streamtest.ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
}
