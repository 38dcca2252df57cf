package lpframe

// config holds encoder and decoder configuration.
type config struct {
	maxLength   uint32
	reuseBuffer bool
}

// Option configures an Encoder or a Decoder.
type Option func(*config)

// MaxLength sets the largest payload, in bytes, the encoder will send and the
// decoder will accept. A decoder that reads a larger length prefix returns a
// *MessageTooLargeError without reading the payload.
//
// Default: MaxFrameLength (no limit beyond the 32-bit length field)
func MaxLength(n uint32) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// ReuseBuffer makes the decoder read every payload into one internal buffer
// that only grows. Frame payloads then stay valid only until the next call
// to ReadFrame.
//
// Default: false (each payload is a fresh slice owned by the caller)
func ReuseBuffer() Option {
	return func(c *config) {
		c.reuseBuffer = true
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		maxLength: MaxFrameLength,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
