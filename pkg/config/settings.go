package config

import (
	"errors"
	"fmt"
	"time"

	"cuelang.org/go/cue"
	"github.com/epithet-ssh/lpframe/pkg/lpframe"
	"github.com/epithet-ssh/lpframe/pkg/seqserver"
)

// Settings is the shape of an lpframe config file. Every field is optional;
// flags given on the command line win over the file.
type Settings struct {
	Verbose int            `json:"verbose,omitempty"`
	LogFile string         `json:"log_file,omitempty"`
	NoColor bool           `json:"no_color,omitempty"`
	Serve   *ServeSettings `json:"serve,omitempty"`
	Send    *SendSettings  `json:"send,omitempty"`
}

// ServeSettings configures "lpframe serve".
type ServeSettings struct {
	Listen      string `json:"listen,omitempty"`
	Admin       string `json:"admin,omitempty"`
	Mode        string `json:"mode,omitempty"`
	MaxLength   uint32 `json:"max_length,omitempty"`
	IdleTimeout string `json:"idle_timeout,omitempty"`
}

// SendSettings configures "lpframe send".
type SendSettings struct {
	Addr      []string `json:"addr,omitempty"`
	Timeout   string   `json:"timeout,omitempty"`
	Cooldown  string   `json:"cooldown,omitempty"`
	MaxLength uint32   `json:"max_length,omitempty"`
}

// DecodeSettings decodes a loaded config value and validates it.
func DecodeSettings(v cue.Value) (*Settings, error) {
	var s Settings
	if err := v.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate reports every invalid field.
func (s *Settings) Validate() error {
	var errs []error
	if s.Verbose < 0 {
		errs = append(errs, fmt.Errorf("verbose must not be negative, got %d", s.Verbose))
	}
	if s.Serve != nil {
		if s.Serve.Mode != "" {
			if _, err := seqserver.HandlerByName(s.Serve.Mode); err != nil {
				errs = append(errs, fmt.Errorf("serve.mode: %w", err))
			}
		}
		if s.Serve.IdleTimeout != "" {
			if err := ValidateDuration(s.Serve.IdleTimeout); err != nil {
				errs = append(errs, fmt.Errorf("serve.idle_timeout: %w", err))
			}
		}
		if s.Serve.Listen != "" && s.Serve.Listen == s.Serve.Admin {
			errs = append(errs, fmt.Errorf("serve.admin must differ from serve.listen (%s)", s.Serve.Listen))
		}
	}
	if s.Send != nil {
		if s.Send.Timeout != "" {
			if err := ValidateDuration(s.Send.Timeout); err != nil {
				errs = append(errs, fmt.Errorf("send.timeout: %w", err))
			}
		}
		if s.Send.Cooldown != "" {
			if err := ValidateDuration(s.Send.Cooldown); err != nil {
				errs = append(errs, fmt.Errorf("send.cooldown: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// ValidateDuration checks that d parses as a positive time.Duration.
func ValidateDuration(d string) error {
	parsed, err := time.ParseDuration(d)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", d, err)
	}
	if parsed <= 0 {
		return fmt.Errorf("duration must be positive, got %q", d)
	}
	return nil
}

// FrameOptions returns the lpframe options implied by a max_length setting.
// Zero means unbounded.
func FrameOptions(maxLength uint32) []lpframe.Option {
	if maxLength == 0 {
		return nil
	}
	return []lpframe.Option{lpframe.MaxLength(maxLength)}
}
