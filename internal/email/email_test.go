package email

import (
	"context"
	"testing"

	"github.com/pokearena/arena/internal/config"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode() error = %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), CodeLength)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
		seen[code] = true
	}
	// 100 draws from a million-value space colliding down to a handful
	// would mean the generator is broken
	if len(seen) < 90 {
		t.Errorf("only %d distinct codes in 100 draws", len(seen))
	}
}

func TestFromConfig(t *testing.T) {
	t.Run("no relay uses log sender", func(t *testing.T) {
		s := FromConfig(config.EmailConfig{})
		if _, ok := s.(LogSender); !ok {
			t.Errorf("sender = %T, want LogSender", s)
		}
	})

	t.Run("relay uses smtp sender", func(t *testing.T) {
		s := FromConfig(config.EmailConfig{Relay: "smtp.example.com", Username: "u"})
		if _, ok := s.(*SMTPSender); !ok {
			t.Errorf("sender = %T, want *SMTPSender", s)
		}
	})
}

func TestLogSenderNeverFails(t *testing.T) {
	if err := (LogSender{}).Send(context.Background(), "123456", "a@b.com"); err != nil {
		t.Errorf("Send() error = %v", err)
	}
}

func TestSMTPSenderDefaults(t *testing.T) {
	s := NewSMTPSender(config.EmailConfig{Relay: "smtp.example.com", Username: "user@example.com"})
	if s.cfg.Port != 587 {
		t.Errorf("default port = %d, want 587", s.cfg.Port)
	}
	if s.cfg.From != "user@example.com" {
		t.Errorf("default from = %q, want username", s.cfg.From)
	}
}

func TestSMTPSenderHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSMTPSender(config.EmailConfig{Relay: "smtp.example.com"})
	if err := s.Send(ctx, "123456", "a@b.com"); err == nil {
		t.Error("Send() with cancelled context should fail before dialing")
	}
}
