package email

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/pokearena/arena/internal/config"
	"github.com/pokearena/arena/internal/logging"
)

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

// Sender delivers a verification code to an address. Failures are surfaced
// to the caller, never swallowed; a failed delivery leaves the session in a
// state where the user can resend.
type Sender interface {
	Send(ctx context.Context, code, address string) error
}

// GenerateCode returns a fresh random numeric verification code.
func GenerateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < CodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}

// SMTPSender delivers codes through a configured SMTP relay.
type SMTPSender struct {
	cfg config.EmailConfig
}

// NewSMTPSender creates a sender for the given relay configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPSender{cfg: cfg}
}

// Send mails the code to address via the relay.
func (s *SMTPSender) Send(ctx context.Context, code, address string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := []byte(fmt.Sprintf(
		"From: Arena <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: Your Arena verification code\r\n"+
			"\r\n"+
			"Your verification code is: %s\r\n",
		s.cfg.From, address, code,
	))

	addr := fmt.Sprintf("%s:%d", s.cfg.Relay, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Relay)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{address}, msg); err != nil {
		logging.Error("Failed to send verification email",
			zap.String("relay", addr),
			zap.String("to", address),
			zap.Error(err),
		)
		return fmt.Errorf("send verification email: %w", err)
	}

	logging.Info("Verification email sent",
		zap.String("to", address),
	)
	return nil
}

// LogSender logs codes instead of delivering them. It is the default when
// no SMTP relay is configured, which keeps the server usable in development
// and demos.
type LogSender struct{}

// Send logs the code that would have been mailed.
func (LogSender) Send(_ context.Context, code, address string) error {
	logging.Info("Verification code (email delivery not configured)",
		zap.String("to", address),
		zap.String("code", code),
	)
	return nil
}

// FromConfig picks the sender implied by the configuration: an SMTP sender
// when a relay is set, the logging sender otherwise.
func FromConfig(cfg config.EmailConfig) Sender {
	if cfg.Relay == "" {
		return LogSender{}
	}
	return NewSMTPSender(cfg)
}
