package email

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// Config holds SMTP settings for outbound mail
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	SendTimeout time.Duration
}

// Sender delivers transactional mail over SMTP
type Sender struct {
	config *Config
}

// NewSender creates an SMTP mail sender
func NewSender(cfg *Config) (*Sender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("email config is required")
	}
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp host and from address are required")
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	return &Sender{config: cfg}, nil
}

// SendSignInCode mails a one-time sign-in code to the given address
func (s *Sender) SendSignInCode(ctx context.Context, to, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.config.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject("Your sign-in code")
	msg.SetBodyString(mail.TypeTextPlain,
		fmt.Sprintf("Your one-time sign-in code is %s. It expires in 5 minutes.", code))

	client, err := mail.NewClient(s.config.Host,
		mail.WithPort(s.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.config.Username),
		mail.WithPassword(s.config.Password),
	)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}
	defer client.Close()

	sendCtx, cancel := context.WithTimeout(ctx, s.config.SendTimeout)
	defer cancel()

	if err := client.DialAndSendWithContext(sendCtx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
