package email

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/wneessen/go-mail"
)

// Dialer is the part of *mail.Client the sender needs.
type Dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Sender struct {
	client Dialer
	from   string
}

// NewSender builds an SMTP-backed sender. With no host configured the sender
// only logs what it would have sent.
func NewSender(cfg config.SMTPConfig) (*Sender, error) {
	if cfg.Host == "" {
		return &Sender{from: cfg.From}, nil
	}

	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}
	return &Sender{client: client, from: cfg.From}, nil
}

func NewSenderWithDialer(client Dialer, from string) *Sender {
	return &Sender{client: client, from: from}
}

func (s *Sender) Send(ctx context.Context, event kafka.NotificationEvent) error {
	if event.Email == "" {
		return nil
	}
	if s.client == nil {
		log.Printf("smtp disabled, would send %q to %s", event.Subject, event.Email)
		return nil
	}

	msg, err := s.build(event)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", event.Email, err)
	}
	log.Printf("sent %s mail to %s", event.Type, event.Email)
	return nil
}

func (s *Sender) build(event kafka.NotificationEvent) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("set sender %q: %w", s.from, err)
	}
	if err := msg.To(event.Email); err != nil {
		return nil, fmt.Errorf("set recipient %q: %w", event.Email, err)
	}
	msg.Subject(event.Subject)
	msg.SetBodyString(mail.TypeTextPlain, event.Body)
	return msg, nil
}
