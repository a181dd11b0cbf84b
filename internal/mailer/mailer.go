// Package mailer delivers outgoing notification mail over SMTP.
package mailer

import (
	"errors"
	"strings"

	"github.com/ecopress/internal/config"
	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when no SMTP host was configured.
var ErrNotConfigured = errors.New("smtp is not configured")

// Message is a plain text mail.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Sender delivers a Message.
type Sender interface {
	Send(msg Message) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends mail through a gomail dialer.
type SMTPMailer struct {
	dialer dialer
	from   string
}

// New returns an SMTP sender, or a Noop sender when cfg.Host is empty.
func New(cfg config.SMTPConfig) Sender {
	if strings.TrimSpace(cfg.Host) == "" {
		return Noop{}
	}

	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

// Send builds the gomail message and dials the server.
func (m *SMTPMailer) Send(msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("mail recipient is empty")
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	return m.dialer.DialAndSend(gm)
}

// Noop discards every message.
type Noop struct{}

// Send always reports ErrNotConfigured so callers can record the message as undelivered.
func (Noop) Send(Message) error {
	return ErrNotConfigured
}
