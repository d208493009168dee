package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"strings"

	mail "github.com/go-mail/mail/v2"
	"github.com/google/uuid"

	"civicfix-be/config"
)

// NewTransport selects the transport named by cfg.Transport.
func NewTransport(cfg config.MailConfig) (Transport, error) {
	switch cfg.Transport {
	case "", "smtp":
		return NewSMTPTransport(cfg), nil
	case "log":
		return LogTransport{}, nil
	default:
		return nil, fmt.Errorf("unknown MAIL_TRANSPORT %q", cfg.Transport)
	}
}

// SMTPTransport sends through an SMTP relay such as Gmail using go-mail.
type SMTPTransport struct {
	dialer   *mail.Dialer
	user     string
	pass     string
	fromName string
	replyTo  string
	domain   string
}

func NewSMTPTransport(cfg config.MailConfig) *SMTPTransport {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	if !d.SSL {
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}

	domain := cfg.Host
	if at := strings.LastIndex(cfg.User, "@"); at >= 0 {
		domain = cfg.User[at+1:]
	}

	return &SMTPTransport{
		dialer:   d,
		user:     cfg.User,
		pass:     cfg.Pass,
		fromName: cfg.FromName,
		replyTo:  cfg.ReplyTo,
		domain:   domain,
	}
}

func (t *SMTPTransport) Configured() bool {
	return t.user != "" && t.pass != ""
}

// Send opens one connection per message; the dispatcher bounds how many run at once.
func (t *SMTPTransport) Send(_ context.Context, msg Message) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), t.domain)

	m := mail.NewMessage()
	m.SetAddressHeader("From", t.user, t.fromName)
	m.SetHeader("To", msg.To)
	if t.replyTo != "" {
		m.SetHeader("Reply-To", t.replyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-Id", messageID)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	if err := t.dialer.DialAndSend(m); err != nil {
		return "", err
	}
	return messageID, nil
}

// LogTransport writes messages to the operational log instead of sending them.
type LogTransport struct{}

func (LogTransport) Configured() bool { return true }

func (LogTransport) Send(_ context.Context, msg Message) (string, error) {
	id := uuid.NewString()
	log.Printf("[mail %s] to=%s subject=%q\n%s", id, msg.To, msg.Subject, msg.Text)
	return id, nil
}
