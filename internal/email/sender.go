// Package email sends transactional HTML email over SMTP.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrNotConfigured is returned by Send when no SMTP server is configured.
var ErrNotConfigured = errors.New("email not configured")

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Message is a single HTML email with a plain-text fallback.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers messages.
type Sender interface {
	IsConfigured() bool
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	config Config
	addr   string
	auth   smtp.Auth
	send   sendFunc
}

// NewSMTPSender creates a sender for config.
func NewSMTPSender(config Config) *SMTPSender {
	s := &SMTPSender{
		config: config,
		addr:   net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		send:   smtp.SendMail,
	}
	if config.Username != "" {
		s.auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return s
}

// IsConfigured returns true if email is configured
func (s *SMTPSender) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != 0 && s.config.From != ""
}

// Send delivers msg. net/smtp has no context support, so ctx is only
// checked before the connection is opened.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	if msg.To == "" {
		return errors.New("email: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := s.build(msg)
	if err := s.send(s.addr, s.auth, s.config.From, []string{msg.To}, body); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) []byte {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.config.FromName), s.config.From)
	}

	text := msg.Text
	if text == "" {
		text = "Please view this email in an HTML-capable email client."
	}

	boundary := "auconnect-" + uuid.NewString()

	var b bytes.Buffer
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&b, "\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "%s\r\n\r\n", normalizeNewlines(text))

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: text/html; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "%s\r\n\r\n", normalizeNewlines(msg.HTML))
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return b.Bytes()
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
