package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	body string
}

func newTestSender(t *testing.T, sendErr error) (*SMTPSender, *capturedMail) {
	t.Helper()
	captured := &capturedMail{}
	s := NewSMTPSender(Config{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "secret",
		From:     "noreply@example.com",
		FromName: "AU Connect",
	})
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.from = from
		captured.to = to
		captured.body = string(msg)
		return sendErr
	}
	return s, captured
}

func TestSMTPSender_Send(t *testing.T) {
	s, captured := newTestSender(t, nil)

	err := s.Send(context.Background(), Message{
		To:      "bob@example.com",
		Subject: "alice sent you a connection request",
		HTML:    "<p>hello</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", captured.addr)
	assert.Equal(t, "noreply@example.com", captured.from)
	assert.Equal(t, []string{"bob@example.com"}, captured.to)
	assert.Contains(t, captured.body, "Subject: alice sent you a connection request\r\n")
	assert.Contains(t, captured.body, "From: AU Connect <noreply@example.com>\r\n")
	assert.Contains(t, captured.body, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, captured.body, "<p>hello</p>")
}

func TestSMTPSender_SendErrors(t *testing.T) {
	s, _ := newTestSender(t, errors.New("relay refused"))
	err := s.Send(context.Background(), Message{To: "bob@example.com", Subject: "x", HTML: "y"})
	assert.ErrorContains(t, err, "relay refused")

	err = s.Send(context.Background(), Message{Subject: "x"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Send(ctx, Message{To: "bob@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSMTPSender_NotConfigured(t *testing.T) {
	s := NewSMTPSender(Config{})
	assert.False(t, s.IsConfigured())
	assert.ErrorIs(t, s.Send(context.Background(), Message{To: "a@b.c"}), ErrNotConfigured)
}

func TestConnectionTemplates(t *testing.T) {
	data := ConnectionData{
		RecipientName:    "bob",
		SenderName:       "<alice>",
		SenderProfileURL: "https://connect.example.edu/profile/alice",
		NotificationsURL: "https://connect.example.edu/notifications",
	}

	req, err := ConnectionRequestMessage("bob@example.com", data)
	require.NoError(t, err)
	assert.Equal(t, "<alice> sent you a connection request", req.Subject)
	assert.Contains(t, req.HTML, "&lt;alice&gt;")
	assert.Contains(t, req.HTML, `href="https://connect.example.edu/notifications"`)

	acc, err := ConnectionAcceptedMessage("bob@example.com", data)
	require.NoError(t, err)
	assert.Equal(t, "<alice> accepted your connection request", acc.Subject)
	assert.Contains(t, acc.HTML, `href="https://connect.example.edu/profile/alice"`)
	assert.Contains(t, acc.Text, "https://connect.example.edu/profile/alice")
}
