package mailer

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewInvitationMessage(t *testing.T) {
	msg, err := NewInvitationMessage("http://localhost:3000/", Invitation{
		To:         "bob@example.com",
		SenderName: "Alice",
		BoardName:  "<script>alert(1)</script>",
		Role:       "EDITOR",
		Token:      "a.b+c",
		ExpiresAt:  "2025-01-02 12:00 UTC",
	})
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Alice")
	assert.Contains(t, msg.HTML, `href="http://localhost:3000/invite?invite_hash=a.b%2Bc"`)
	// Название доски экранируется
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestInvitationLink(t *testing.T) {
	assert.Equal(t, "https://app.example.com/invite?invite_hash=tok", InvitationLink("https://app.example.com", "tok"))
}

func TestNewMessage(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m, err := newMessage("noreply@example.com", Message{
		To:      "bob@example.com",
		Subject: "Привет",
		HTML:    "<p>hi</p>",
	}, now)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "From: <noreply@example.com>")
	assert.Contains(t, raw, "To: <bob@example.com>")
	assert.Contains(t, raw, "Subject: =?UTF-8?q?")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "<p>hi</p>")
}

func TestNewMessage_InvalidRecipient(t *testing.T) {
	_, err := newMessage("noreply@example.com", Message{To: "not an address"}, time.Now())
	assert.Error(t, err)
}

func TestSMTPSender_Unreachable(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "noreply@example.com"}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := sender.Send(ctx, Message{To: "bob@example.com", Subject: "s", HTML: "b"})

	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	err := sender.Send(context.Background(), Message{To: "bob@example.com", Subject: "s", HTML: "b"})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "bob@example.com", logs.All()[0].ContextMap()["to"])
}
