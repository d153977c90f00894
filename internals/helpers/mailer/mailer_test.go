package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"pahla_backend/internals/configs"
)

func TestRendererReminder(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render(TemplateReminder, ReminderData{
		NominatorName: "Ama",
		NomineeName:   "Jane Doe",
		ContinueURL:   "https://pahla.org/nomination-form?continue=abc",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Dear Ama")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, `href="https://pahla.org/nomination-form?continue=abc"`)
}

func TestRendererConfirmation(t *testing.T) {
	out, err := NewRenderer().Render(TemplateNominationConfirmation, ConfirmationData{
		NomineeName:  "Jane Doe",
		NominationID: "n-1",
		SubmittedAt:  "2025-01-02",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Dear Nominator")
	assert.Contains(t, out, "n-1")
}

func TestRendererUnknownTemplate(t *testing.T) {
	_, err := NewRenderer().Render("missing", nil)
	assert.Error(t, err)
}

func TestSMTPMailerBuildsMultipartMessage(t *testing.T) {
	m := NewSMTPMailer(configs.SMTPConfig{Host: "smtp.test", Port: 2525, From: "no-reply@pahla.org", FromName: "PAHLA"})

	var sent *mail.Msg
	m.send = func(ctx context.Context, msg *mail.Msg) error {
		sent = msg
		return nil
	}

	err := m.Send(context.Background(), Message{
		To:      []string{"a@example.com"},
		BCC:     []string{"audit@example.com"},
		Subject: "Hello",
		HTML:    "<p>hi</p>",
		Text:    "hi",
		Attachments: []Attachment{
			{FileName: "note.txt", ContentType: "text/plain", Content: []byte("attached")},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, sent)

	rcpt, err := sent.GetRecipients()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a@example.com", "audit@example.com"}, rcpt)

	var buf bytes.Buffer
	_, err = sent.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "multipart/mixed")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "note.txt")
	assert.Contains(t, raw, "no-reply@pahla.org")
}

func TestSMTPMailerRejectsBadAddress(t *testing.T) {
	m := NewSMTPMailer(configs.SMTPConfig{Host: "smtp.test", Port: 25, From: "x@pahla.org"})
	called := false
	m.send = func(context.Context, *mail.Msg) error { called = true; return nil }

	err := m.Send(context.Background(), Message{To: []string{"not an address"}, Subject: "s"})
	require.Error(t, err)
	assert.False(t, called)
}

func TestSMTPMailerPropagatesFailure(t *testing.T) {
	m := NewSMTPMailer(configs.SMTPConfig{Host: "smtp.test", Port: 25, From: "x@pahla.org"})
	m.send = func(context.Context, *mail.Msg) error { return errors.New("refused") }

	err := m.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	m := NewSMTPMailer(configs.SMTPConfig{Host: "smtp.test", Port: 25, From: "x@pahla.org"})
	called := false
	m.send = func(context.Context, *mail.Msg) error { called = true; return nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Send(ctx, Message{To: []string{"a@example.com"}, Subject: "s"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSMTPMailerPassesContextToTransport(t *testing.T) {
	m := NewSMTPMailer(configs.SMTPConfig{Host: "smtp.test", Port: 25, From: "x@pahla.org"})
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "run-1")

	var got any
	m.send = func(ctx context.Context, _ *mail.Msg) error {
		got = ctx.Value(key{})
		return ctx.Err()
	}
	require.NoError(t, m.Send(ctx, Message{To: []string{"a@example.com"}, Subject: "s"}))
	assert.Equal(t, "run-1", got)
}

func TestMessageRequiresRecipient(t *testing.T) {
	assert.ErrorIs(t, LogMailer{}.Send(context.Background(), Message{Subject: "s"}), ErrNoRecipient)

	rec := &Recorder{}
	require.NoError(t, rec.Send(context.Background(), Message{To: []string{"x@y.z"}, Subject: "s"}))
	assert.Len(t, rec.Sent(), 1)
}

func TestNewFallsBackToLogMailer(t *testing.T) {
	_, ok := New(configs.SMTPConfig{}).(LogMailer)
	assert.True(t, ok)
}
