package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"pahla_backend/internals/configs"
)

const smtpTimeout = 15 * time.Second

type SMTPMailer struct {
	cfg  configs.SMTPConfig
	send func(ctx context.Context, msg *mail.Msg) error
}

func NewSMTPMailer(cfg configs.SMTPConfig) *SMTPMailer {
	m := &SMTPMailer{cfg: cfg}
	m.send = m.dialAndSend
	return m
}

// New returns an SMTP mailer when SMTP_HOST is set, otherwise a LogMailer.
func New(cfg configs.SMTPConfig) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := m.build(msg)
	if err != nil {
		return err
	}
	if err := m.send(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) build(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	if len(msg.CC) > 0 {
		if err := out.Cc(msg.CC...); err != nil {
			return nil, fmt.Errorf("cc address: %w", err)
		}
	}
	if len(msg.BCC) > 0 {
		if err := out.Bcc(msg.BCC...); err != nil {
			return nil, fmt.Errorf("bcc address: %w", err)
		}
	}
	if msg.ReplyTo != "" {
		if err := out.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to address: %w", err)
		}
	}
	out.Subject(msg.Subject)
	out.SetDate()
	out.SetMessageID()

	text := msg.Text
	if text == "" {
		text = "This message is best viewed in an HTML capable email client."
	}
	out.SetBodyString(mail.TypeTextPlain, text)
	if msg.HTML != "" {
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		if err := out.AttachReader(a.FileName, bytes.NewReader(a.Content), mail.WithFileContentType(mail.ContentType(ct))); err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.FileName, err)
		}
	}
	return out, nil
}

// dialAndSend opens one connection per message. The dial and the SMTP
// conversation are bounded by ctx and smtpTimeout.
func (m *SMTPMailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	timeout := smtpTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left > 0 && left < timeout {
			timeout = left
		}
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
