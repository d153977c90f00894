package mailer

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pahla_backend/internals/logger"
)

type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

type Message struct {
	To          []string
	Subject     string
	HTML        string
	Text        string
	CC          []string
	BCC         []string
	ReplyTo     string
	Attachments []Attachment
}

// Mailer is the outbound email boundary.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipient = errors.New("mailer: message has no recipient")

func (m Message) validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipient
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" {
			return ErrNoRecipient
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("mailer: subject is required")
	}
	return nil
}

// LogMailer only logs; used when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	logger.With("mailer").Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Int("attachments", len(msg.Attachments)).
		Msg("email not sent (log mailer)")
	return nil
}

// Recorder keeps sent messages in memory. FailFor makes sends to an address fail.
type Recorder struct {
	mu      sync.Mutex
	sent    []Message
	FailFor map[string]error
}

func (r *Recorder) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, to := range msg.To {
		if err, ok := r.FailFor[to]; ok {
			return err
		}
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}
