package reminders

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"pahla_backend/internals/features/nominations/model"
	"pahla_backend/internals/features/nominations/repository"
	"pahla_backend/internals/helpers/mailer"
	"pahla_backend/internals/logger"
)

var ErrNoTarget = errors.New("nomination_id or send_to_all is required")

const (
	ReasonNoEmail      = "no nominator email found"
	ReasonNotResumable = "nomination is not awaiting completion"
)

type Request struct {
	NominationID *uuid.UUID `json:"nomination_id"`
	SendToAll    bool       `json:"send_to_all"`
	SiteURL      string     `json:"site_url"`
}

type RecipientResult struct {
	NominationID uuid.UUID `json:"nomination_id"`
	Email        string    `json:"email,omitempty"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
}

type Result struct {
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	Results      []RecipientResult `json:"results"`
}

// Dispatcher emails continuation links to nominators of unfinished nominations.
type Dispatcher struct {
	Store       repository.NominationStore
	Mailer      mailer.Mailer
	Renderer    *mailer.Renderer
	SiteURL     string
	Concurrency int
	Now         func() time.Time
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

// Dispatch sends one reminder per eligible nomination. Failures are counted
// per recipient and never retried.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	var targets []model.NominationModel
	switch {
	case req.NominationID != nil:
		row, err := d.Store.FindByID(ctx, *req.NominationID)
		if err != nil {
			return nil, err
		}
		targets = []model.NominationModel{*row}
	case req.SendToAll:
		rows, err := d.Store.ListByStatuses(ctx, model.ResumableStatuses)
		if err != nil {
			return nil, fmt.Errorf("list unfinished nominations: %w", err)
		}
		targets = rows
	default:
		return nil, ErrNoTarget
	}

	site := strings.TrimRight(strings.TrimSpace(req.SiteURL), "/")
	if site == "" {
		site = strings.TrimRight(d.SiteURL, "/")
	}

	results := make([]RecipientResult, len(targets))
	var g errgroup.Group
	limit := d.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)
	for i := range targets {
		i := i
		g.Go(func() error {
			results[i] = d.send(ctx, &targets[i], site)
			return nil
		})
	}
	_ = g.Wait()

	out := &Result{Results: results}
	for _, r := range results {
		if r.Success {
			out.SuccessCount++
		} else {
			out.FailureCount++
		}
	}
	logger.With("reminders").Info().
		Int("success", out.SuccessCount).
		Int("failure", out.FailureCount).
		Msg("reminder dispatch finished")
	return out, nil
}

func (d *Dispatcher) send(ctx context.Context, row *model.NominationModel, site string) RecipientResult {
	res := RecipientResult{NominationID: row.ID}
	if !row.Status.Resumable() {
		res.Error = ReasonNotResumable
		return res
	}

	secs, err := row.DecodeSections()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	email := NominatorEmail(row, secs)
	if email == "" {
		res.Error = ReasonNoEmail
		return res
	}
	res.Email = email

	renderer := d.Renderer
	if renderer == nil {
		renderer = mailer.NewRenderer()
	}
	html, err := renderer.Render(mailer.TemplateReminder, mailer.ReminderData{
		NominatorName: nominatorName(row, secs),
		NomineeName:   row.NomineeName,
		ContinueURL:   ContinueURL(site, row.ID),
		SiteURL:       site,
	})
	if err != nil {
		res.Error = err.Error()
		return res
	}

	err = d.Mailer.Send(ctx, mailer.Message{
		To:      []string{email},
		Subject: "Complete your PAHLA nomination",
		HTML:    html,
	})
	if err != nil {
		logger.With("reminders").Warn().Err(err).Str("nomination_id", row.ID.String()).Msg("reminder not sent")
		res.Error = err.Error()
		return res
	}
	res.Success = true

	// the email went out; a failed counter bump is only logged
	if err := d.Store.UpdateColumns(ctx, row.ID, map[string]any{
		"reminder_count":   gorm.Expr("reminder_count + ?", 1),
		"last_reminder_at": d.now(),
	}); err != nil {
		logger.With("reminders").Error().Err(err).Str("nomination_id", row.ID.String()).Msg("record reminder")
	}
	return res
}

// NominatorEmail picks the contact address: section A quick-contact first,
// then section D, then the denormalised column.
func NominatorEmail(row *model.NominationModel, secs model.Sections) string {
	if secs.A != nil {
		if e := strings.TrimSpace(secs.A.NominatorEmail); e != "" {
			return e
		}
	}
	if secs.D != nil {
		if e := strings.TrimSpace(secs.D.NominatorEmail); e != "" {
			return e
		}
	}
	if row.NominatorEmail != nil {
		return strings.TrimSpace(*row.NominatorEmail)
	}
	return ""
}

func nominatorName(row *model.NominationModel, secs model.Sections) string {
	switch {
	case secs.D != nil && secs.D.NominatorFullName != "":
		return secs.D.NominatorFullName
	case secs.A != nil && secs.A.NominatorFullName != "":
		return secs.A.NominatorFullName
	case row.NominatorName != nil:
		return *row.NominatorName
	}
	return ""
}

// ContinueURL is the link that reopens a nomination in the wizard.
func ContinueURL(site string, id uuid.UUID) string {
	return strings.TrimRight(site, "/") + "/nomination-form?continue=" + url.QueryEscape(id.String())
}
