package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pahla_backend/internals/features/nominations/attachments"
	"pahla_backend/internals/features/nominations/model"
	"pahla_backend/internals/features/nominations/reminders"
	"pahla_backend/internals/features/nominations/repository"
	"pahla_backend/internals/logger"
)

var (
	ErrInvalidTransition = errors.New("that status change is not allowed from the current status")
	ErrUnknownAction     = errors.New("action must be approve, reject, mark_incomplete or complete")
	ErrInvalidStatus     = errors.New("unknown status filter")
	ErrInvalidRange      = errors.New("date_from must not be after date_to")
)

type Action string

const (
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionMarkIncomplete Action = "mark_incomplete"
	ActionComplete       Action = "complete"
)

type transition struct {
	from []model.NominationStatus
	to   model.NominationStatus
}

var reviewed = []model.NominationStatus{model.StatusSubmitted, model.StatusApproved, model.StatusRejected}

var transitions = map[Action]transition{
	ActionApprove:        {from: reviewed, to: model.StatusApproved},
	ActionReject:         {from: reviewed, to: model.StatusRejected},
	ActionMarkIncomplete: {from: []model.NominationStatus{model.StatusDraft, model.StatusSubmitted}, to: model.StatusIncomplete},
	ActionComplete:       {from: []model.NominationStatus{model.StatusDraft, model.StatusIncomplete}, to: model.StatusSubmitted},
}

// Target returns the status an action leads to.
func (a Action) Target() (model.NominationStatus, bool) {
	t, ok := transitions[a]
	return t.to, ok
}

// Filter narrows the admin list. Dates are whole UTC days, both inclusive.
type Filter struct {
	Status  string
	From    *time.Time
	To      *time.Time
	Query   string
	Page    int
	PerPage int
}

// Detail is everything the review screen shows for one nomination.
type Detail struct {
	Nomination model.NominationModel                `json:"nomination"`
	Sections   model.Sections                       `json:"sections"`
	Documents  []attachments.Document               `json:"documents"`
	History    []model.NominationStatusHistoryModel `json:"history"`
}

type Service struct {
	Store       repository.NominationStore
	Attachments *attachments.Manager
	Reminders   *reminders.Dispatcher
	Now         func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// List pages through nominations, newest first. No rows is not an error.
func (s *Service) List(ctx context.Context, f Filter) ([]model.NominationModel, int64, error) {
	lf := repository.ListFilter{Query: f.Query}

	switch status := strings.ToLower(strings.TrimSpace(f.Status)); status {
	case "", "all":
	default:
		st := model.NominationStatus(status)
		if !st.Valid() {
			return nil, 0, ErrInvalidStatus
		}
		lf.Statuses = []model.NominationStatus{st}
	}

	if f.From != nil {
		from := startOfDay(*f.From)
		lf.CreatedFrom = &from
	}
	if f.To != nil {
		before := startOfDay(*f.To).AddDate(0, 0, 1)
		lf.CreatedBefore = &before
	}
	if lf.CreatedFrom != nil && lf.CreatedBefore != nil && !lf.CreatedFrom.Before(*lf.CreatedBefore) {
		return nil, 0, ErrInvalidRange
	}

	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		lf.Limit = f.PerPage
		lf.Offset = (page - 1) * f.PerPage
	}
	return s.Store.List(ctx, lf)
}

// EmptyListMessage is shown when a filtered list has no rows.
func EmptyListMessage(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" || status == "all" {
		return "No nominations found"
	}
	return fmt.Sprintf("No %s nominations found", status)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	row, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	secs, err := row.DecodeSections()
	if err != nil {
		return nil, err
	}
	docs, err := s.Attachments.List(ctx, id, "", "")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	hist, err := s.Store.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return &Detail{Nomination: *row, Sections: secs, Documents: docs, History: hist}, nil
}

// Transition applies an admin action and records it in the history.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, action Action, adminID string, notes *string) (*model.NominationModel, error) {
	t, ok := transitions[action]
	if !ok {
		return nil, ErrUnknownAction
	}

	extra := map[string]any{}
	if notes != nil && strings.TrimSpace(*notes) != "" {
		extra["admin_notes"] = strings.TrimSpace(*notes)
	}
	if action == ActionComplete {
		extra["submitted_at"] = s.now()
	}

	row, old, err := s.Store.ChangeStatus(ctx, repository.ChangeStatusInput{
		ID:        id,
		From:      t.from,
		To:        t.to,
		ChangedBy: adminID,
		Notes:     notes,
		Extra:     extra,
	})
	var conflict *repository.StatusConflictError
	if errors.As(err, &conflict) {
		return nil, fmt.Errorf("%w: %s cannot %s", ErrInvalidTransition, conflict.Current, action)
	}
	if err != nil {
		return nil, err
	}

	logger.With("review").Info().
		Str("nomination_id", id.String()).
		Str("from", string(old)).
		Str("to", string(t.to)).
		Str("admin", adminID).
		Msg("status changed")
	return row, nil
}

func (s *Service) History(ctx context.Context, id uuid.UUID) ([]model.NominationStatusHistoryModel, error) {
	if _, err := s.Store.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.Store.History(ctx, id)
}

// SendReminders triggers the dispatcher for one nomination or all of them.
func (s *Service) SendReminders(ctx context.Context, req reminders.Request) (*reminders.Result, error) {
	return s.Reminders.Dispatch(ctx, req)
}

// DeleteDocument removes any document regardless of uploader.
func (s *Service) DeleteDocument(ctx context.Context, docID uuid.UUID, confirmed bool) error {
	return s.Attachments.Delete(ctx, attachments.DeleteRequest{DocumentID: docID, Confirmed: confirmed})
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
