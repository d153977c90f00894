package dto

import (
	"time"

	"github.com/google/uuid"

	"pahla_backend/internals/features/nominations/attachments"
	"pahla_backend/internals/features/nominations/model"
	"pahla_backend/internals/features/nominations/wizard"
)

/* ===============================
   Wizard
=================================*/

type WizardSessionResponse struct {
	SessionID string       `json:"session_id"`
	State     wizard.State `json:"state"`
}

type StepFormResponse struct {
	Step  int           `json:"step"`
	Form  model.Section `json:"form"`
	State wizard.State  `json:"state"`
}

type StepSubmitResponse struct {
	Result *wizard.StepResult `json:"result"`
	State  wizard.State       `json:"state"`
}

type DocumentListResponse struct {
	Documents []attachments.Document `json:"documents"`
	Remaining map[model.FileType]int `json:"remaining"`
}

/* ===============================
   Admin
=================================*/

// ListNominationsQuery binds GET /api/a/nominations.
type ListNominationsQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=all draft incomplete submitted approved rejected"`
	DateFrom string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Q        string `query:"q" validate:"omitempty,max=200"`
}

type StatusChangeRequest struct {
	Action string  `json:"action" validate:"required,oneof=approve reject mark_incomplete complete"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

type ReminderRequest struct {
	NominationID *uuid.UUID `json:"nomination_id"`
	SendToAll    bool       `json:"send_to_all"`
	SiteURL      string     `json:"site_url" validate:"omitempty,url"`
}

// NominationSummary is one row of the admin list.
type NominationSummary struct {
	ID              uuid.UUID              `json:"id"`
	NomineeName     string                 `json:"nominee_name"`
	NomineeEmail    *string                `json:"nominee_email,omitempty"`
	NomineeType     *string                `json:"nominee_type,omitempty"`
	AwardCategoryID *string                `json:"award_category_id,omitempty"`
	SpecificAward   *string                `json:"specific_award,omitempty"`
	Status          model.NominationStatus `json:"status"`
	NominatorName   *string                `json:"nominator_name,omitempty"`
	NominatorEmail  *string                `json:"nominator_email,omitempty"`
	Sections        []model.SectionKey     `json:"sections"`
	ReminderCount   int                    `json:"reminder_count"`
	LastReminderAt  *time.Time             `json:"last_reminder_at,omitempty"`
	SubmittedAt     *time.Time             `json:"submitted_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func FromNomination(m model.NominationModel) NominationSummary {
	present := make([]model.SectionKey, 0, len(model.SectionKeys))
	for _, k := range model.SectionKeys {
		if raw := *m.Column(k); len(raw) > 0 && string(raw) != "null" {
			present = append(present, k)
		}
	}
	return NominationSummary{
		ID:              m.ID,
		NomineeName:     m.NomineeName,
		NomineeEmail:    m.NomineeEmail,
		NomineeType:     m.NomineeType,
		AwardCategoryID: m.AwardCategoryID,
		SpecificAward:   m.SpecificAward,
		Status:          m.Status,
		NominatorName:   m.NominatorName,
		NominatorEmail:  m.NominatorEmail,
		Sections:        present,
		ReminderCount:   m.ReminderCount,
		LastReminderAt:  m.LastReminderAt,
		SubmittedAt:     m.SubmittedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func FromNominations(rows []model.NominationModel) []NominationSummary {
	out := make([]NominationSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromNomination(r))
	}
	return out
}
