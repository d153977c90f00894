package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NominationStatus string

const (
	StatusDraft      NominationStatus = "draft"
	StatusIncomplete NominationStatus = "incomplete"
	StatusSubmitted  NominationStatus = "submitted"
	StatusApproved   NominationStatus = "approved"
	StatusRejected   NominationStatus = "rejected"
)

// ResumableStatuses are the statuses a continuation link may reopen.
var ResumableStatuses = []NominationStatus{StatusDraft, StatusIncomplete}

func (s NominationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusIncomplete, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s NominationStatus) Resumable() bool {
	return s == StatusDraft || s == StatusIncomplete
}

type NomineeType string

const (
	NomineeIndividual   NomineeType = "individual"
	NomineeOrganization NomineeType = "organization"
	NomineeInstitution  NomineeType = "institution"
)

// NominationModel is one nomination; each wizard section is a JSON column
// replaced wholesale on save.
type NominationModel struct {
	ID uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`

	NomineeName     string  `gorm:"column:nominee_name;type:varchar(200);not null;index" json:"nominee_name"`
	NomineeEmail    *string `gorm:"column:nominee_email;type:varchar(200)" json:"nominee_email,omitempty"`
	NomineeType     *string `gorm:"column:nominee_type;type:varchar(20)" json:"nominee_type,omitempty"`
	AwardCategoryID *string `gorm:"column:award_category_id;type:varchar(80);index" json:"award_category_id,omitempty"`
	SpecificAward   *string `gorm:"column:specific_award;type:varchar(120)" json:"specific_award,omitempty"`

	Status NominationStatus `gorm:"column:status;type:varchar(20);not null;default:'draft';index" json:"status"`

	FormSectionA datatypes.JSON `gorm:"column:form_section_a" json:"form_section_a,omitempty"`
	FormSectionB datatypes.JSON `gorm:"column:form_section_b" json:"form_section_b,omitempty"`
	FormSectionC datatypes.JSON `gorm:"column:form_section_c" json:"form_section_c,omitempty"`
	FormSectionD datatypes.JSON `gorm:"column:form_section_d" json:"form_section_d,omitempty"`
	FormSectionE datatypes.JSON `gorm:"column:form_section_e" json:"form_section_e,omitempty"`

	NominatorName        *string `gorm:"column:nominator_name;type:varchar(200)" json:"nominator_name,omitempty"`
	NominatorEmail       *string `gorm:"column:nominator_email;type:varchar(200);index" json:"nominator_email,omitempty"`
	SummaryOfAchievement *string `gorm:"column:summary_of_achievement;type:text" json:"summary_of_achievement,omitempty"`

	AdminNotes     *string    `gorm:"column:admin_notes;type:text" json:"admin_notes,omitempty"`
	ReminderCount  int        `gorm:"column:reminder_count;not null;default:0" json:"reminder_count"`
	LastReminderAt *time.Time `gorm:"column:last_reminder_at" json:"last_reminder_at,omitempty"`

	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (NominationModel) TableName() string { return "nominations" }

func (m *NominationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = StatusDraft
	}
	return nil
}

// Column returns the JSON column for key.
func (m *NominationModel) Column(key SectionKey) *datatypes.JSON {
	switch key {
	case KeyA:
		return &m.FormSectionA
	case KeyB:
		return &m.FormSectionB
	case KeyC:
		return &m.FormSectionC
	case KeyD:
		return &m.FormSectionD
	case KeyE:
		return &m.FormSectionE
	}
	return nil
}
