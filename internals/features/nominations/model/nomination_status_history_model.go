package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChangedByNominator marks history rows written by the wizard itself.
const ChangedByNominator = "nominator"

type NominationStatusHistoryModel struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	NominationID uuid.UUID        `gorm:"column:nomination_id;type:uuid;not null;index" json:"nomination_id"`
	OldStatus    NominationStatus `gorm:"column:old_status;type:varchar(20);not null" json:"old_status"`
	NewStatus    NominationStatus `gorm:"column:new_status;type:varchar(20);not null" json:"new_status"`
	ChangedBy    string           `gorm:"column:changed_by;type:varchar(64);not null" json:"changed_by"`
	Notes        *string          `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt    time.Time        `gorm:"column:created_at;not null" json:"created_at"`

	Nomination *NominationModel `gorm:"foreignKey:NominationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (NominationStatusHistoryModel) TableName() string { return "nomination_status_history" }

func (m *NominationStatusHistoryModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}
