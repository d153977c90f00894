package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RevokedTokenModel blocks an access token after logout until it expires.
// Only an HMAC of the token is stored.
type RevokedTokenModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TokenHash string    `gorm:"column:token_hash;type:varchar(64);uniqueIndex;not null" json:"-"`
	AdminID   uuid.UUID `gorm:"column:admin_id;type:uuid;not null;index" json:"admin_id"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RevokedTokenModel) TableName() string { return "revoked_tokens" }

func (m *RevokedTokenModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
