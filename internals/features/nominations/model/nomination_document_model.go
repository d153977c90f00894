package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileType string

const (
	FileCVResume           FileType = "cv_resume"
	FilePhotoMedia         FileType = "photo_media"
	FileAdditionalDocument FileType = "additional_document"
)

// FileTypeLimits caps rows per nomination; a missing entry means unlimited.
var FileTypeLimits = map[FileType]int{
	FileCVResume:   1,
	FilePhotoMedia: 3,
}

func (f FileType) Valid() bool {
	switch f {
	case FileCVResume, FilePhotoMedia, FileAdditionalDocument:
		return true
	}
	return false
}

// Limit returns the per-nomination cap and whether one applies.
func (f FileType) Limit() (int, bool) {
	n, ok := FileTypeLimits[f]
	return n, ok
}

type NominationDocumentModel struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	NominationID uuid.UUID `gorm:"column:nomination_id;type:uuid;not null;index:idx_nomination_documents_nomination_type,priority:1" json:"nomination_id"`
	FileName     string    `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	StoragePath  string    `gorm:"column:storage_path;type:text;not null" json:"storage_path"`
	FileType     FileType  `gorm:"column:file_type;type:varchar(30);not null;index:idx_nomination_documents_nomination_type,priority:2" json:"file_type"`
	ContentType  string    `gorm:"column:content_type;type:varchar(120)" json:"content_type"`
	SizeBytes    int64     `gorm:"column:size_bytes;not null;default:0" json:"size_bytes"`
	UploaderID   string    `gorm:"column:uploader_id;type:varchar(64);not null;index" json:"uploader_id"`
	UploadedAt   time.Time `gorm:"column:uploaded_at;not null" json:"uploaded_at"`

	Nomination *NominationModel `gorm:"foreignKey:NominationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (NominationDocumentModel) TableName() string { return "nomination_documents" }

func (m *NominationDocumentModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.UploadedAt.IsZero() {
		m.UploadedAt = time.Now().UTC()
	}
	return nil
}
