package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pahla_backend/internals/features/nominations/model"
)

type DocumentStore interface {
	Create(ctx context.Context, d *model.NominationDocumentModel) error
	CountByType(ctx context.Context, nominationID uuid.UUID) (map[model.FileType]int64, error)
	List(ctx context.Context, f DocumentFilter) ([]model.NominationDocumentModel, error)
	Find(ctx context.Context, id uuid.UUID) (*model.NominationDocumentModel, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type DocumentFilter struct {
	NominationID uuid.UUID
	// Empty means any uploader (admin view).
	UploaderID string
	FileType   model.FileType
}

type GormDocumentStore struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewDocumentStore(db *gorm.DB) *GormDocumentStore {
	return &GormDocumentStore{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *GormDocumentStore) Create(ctx context.Context, d *model.NominationDocumentModel) error {
	if d.UploadedAt.IsZero() {
		d.UploadedAt = s.Now()
	}
	return translate(s.DB.WithContext(ctx).Create(d).Error)
}

func (s *GormDocumentStore) CountByType(ctx context.Context, nominationID uuid.UUID) (map[model.FileType]int64, error) {
	var rows []struct {
		FileType model.FileType
		N        int64
	}
	err := s.DB.WithContext(ctx).Model(&model.NominationDocumentModel{}).
		Select("file_type, COUNT(*) AS n").
		Where("nomination_id = ?", nominationID).
		Group("file_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.FileType]int64, len(rows))
	for _, r := range rows {
		out[r.FileType] = r.N
	}
	return out, nil
}

func (s *GormDocumentStore) List(ctx context.Context, f DocumentFilter) ([]model.NominationDocumentModel, error) {
	q := s.DB.WithContext(ctx).Where("nomination_id = ?", f.NominationID)
	if f.UploaderID != "" {
		q = q.Where("uploader_id = ?", f.UploaderID)
	}
	if f.FileType != "" {
		q = q.Where("file_type = ?", f.FileType)
	}
	var rows []model.NominationDocumentModel
	err := q.Order("uploaded_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (s *GormDocumentStore) Find(ctx context.Context, id uuid.UUID) (*model.NominationDocumentModel, error) {
	var d model.NominationDocumentModel
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *GormDocumentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.NominationDocumentModel{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
