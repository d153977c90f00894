package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pahla_backend/internals/features/nominations/model"
)

// NominationStore is the row store behind the wizard, review and reminders.
type NominationStore interface {
	Create(ctx context.Context, m *model.NominationModel) error
	Upsert(ctx context.Context, m *model.NominationModel, updateColumns []string) (*model.NominationModel, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.NominationModel, error)
	FindResumable(ctx context.Context, id uuid.UUID) (*model.NominationModel, error)
	UpdateColumns(ctx context.Context, id uuid.UUID, cols map[string]any) error
	ChangeStatus(ctx context.Context, in ChangeStatusInput) (*model.NominationModel, model.NominationStatus, error)
	List(ctx context.Context, f ListFilter) ([]model.NominationModel, int64, error)
	ListByStatuses(ctx context.Context, statuses []model.NominationStatus) ([]model.NominationModel, error)
	History(ctx context.Context, id uuid.UUID) ([]model.NominationStatusHistoryModel, error)
}

type ListFilter struct {
	Statuses      []model.NominationStatus
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
	Query         string
	Offset        int
	Limit         int
}

type ChangeStatusInput struct {
	ID        uuid.UUID
	From      []model.NominationStatus
	To        model.NominationStatus
	ChangedBy string
	Notes     *string
	// Extra columns written in the same UPDATE.
	Extra map[string]any
}

type GormNominationStore struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewNominationStore(db *gorm.DB) *GormNominationStore {
	return &GormNominationStore{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *GormNominationStore) Create(ctx context.Context, m *model.NominationModel) error {
	now := s.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	return translate(s.DB.WithContext(ctx).Create(m).Error)
}

// Upsert inserts m or, when its id already exists, overwrites updateColumns,
// then re-reads the full row.
func (s *GormNominationStore) Upsert(ctx context.Context, m *model.NominationModel, updateColumns []string) (*model.NominationModel, error) {
	now := s.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	cols := append([]string(nil), updateColumns...)
	cols = append(cols, "updated_at")
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(m).Error
	if err != nil {
		return nil, translate(err)
	}
	return s.FindByID(ctx, m.ID)
}

func (s *GormNominationStore) FindByID(ctx context.Context, id uuid.UUID) (*model.NominationModel, error) {
	var m model.NominationModel
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// FindResumable only returns draft or incomplete rows.
func (s *GormNominationStore) FindResumable(ctx context.Context, id uuid.UUID) (*model.NominationModel, error) {
	var m model.NominationModel
	err := s.DB.WithContext(ctx).
		Where("id = ? AND status IN ?", id, model.ResumableStatuses).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// UpdateColumns writes cols and bumps updated_at.
func (s *GormNominationStore) UpdateColumns(ctx context.Context, id uuid.UUID, cols map[string]any) error {
	upd := make(map[string]any, len(cols)+1)
	for k, v := range cols {
		upd[k] = v
	}
	upd["updated_at"] = s.Now()

	res := s.DB.WithContext(ctx).Model(&model.NominationModel{}).Where("id = ?", id).Updates(upd)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ChangeStatus moves a row from one of in.From to in.To and appends a
// history row, in one transaction. Returns the updated row and the old status.
func (s *GormNominationStore) ChangeStatus(ctx context.Context, in ChangeStatusInput) (*model.NominationModel, model.NominationStatus, error) {
	var (
		out *model.NominationModel
		old model.NominationStatus
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur model.NominationModel
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Where("id = ?", in.ID).First(&cur).Error; err != nil {
			return translate(err)
		}
		old = cur.Status

		allowed := len(in.From) == 0
		for _, f := range in.From {
			if f == cur.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			return &StatusConflictError{Current: cur.Status}
		}

		now := s.Now()
		upd := map[string]any{"status": in.To, "updated_at": now}
		for k, v := range in.Extra {
			upd[k] = v
		}
		if err := tx.Model(&model.NominationModel{}).Where("id = ?", in.ID).Updates(upd).Error; err != nil {
			return translate(err)
		}

		h := model.NominationStatusHistoryModel{
			NominationID: in.ID,
			OldStatus:    old,
			NewStatus:    in.To,
			ChangedBy:    in.ChangedBy,
			Notes:        in.Notes,
			CreatedAt:    now,
		}
		if err := tx.Create(&h).Error; err != nil {
			return translate(err)
		}

		var fresh model.NominationModel
		if err := tx.Where("id = ?", in.ID).First(&fresh).Error; err != nil {
			return translate(err)
		}
		out = &fresh
		return nil
	})
	if err != nil {
		return nil, old, err
	}
	return out, old, nil
}

func (s *GormNominationStore) List(ctx context.Context, f ListFilter) ([]model.NominationModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.NominationModel{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedBefore != nil {
		q = q.Where("created_at < ?", *f.CreatedBefore)
	}
	if needle := strings.ToLower(strings.TrimSpace(f.Query)); needle != "" {
		like := "%" + escapeLike(needle) + "%"
		q = q.Where(
			"LOWER(CAST(id AS TEXT)) LIKE ? ESCAPE '\\' OR LOWER(nominee_name) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(nominee_email, '')) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(award_category_id, '')) LIKE ? ESCAPE '\\'",
			like, like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.NominationModel
	q = q.Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *GormNominationStore) ListByStatuses(ctx context.Context, statuses []model.NominationStatus) ([]model.NominationModel, error) {
	var rows []model.NominationModel
	err := s.DB.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (s *GormNominationStore) History(ctx context.Context, id uuid.UUID) ([]model.NominationStatusHistoryModel, error) {
	var rows []model.NominationStatusHistoryModel
	err := s.DB.WithContext(ctx).
		Where("nomination_id = ?", id).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
