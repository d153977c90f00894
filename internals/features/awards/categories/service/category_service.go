package service

import (
	"context"
	"errors"
	"time"

	"github.com/karlseguin/ccache"
	"gorm.io/gorm"

	"pahla_backend/internals/features/awards/categories/model"
)

var ErrCategoryNotFound = errors.New("award category not found")

const catalogKey = "award-catalog"

// CategoryService reads award_categories and caches the catalog in memory.
type CategoryService struct {
	DB    *gorm.DB
	TTL   time.Duration
	cache *ccache.Cache
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{
		DB:    db,
		TTL:   5 * time.Minute,
		cache: ccache.New(ccache.Configure().MaxSize(16).ItemsToPrune(1)),
	}
}

func (s *CategoryService) Catalog(ctx context.Context) (*Catalog, error) {
	item, err := s.cache.Fetch(catalogKey, s.TTL, func() (interface{}, error) {
		var rows []model.AwardCategoryModel
		if err := s.DB.WithContext(ctx).
			Order("award_category_sort_order ASC, award_category_id ASC").
			Find(&rows).Error; err != nil {
			return nil, err
		}
		return NewCatalog(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return item.Value().(*Catalog), nil
}

// Invalidate drops the cached catalog, e.g. after seeding.
func (s *CategoryService) Invalidate() {
	s.cache.Delete(catalogKey)
}

func (s *CategoryService) List(ctx context.Context) ([]model.AwardCategoryModel, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.All(), nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (model.AwardCategoryModel, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return model.AwardCategoryModel{}, err
	}
	c, ok := cat.Lookup(id)
	if !ok {
		return model.AwardCategoryModel{}, ErrCategoryNotFound
	}
	return c, nil
}
