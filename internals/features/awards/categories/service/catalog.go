package service

import (
	"sort"

	"pahla_backend/internals/features/awards/categories/model"
)

// Catalog is an immutable, ordered view of the award categories.
type Catalog struct {
	ordered []model.AwardCategoryModel
	byID    map[string]model.AwardCategoryModel
}

func NewCatalog(cats []model.AwardCategoryModel) *Catalog {
	ordered := append([]model.AwardCategoryModel(nil), cats...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AwardCategorySortOrder < ordered[j].AwardCategorySortOrder
	})
	byID := make(map[string]model.AwardCategoryModel, len(ordered))
	for _, c := range ordered {
		byID[c.AwardCategoryID] = c
	}
	return &Catalog{ordered: ordered, byID: byID}
}

func (c *Catalog) Lookup(id string) (model.AwardCategoryModel, bool) {
	if c == nil {
		return model.AwardCategoryModel{}, false
	}
	cat, ok := c.byID[id]
	return cat, ok
}

func (c *Catalog) Known(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// Offers reports whether award belongs to category id.
func (c *Catalog) Offers(id, award string) bool {
	cat, ok := c.Lookup(id)
	return ok && cat.HasAward(award)
}

func (c *Catalog) All() []model.AwardCategoryModel {
	if c == nil {
		return nil
	}
	return append([]model.AwardCategoryModel(nil), c.ordered...)
}
