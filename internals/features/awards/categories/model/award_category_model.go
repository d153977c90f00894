package model

import (
	"time"

	"github.com/lib/pq"
)

// AwardCategoryModel is read-only reference data for the nomination wizard.
// The id is a stable slug (e.g. "leadership_legacy") used by section B.
type AwardCategoryModel struct {
	AwardCategoryID           string         `gorm:"column:award_category_id;type:varchar(80);primaryKey" json:"award_category_id"`
	AwardCategoryTitle        string         `gorm:"column:award_category_title;type:varchar(160);not null" json:"award_category_title"`
	AwardCategoryClusterTitle string         `gorm:"column:award_category_cluster_title;type:varchar(160)" json:"award_category_cluster_title"`
	AwardCategoryAwards       pq.StringArray `gorm:"column:award_category_awards;type:text[]" json:"award_category_awards"`
	AwardCategorySortOrder    int            `gorm:"column:award_category_sort_order;not null;default:0" json:"award_category_sort_order"`

	AwardCategoryCreatedAt time.Time `gorm:"column:award_category_created_at;autoCreateTime" json:"award_category_created_at"`
	AwardCategoryUpdatedAt time.Time `gorm:"column:award_category_updated_at;autoUpdateTime" json:"award_category_updated_at"`
}

func (AwardCategoryModel) TableName() string {
	return "award_categories"
}

// HasAward reports whether award is offered by this category.
func (m AwardCategoryModel) HasAward(award string) bool {
	for _, a := range m.AwardCategoryAwards {
		if a == award {
			return true
		}
	}
	return false
}
