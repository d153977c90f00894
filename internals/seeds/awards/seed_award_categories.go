package awards

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pahla_backend/internals/features/awards/categories/model"
	"pahla_backend/internals/logger"
)

//go:embed data_award_categories.json
var DefaultAwardCategories []byte

type awardCategorySeed struct {
	ID           string   `json:"award_category_id"`
	Title        string   `json:"award_category_title"`
	ClusterTitle string   `json:"award_category_cluster_title"`
	Awards       []string `json:"award_category_awards"`
	SortOrder    int      `json:"award_category_sort_order"`
}

// SeedAwardCategoriesFromJSON upserts every category in the file; titles and
// award lists are refreshed on conflict.
func SeedAwardCategoriesFromJSON(ctx context.Context, db *gorm.DB, filePath string) (int, error) {
	log := logger.With("seed")
	log.Info().Str("file", filePath).Msg("reading award categories")

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filePath, err)
	}
	return SeedAwardCategories(ctx, db, raw)
}

func SeedAwardCategories(ctx context.Context, db *gorm.DB, raw []byte) (int, error) {
	var seeds []awardCategorySeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return 0, fmt.Errorf("decode award categories: %w", err)
	}
	if len(seeds) == 0 {
		return 0, nil
	}

	rows := make([]model.AwardCategoryModel, 0, len(seeds))
	for _, s := range seeds {
		if s.ID == "" || s.Title == "" {
			return 0, fmt.Errorf("award category seed missing id or title: %+v", s)
		}
		rows = append(rows, model.AwardCategoryModel{
			AwardCategoryID:           s.ID,
			AwardCategoryTitle:        s.Title,
			AwardCategoryClusterTitle: s.ClusterTitle,
			AwardCategoryAwards:       s.Awards,
			AwardCategorySortOrder:    s.SortOrder,
		})
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "award_category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"award_category_title",
			"award_category_cluster_title",
			"award_category_awards",
			"award_category_sort_order",
			"award_category_updated_at",
		}),
	}).Create(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("upsert award categories: %w", err)
	}
	logger.With("seed").Info().Int("count", len(rows)).Msg("award categories seeded")
	return len(rows), nil
}
