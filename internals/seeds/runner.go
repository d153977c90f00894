package seeds

import (
	"context"

	"gorm.io/gorm"

	"pahla_backend/internals/seeds/awards"
	"pahla_backend/internals/seeds/users"
)

// RunAllSeeds loads the award catalogue (from file when given, else the
// embedded copy) and the bootstrap admin.
func RunAllSeeds(ctx context.Context, db *gorm.DB, awardsFile string) error {
	var err error
	if awardsFile != "" {
		_, err = awards.SeedAwardCategoriesFromJSON(ctx, db, awardsFile)
	} else {
		_, err = awards.SeedAwardCategories(ctx, db, awards.DefaultAwardCategories)
	}
	if err != nil {
		return err
	}
	return users.SeedAdminFromEnv(ctx, db)
}
