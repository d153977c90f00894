package database

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pahla_backend/internals/configs"
	categoryModel "pahla_backend/internals/features/awards/categories/model"
	nominationModel "pahla_backend/internals/features/nominations/model"
	authModel "pahla_backend/internals/features/users/auth/model"
	"pahla_backend/internals/logger"
)

var DB *gorm.DB

func ConnectDB(cfg configs.DatabaseConfig) {
	log := logger.With("database")
	log.Info().Str("host", cfg.Host).Msg("connecting to PostgreSQL (Supabase)")

	// PreferSimpleProtocol keeps PgBouncer transaction pooling happy.
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:  configs.NewGormLogger(),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	DB = db
	log.Info().Msg("database connected")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		logger.With("database").Error().Err(err).Msg("pool tune")
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			logger.With("database").Warn().Err(err).Msg("warm-up ping")
		}
	}()
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&categoryModel.AwardCategoryModel{},
		&nominationModel.NominationModel{},
		&nominationModel.NominationDocumentModel{},
		&nominationModel.NominationStatusHistoryModel{},
		&authModel.AdminUserModel{},
		&authModel.RevokedTokenModel{},
	)
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
