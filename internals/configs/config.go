package configs

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"pahla_backend/internals/logger"
)

var (
	JWTSecret string
	SiteURL   string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	log := logger.With("config")
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Warn().Msg("no .env file found, using system environment")
		} else {
			log.Info().Msg(".env file loaded")
		}
	} else {
		log.Info().Msg("running in Railway, using system environment")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	SiteURL = strings.TrimRight(GetEnv("SITE_URL", "http://localhost:5173"), "/")

	if JWTSecret == "" {
		log.Error().Msg("JWT_SECRET is not set")
	} else {
		log.Info().Msg("JWT_SECRET loaded")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func GetEnvInt(key string, def int) int {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func GetEnvBool(key string, def bool) bool {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func GetEnvDuration(key string, def time.Duration) time.Duration {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// =======================
// TYPED CONFIG
// =======================

type Config struct {
	Port    string
	SiteURL string

	LogLevel  string
	LogFormat string

	DB       DatabaseConfig
	Storage  StorageConfig
	Sessions SessionConfig
	SMTP     SMTPConfig

	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins string

	// Cron spec for the automatic reminder run; empty disables it.
	ReminderCron        string
	ReminderConcurrency int
}

type DatabaseConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
}

type StorageConfig struct {
	// supabase | oss | s3
	Provider string
	Prefix   string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	S3PublicURL string

	OSSEndpoint      string
	OSSAccessKey     string
	OSSSecretKey     string
	OSSSecurityToken string
	OSSBucket        string
	OSSPublicBase    string

	WebPEnabled bool
	WebPQuality float32
	WebPMaxW    int
	WebPMaxH    int
}

type SessionConfig struct {
	// memory | redis
	Backend string
	TTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=pahla&options=-c statement_timeout=3000",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Load assembles the typed config from the environment. Call LoadEnv first.
func Load() *Config {
	return &Config{
		Port:      GetEnv("PORT", "3000"),
		SiteURL:   strings.TrimRight(GetEnv("SITE_URL", "http://localhost:5173"), "/"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "console"),
		DB: DatabaseConfig{
			User:     GetEnv("DB_USER"),
			Password: GetEnv("DB_PASSWORD"),
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "5432"),
			Name:     GetEnv("DB_NAME"),
			SSLMode:  GetEnv("DB_SSLMODE", "require"),
		},
		Storage: StorageConfig{
			Provider:       strings.ToLower(GetEnv("STORAGE_PROVIDER", "supabase")),
			Prefix:         GetEnv("STORAGE_PREFIX"),
			SupabaseURL:    strings.TrimRight(GetEnv("SUPABASE_PROJECT_URL"), "/"),
			SupabaseKey:    GetEnv("SUPABASE_SERVICE_ROLE_KEY"),
			SupabaseBucket: GetEnv("SUPABASE_BUCKET", "nomination-documents"),
			S3Endpoint:     GetEnv("S3_ENDPOINT"),
			S3Region:       GetEnv("S3_REGION", "us-east-1"),
			S3Bucket:       GetEnv("S3_BUCKET"),
			S3AccessKey:    GetEnv("S3_ACCESS_KEY"),
			S3SecretKey:    GetEnv("S3_SECRET_KEY"),
			S3UseSSL:       GetEnvBool("S3_USE_SSL", true),
			S3PublicURL:    GetEnv("S3_PUBLIC_BASE"),

			OSSEndpoint:      GetEnv("ALI_OSS_ENDPOINT"),
			OSSAccessKey:     GetEnv("ALI_OSS_ACCESS_KEY"),
			OSSSecretKey:     GetEnv("ALI_OSS_SECRET_KEY"),
			OSSSecurityToken: GetEnv("ALI_OSS_SECURITY_TOKEN"),
			OSSBucket:        GetEnv("ALI_OSS_BUCKET"),
			OSSPublicBase:    GetEnv("ALI_OSS_PUBLIC_BASE"),

			WebPEnabled: GetEnvBool("IMAGE_WEBP_ENABLED", true),
			WebPQuality: float32(GetEnvInt("IMAGE_WEBP_QUALITY", 80)),
			WebPMaxW:    GetEnvInt("IMAGE_WEBP_MAX_W", 1600),
			WebPMaxH:    GetEnvInt("IMAGE_WEBP_MAX_H", 1600),
		},
		Sessions: SessionConfig{
			Backend:       strings.ToLower(GetEnv("SESSION_BACKEND", "memory")),
			TTL:           GetEnvDuration("SESSION_TTL", 24*time.Hour),
			RedisAddr:     GetEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: GetEnv("REDIS_PASSWORD"),
			RedisDB:       GetEnvInt("REDIS_DB", 0),
			RedisPrefix:   GetEnv("REDIS_SESSION_PREFIX", "nomination-wizard:"),
		},
		SMTP: SMTPConfig{
			Host:     GetEnv("SMTP_HOST"),
			Port:     GetEnvInt("SMTP_PORT", 587),
			Username: GetEnv("SMTP_USERNAME"),
			Password: GetEnv("SMTP_PASSWORD"),
			From:     GetEnv("SMTP_FROM", "no-reply@pahla.org"),
			FromName: GetEnv("SMTP_FROM_NAME", "PAHLA Awards"),
		},
		JWTSecret:           GetEnv("JWT_SECRET"),
		JWTTTL:              GetEnvDuration("JWT_TTL", 12*time.Hour),
		CORSOrigins:         GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		ReminderCron:        GetEnv("REMINDER_CRON"),
		ReminderConcurrency: GetEnvInt("REMINDER_CONCURRENCY", 4),
	}
}

// =======================
// DATABASE CONNECTOR (CLI)
// =======================
func InitSeederDB(cfg DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:  NewGormLogger(),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect database (cli): %w", err)
	}
	logger.With("config").Info().Msg("database (cli) connected")
	return db, nil
}

// =======================
// GORM LOGGER
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		logger.With("gorm").Info().Msgf(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		logger.With("gorm").Warn().Msgf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		logger.With("gorm").Error().Msgf(msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	log := logger.With("gorm")

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error && !isRecordNotFound(err):
		log.Error().Err(err).Str("file", utils.FileWithLineNum()).Dur("elapsed", elapsed).Int64("rows", rows).Msg(sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Warn().Str("file", utils.FileWithLineNum()).Dur("elapsed", elapsed).Int64("rows", rows).Msg("[SLOW SQL] " + sql)
	case l.LogLevel >= gormLogger.Info:
		log.Debug().Dur("elapsed", elapsed).Int64("rows", rows).Msg(sql)
	}
}

func isRecordNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}
