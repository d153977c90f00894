package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pahla_backend/internals/features/users/auth/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveAccount    = errors.New("account is disabled")
)

type AuthService struct {
	DB     *gorm.DB
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

type LoginResult struct {
	AccessToken string               `json:"access_token"`
	ExpiresAt   time.Time            `json:"expires_at"`
	User        model.AdminUserModel `json:"user"`
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	return &AuthService{DB: db, Secret: secret, TTL: ttl, Now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.AdminUserModel
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	now := s.Now()
	token, exp, err := IssueAccessToken(user, s.Secret, s.TTL, now)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&model.AdminUserModel{}).
		Where("id = ?", user.ID).
		Update("last_login_at", now).Error; err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return &LoginResult{AccessToken: token, ExpiresAt: exp, User: user}, nil
}

// IsActive is consulted by the auth middleware on every admin request.
func (s *AuthService) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	var user model.AdminUserModel
	if err := s.DB.WithContext(ctx).Select("id", "is_active").Where("id = ?", id).First(&user).Error; err != nil {
		return false, err
	}
	return user.IsActive, nil
}

// EnsureAdmin creates the account unless the email is already registered.
func EnsureAdmin(ctx context.Context, db *gorm.DB, email, fullName, password, role string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var count int64
	if err := db.WithContext(ctx).Model(&model.AdminUserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	if role == "" {
		role = "admin"
	}
	user := model.AdminUserModel{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}
