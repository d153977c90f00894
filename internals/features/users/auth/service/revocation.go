package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"gorm.io/gorm/clause"

	"pahla_backend/internals/features/users/auth/model"
)

func tokenHash(raw, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(raw))
	return hex.EncodeToString(m.Sum(nil))
}

// Logout revokes raw until its own expiry. Revoking twice is a no-op.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	cl, err := ParseAccessClaims(raw, s.Secret)
	if err != nil {
		return err
	}
	row := model.RevokedTokenModel{
		TokenHash: tokenHash(raw, s.Secret),
		AdminID:   cl.ID,
		ExpiresAt: cl.ExpiresAt,
	}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token_hash"}}, DoNothing: true}).
		Create(&row).Error
}

// IsRevoked is consulted by the auth middleware after the signature check.
func (s *AuthService) IsRevoked(ctx context.Context, raw string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.RevokedTokenModel{}).
		Where("token_hash = ? AND expires_at > ?", tokenHash(raw, s.Secret), s.Now().UTC()).
		Count(&n).Error
	return n > 0, err
}

// PurgeRevoked drops rows whose token has expired anyway.
func (s *AuthService) PurgeRevoked(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("expires_at <= ?", s.Now().UTC()).
		Delete(&model.RevokedTokenModel{})
	return res.RowsAffected, res.Error
}
