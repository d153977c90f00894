package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"pahla_backend/internals/features/users/auth/model"
)

var ErrMissingSecret = errors.New("JWT secret is not configured")

// IssueAccessToken signs an HS256 token carrying id, role, email and exp.
func IssueAccessToken(user model.AdminUserModel, secret string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"id":    user.ID.String(),
		"role":  user.Role,
		"email": user.Email,
		"name":  user.FullName,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// AccessClaims are the claims the middleware and logout rely on.
type AccessClaims struct {
	ID        uuid.UUID
	Role      string
	ExpiresAt time.Time
}

// ParseAccessToken verifies signature and exp and returns the admin id and role.
func ParseAccessToken(tokenString, secret string) (uuid.UUID, string, error) {
	cl, err := ParseAccessClaims(tokenString, secret)
	if err != nil {
		return uuid.Nil, "", err
	}
	return cl.ID, cl.Role, nil
}

func ParseAccessClaims(tokenString, secret string) (AccessClaims, error) {
	if secret == "" {
		return AccessClaims{}, ErrMissingSecret
	}
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return AccessClaims{}, err
	}
	if !tok.Valid {
		return AccessClaims{}, errors.New("invalid token")
	}

	rawID, _ := claims["id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return AccessClaims{}, errors.New("invalid user id claim")
	}
	role, _ := claims["role"].(string)
	var exp time.Time
	if v, ok := claims["exp"].(float64); ok {
		exp = time.Unix(int64(v), 0).UTC()
	}
	return AccessClaims{ID: id, Role: role, ExpiresAt: exp}, nil
}
