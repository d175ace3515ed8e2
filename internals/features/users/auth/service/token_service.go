// internals/features/users/auth/service/token_service.go
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"educenter_backend/internals/configs"
	authRepo "educenter_backend/internals/features/users/auth/repository"
	userModel "educenter_backend/internals/features/users/user/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user inactive")
	ErrMissingSecret      = errors.New("JWT_SECRET belum diset")
)

const accessTTLDefault = 24 * time.Hour

func nowUTC() time.Time { return time.Now().UTC() }

func accessTTL() time.Duration {
	if configs.AccessTTL > 0 {
		return configs.AccessTTL
	}
	return accessTTLDefault
}

// IssueAccessToken membuat JWT HS256 berisi id, role, user_name.
func IssueAccessToken(user userModel.UserModel) (string, time.Time, error) {
	secret := strings.TrimSpace(configs.JWTSecret)
	if secret == "" {
		return "", time.Time{}, ErrMissingSecret
	}
	now := nowUTC()
	exp := now.Add(accessTTL())
	claims := jwt.MapClaims{
		"id":        user.ID.String(),
		"sub":       user.ID.String(),
		"role":      user.Role,
		"user_name": user.UserName,
		"iat":       now.Unix(),
		"exp":       exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Login: cek username + password, lalu terbitkan access token.
func Login(ctx context.Context, db *gorm.DB, userName, password string) (string, *userModel.UserModel, error) {
	user, err := authRepo.FindUserByUserName(ctx, db, userName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := CheckPasswordHash(user.Password, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrUserInactive
	}

	token, _, err := IssueAccessToken(*user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout memasukkan token ke blacklist sampai exp-nya lewat.
func Logout(ctx context.Context, db *gorm.DB, rawToken string) error {
	if strings.TrimSpace(rawToken) == "" {
		log.Println("[INFO] Logout tanpa access token; idempotent")
		return nil
	}
	exp, userID := tokenMeta(rawToken)
	return authRepo.BlacklistToken(ctx, db, rawToken, userID, exp)
}

// tokenMeta membaca exp dan id tanpa verifikasi (token sudah lolos middleware).
func tokenMeta(raw string) (time.Time, *uuid.UUID) {
	exp := nowUTC().Add(accessTTL())
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return exp, nil
	}
	if v, ok := claims["exp"].(float64); ok {
		exp = time.Unix(int64(v), 0).UTC()
	}
	if s, ok := claims["id"].(string); ok {
		if id, err := uuid.Parse(s); err == nil {
			return exp, &id
		}
	}
	return exp, nil
}
