// internals/features/users/auth/repository/auth_repository.go
package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "educenter_backend/internals/features/users/auth/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

/* ====================== USER ====================== */

func FindUserByUserName(ctx context.Context, db *gorm.DB, userName string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.WithContext(ctx).
		Where("user_name = ?", strings.TrimSpace(userName)).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

/* ====================== TOKEN BLACKLIST ====================== */

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

// BlacklistToken idempotent: token yang sama tidak diduplikasi.
func BlacklistToken(ctx context.Context, db *gorm.DB, token string, userID *uuid.UUID, expiredAt time.Time) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("empty token")
	}
	row := authModel.TokenBlacklist{
		TokenHash: HashToken(token),
		UserID:    userID,
		ExpiredAt: expiredAt.UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token_hash"}}, DoNothing: true}).
		Create(&row).Error
}

func IsTokenBlacklisted(ctx context.Context, db *gorm.DB, token string) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).
		Model(&authModel.TokenBlacklist{}).
		Where("token_hash = ?", HashToken(token)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpiredBlacklist menghapus permanen maksimal `limit` token yang expired sebelum `before`.
func PurgeExpiredBlacklist(ctx context.Context, db *gorm.DB, before time.Time, limit int) (int64, error) {
	var ids []uint
	if err := db.WithContext(ctx).
		Model(&authModel.TokenBlacklist{}).
		Where("expired_at < ?", before.UTC()).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Where("id IN ?", ids).Delete(&authModel.TokenBlacklist{})
	return res.RowsAffected, res.Error
}
