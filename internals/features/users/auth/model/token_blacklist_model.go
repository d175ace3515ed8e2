package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenBlacklist: access token yang sudah logout. Yang disimpan hanya hash sha256-nya.
type TokenBlacklist struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	TokenHash string     `gorm:"column:token_hash;size:64;not null;uniqueIndex:uq_token_blacklist_hash" json:"-"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ExpiredAt time.Time  `gorm:"index" json:"expired_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
