package model

import "time"

// RefreshToken is the durable record of one issued refresh token. One row is
// created per issuance (registration or login) and deleted on logout. The
// TokenID is the JWT jti claim; the signed token itself is never stored.
type RefreshToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TokenID   string    `json:"token_id" gorm:"type:char(36);uniqueIndex;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
