package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// AdminUser can sign in to the dashboard.
type AdminUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *AdminUser) CheckPassword(password string) bool {
	return VerifyPassword(a.Password, password)
}

// AdminSession is an issued bearer token. Only the digest is stored.
type AdminSession struct {
	ID          uint      `gorm:"primaryKey"`
	TokenDigest string    `gorm:"uniqueIndex;size:64;not null"`
	AdminID     uint      `gorm:"not null;index"`
	Admin       AdminUser `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE"`
	ExpiresAt   time.Time `gorm:"index"`
	CreatedAt   time.Time
}

// TokenDigest is the stored form of a bearer token.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
