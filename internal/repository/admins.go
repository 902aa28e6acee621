package repository

import (
	"context"
	"errors"
	"time"

	"arogyam-go/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Admins persists dashboard users and their bearer sessions.
type Admins struct {
	db *gorm.DB
}

func NewAdmins(db *gorm.DB) *Admins {
	return &Admins{db: db}
}

func (r *Admins) Create(ctx context.Context, email, password string) (*models.AdminUser, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &models.AdminUser{Email: email, Password: string(hashedPassword)}
	return admin, r.db.WithContext(ctx).Create(admin).Error
}

func (r *Admins) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var a models.AdminUser
	err := r.db.WithContext(ctx).First(&a, "LOWER(email) = LOWER(?)", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &a, err
}

// CreateSession stores the digest of token for adminID until expiresAt.
func (r *Admins) CreateSession(ctx context.Context, adminID uint, token string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Create(&models.AdminSession{
		TokenDigest: models.TokenDigest(token),
		AdminID:     adminID,
		ExpiresAt:   expiresAt,
	}).Error
}

// SessionAdmin returns the admin owning a live session for token.
func (r *Admins) SessionAdmin(ctx context.Context, token string, now time.Time) (*models.AdminUser, error) {
	var s models.AdminSession
	err := r.db.WithContext(ctx).Preload("Admin").
		Where("token_digest = ? AND expires_at > ?", models.TokenDigest(token), now).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s.Admin, nil
}

func (r *Admins) DeleteSession(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token_digest = ?", models.TokenDigest(token)).Delete(&models.AdminSession{}).Error
}

// PurgeExpiredSessions removes sessions that expired before now.
func (r *Admins) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.AdminSession{})
	return result.RowsAffected, result.Error
}
