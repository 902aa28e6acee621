package repository

import (
	"context"
	"errors"
	"strings"

	"arogyam-go/internal/models"

	"gorm.io/gorm"
)

// Patients persists portal patients.
type Patients struct {
	db *gorm.DB
}

func NewPatients(db *gorm.DB) *Patients {
	return &Patients{db: db}
}

func (r *Patients) List(ctx context.Context) ([]models.Patient, error) {
	var out []models.Patient
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

// Search matches name, email or phone case-insensitively.
func (r *Patients) Search(ctx context.Context, query string) ([]models.Patient, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var out []models.Patient
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like).
		Order("name").
		Limit(50).
		Find(&out).Error
	return out, err
}

func (r *Patients) Get(ctx context.Context, id uint) (*models.Patient, error) {
	var p models.Patient
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *Patients) GetByEmail(ctx context.Context, email string) (*models.Patient, error) {
	var p models.Patient
	err := r.db.WithContext(ctx).First(&p, "LOWER(email) = LOWER(?)", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *Patients) Create(ctx context.Context, p *models.Patient) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update applies the given column changes and returns the updated row.
func (r *Patients) Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.Patient, error) {
	result := r.db.WithContext(ctx).Model(&models.Patient{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Patients) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Patient{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
