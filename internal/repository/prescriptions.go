package repository

import (
	"context"

	"arogyam-go/internal/models"

	"gorm.io/gorm"
)

// Prescriptions persists remedy prescriptions.
type Prescriptions struct {
	db *gorm.DB
}

func NewPrescriptions(db *gorm.DB) *Prescriptions {
	return &Prescriptions{db: db}
}

func (r *Prescriptions) List(ctx context.Context) ([]models.Prescription, error) {
	var out []models.Prescription
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *Prescriptions) ListForPatient(ctx context.Context, patientID uint) ([]models.Prescription, error) {
	var out []models.Prescription
	err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *Prescriptions) Create(ctx context.Context, p *models.Prescription) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Prescriptions) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Prescription{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
