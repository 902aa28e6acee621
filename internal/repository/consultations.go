package repository

import (
	"context"
	"errors"
	"time"

	"arogyam-go/internal/models"

	"gorm.io/gorm"
)

// Consultations persists bookings.
type Consultations struct {
	db *gorm.DB
}

func NewConsultations(db *gorm.DB) *Consultations {
	return &Consultations{db: db}
}

// List returns every consultation, newest first.
func (r *Consultations) List(ctx context.Context) ([]models.Consultation, error) {
	var out []models.Consultation
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *Consultations) Create(ctx context.Context, c *models.Consultation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// UpdateStatus sets the status, refreshes updated_at and returns the row.
func (r *Consultations) UpdateStatus(ctx context.Context, id uint, status models.ConsultationStatus) (*models.Consultation, error) {
	result := r.db.WithContext(ctx).Model(&models.Consultation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var c models.Consultation
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Consultations) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Consultation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForPatient returns bookings linked to the patient. A booking made
// with the patient's email but no link is not theirs until an admin links it.
func (r *Consultations) ListForPatient(ctx context.Context, patient *models.Patient) ([]models.Consultation, error) {
	var out []models.Consultation
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patient.ID).
		Order("preferred_date DESC").
		Find(&out).Error
	return out, err
}

// LinkPatient attaches a booking to an existing patient record.
func (r *Consultations) LinkPatient(ctx context.Context, id, patientID uint) (*models.Consultation, error) {
	var c models.Consultation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Patient{}, patientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPatientNotFound
			}
			return err
		}
		result := tx.Model(&models.Consultation{}).Where("id = ?", id).Updates(map[string]interface{}{
			"patient_id": patientID,
			"updated_at": time.Now().UTC(),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&c, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DueForReminder finds confirmed consultations on day that have not been reminded.
func (r *Consultations) DueForReminder(ctx context.Context, day time.Time) ([]models.Consultation, error) {
	var out []models.Consultation
	err := r.db.WithContext(ctx).
		Where("status = ? AND preferred_date = ? AND reminded_at IS NULL", models.StatusConfirmed, day.Format("2006-01-02")).
		Find(&out).Error
	return out, err
}

func (r *Consultations) MarkReminded(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Consultation{}).Where("id = ?", id).Update("reminded_at", at).Error
}
