package models

import (
	"time"

	"github.com/lib/pq"
)

// Prescription records the remedies given to a patient.
type Prescription struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PatientID      uint           `gorm:"not null;index" json:"patient_id"`
	Patient        *Patient       `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
	ConsultationID *uint          `gorm:"index" json:"consultation_id,omitempty"`
	Remedies       pq.StringArray `gorm:"type:text[]" json:"remedies"`
	Dosage         string         `json:"dosage"`
	Instructions   string         `json:"instructions,omitempty"`
	FollowUpDate   *time.Time     `gorm:"type:date" json:"follow_up_date,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
