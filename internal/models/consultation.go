package models

import (
	"time"
)

// ConsultationStatus is the lifecycle state of a booking.
type ConsultationStatus string

const (
	StatusPending   ConsultationStatus = "pending"
	StatusConfirmed ConsultationStatus = "confirmed"
	StatusCompleted ConsultationStatus = "completed"
	StatusCancelled ConsultationStatus = "cancelled"
)

// ConsultationStatuses lists every valid status in display order.
var ConsultationStatuses = []ConsultationStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

func (s ConsultationStatus) Valid() bool {
	for _, known := range ConsultationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Consultation is a booking submitted through the public form.
type Consultation struct {
	ID               uint               `gorm:"primaryKey" json:"id"`
	Name             string             `gorm:"not null" json:"name"`
	Email            string             `gorm:"not null;index" json:"email"`
	Phone            string             `gorm:"not null" json:"phone"`
	Age              int                `json:"age,omitempty"`
	Gender           string             `json:"gender,omitempty"`
	ConsultationType string             `gorm:"not null" json:"consultation_type"`
	PreferredDate    time.Time          `gorm:"type:date;not null" json:"preferred_date"`
	PreferredTime    string             `json:"preferred_time,omitempty"`
	Symptoms         string             `json:"symptoms,omitempty"`
	Status           ConsultationStatus `gorm:"not null;default:pending;index" json:"status"`
	PatientID        *uint              `gorm:"index" json:"patient_id,omitempty"`
	RemindedAt       *time.Time         `json:"reminded_at,omitempty"`
	CreatedAt        time.Time          `gorm:"index:,sort:desc" json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}
