package handlers

import (
	"context"
	"time"

	"arogyam-go/internal/models"
	"arogyam-go/internal/repository"
)

// The handlers depend on these narrow views of the repository layer.

type ConsultationStore interface {
	List(ctx context.Context) ([]models.Consultation, error)
	Create(ctx context.Context, c *models.Consultation) error
	UpdateStatus(ctx context.Context, id uint, status models.ConsultationStatus) (*models.Consultation, error)
	Delete(ctx context.Context, id uint) error
	ListForPatient(ctx context.Context, patient *models.Patient) ([]models.Consultation, error)
	LinkPatient(ctx context.Context, id, patientID uint) (*models.Consultation, error)
}

type PatientStore interface {
	List(ctx context.Context) ([]models.Patient, error)
	Search(ctx context.Context, query string) ([]models.Patient, error)
	Get(ctx context.Context, id uint) (*models.Patient, error)
	GetByEmail(ctx context.Context, email string) (*models.Patient, error)
	Create(ctx context.Context, p *models.Patient) error
	Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.Patient, error)
	Delete(ctx context.Context, id uint) error
}

type PrescriptionStore interface {
	List(ctx context.Context) ([]models.Prescription, error)
	ListForPatient(ctx context.Context, patientID uint) ([]models.Prescription, error)
	Create(ctx context.Context, p *models.Prescription) error
	Delete(ctx context.Context, id uint) error
}

type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	CreateSession(ctx context.Context, adminID uint, token string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
}

type MetricStore interface {
	SaveMetrics(ctx context.Context, rows []models.PerformanceMetric) error
}

type StatsStore interface {
	ConsultationsByStatus(ctx context.Context) ([]repository.StatusCount, error)
	BookingsPerDay(ctx context.Context, since time.Time) ([]repository.DayCount, error)
	FrameTimeline(ctx context.Context, page, metricKey string, since time.Time) ([]repository.TimelineDataPoint, error)
}

var (
	_ ConsultationStore = (*repository.Consultations)(nil)
	_ PatientStore      = (*repository.Patients)(nil)
	_ PrescriptionStore = (*repository.Prescriptions)(nil)
	_ AdminStore        = (*repository.Admins)(nil)
	_ MetricStore       = (*repository.Metrics)(nil)
	_ StatsStore        = (*repository.Stats)(nil)
)
