package repository

import (
	"context"

	"arogyam-go/internal/models"

	"gorm.io/gorm"
)

// Metrics persists aggregated frame telemetry.
type Metrics struct {
	db *gorm.DB
}

func NewMetrics(db *gorm.DB) *Metrics {
	return &Metrics{db: db}
}

// SaveMetrics writes every row of one batch in a single transaction.
func (r *Metrics) SaveMetrics(ctx context.Context, rows []models.PerformanceMetric) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, 100).Error
	})
}
