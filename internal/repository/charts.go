package repository

import (
	"context"
	"time"

	"arogyam-go/internal/models"

	"gorm.io/gorm"
)

type TimelineDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// StatusCount is the number of consultations in one status.
type StatusCount struct {
	Status models.ConsultationStatus `json:"status"`
	Count  int64                     `json:"count"`
}

// DayCount is the number of bookings created on one day.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// Stats answers the aggregate queries behind the dashboard charts.
type Stats struct {
	db *gorm.DB
}

func NewStats(db *gorm.DB) *Stats {
	return &Stats{db: db}
}

// ConsultationsByStatus counts bookings per status. Statuses without
// bookings are reported with a zero count.
func (r *Stats) ConsultationsByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ConsultationStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	out := make([]StatusCount, 0, len(models.ConsultationStatuses))
	for _, s := range models.ConsultationStatuses {
		out = append(out, StatusCount{Status: s, Count: counts[s]})
	}
	return out, nil
}

// BookingsPerDay counts bookings created on or after since, grouped by day.
func (r *Stats) BookingsPerDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	var rows []DayCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT date_trunc('day', created_at) AS day, COUNT(*) AS count
		FROM consultations
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day;
	`, since).Scan(&rows).Error
	return rows, err
}

// FrameTimeline returns one aggregated frame metric for a page over time.
func (r *Stats) FrameTimeline(ctx context.Context, page, metricKey string, since time.Time) ([]TimelineDataPoint, error) {
	var data []TimelineDataPoint
	err := r.db.WithContext(ctx).Raw(`
		SELECT created_at AS date, metric_value AS value
		FROM performance_metrics
		WHERE page = ? AND metric_key = ? AND created_at >= ?
		ORDER BY created_at;
	`, page, metricKey, since).Scan(&data).Error
	return data, err
}
