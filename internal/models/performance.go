package models

import "time"

// MetricResult is one aggregated frame metric.
type MetricResult struct {
	Value      float64 `json:"value"`
	Calculated bool    `json:"calculated"`
	SampleSize int     `json:"sampleSize,omitempty"`
}

// PerformanceMetric is an aggregated metric of one telemetry batch.
type PerformanceMetric struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   string    `gorm:"index;size:64" json:"session_id"`
	Page        string    `gorm:"index" json:"page"`
	Tier        string    `json:"tier"`
	MetricKey   string    `gorm:"index" json:"metric_key"`
	MetricValue float64   `json:"metric_value"`
	SampleSize  int       `json:"sample_size"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// FrameSample is one sampler window reported by a page.
type FrameSample struct {
	FPS       int     `json:"fps"`
	FrameTime float64 `json:"frame_time"`
	// Timestamp is milliseconds since the page was loaded.
	Timestamp float64 `json:"timestamp"`
}

// FrameTelemetry is a batch of samples posted by one page view.
type FrameTelemetry struct {
	SessionID string        `json:"session_id" binding:"required,max=64"`
	Page      string        `json:"page" binding:"required,max=255"`
	Tier      string        `json:"tier"`
	Samples   []FrameSample `json:"samples" binding:"required,min=1,max=600"`
}
