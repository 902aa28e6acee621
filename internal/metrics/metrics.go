package metrics

import (
	"math"
	"sort"
	"time"

	"arogyam-go/internal/models"
)

// jankFPS is the frame rate below which a window counts as janky.
const jankFPS = 30

// CalculateFrameMetrics aggregates a telemetry batch into one row per metric.
// Metrics that cannot be computed from the batch are omitted.
func CalculateFrameMetrics(batch *models.FrameTelemetry, now time.Time) []models.PerformanceMetric {
	results := map[string]models.MetricResult{
		"fps_mean":               calculateFPSMean(batch.Samples),
		"fps_min":                calculateFPSMin(batch.Samples),
		"fps_stddev":             calculateFPSStdDev(batch.Samples),
		"frame_time_mean":        calculateFrameTimeMean(batch.Samples),
		"frame_time_variability": calculateFrameTimeVariability(batch.Samples),
		"jank_rate":              calculateJankRate(batch.Samples),
	}

	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]models.PerformanceMetric, 0, len(results))
	for _, key := range keys {
		r := results[key]
		if !r.Calculated {
			continue
		}
		rows = append(rows, models.PerformanceMetric{
			SessionID:   batch.SessionID,
			Page:        batch.Page,
			Tier:        batch.Tier,
			MetricKey:   key,
			MetricValue: r.Value,
			SampleSize:  r.SampleSize,
			CreatedAt:   now,
		})
	}
	return rows
}

func validFPS(samples []models.FrameSample) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.FPS > 0 && s.FPS < 1000 {
			out = append(out, float64(s.FPS))
		}
	}
	return out
}

func validFrameTimes(samples []models.FrameSample) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.FrameTime > 0 && s.FrameTime < 10000 {
			out = append(out, s.FrameTime)
		}
	}
	return out
}

func calculateFPSMean(samples []models.FrameSample) models.MetricResult {
	values := validFPS(samples)
	if len(values) == 0 {
		return models.MetricResult{}
	}
	return models.MetricResult{Value: mean(values), Calculated: true, SampleSize: len(values)}
}

func calculateFPSMin(samples []models.FrameSample) models.MetricResult {
	values := validFPS(samples)
	if len(values) == 0 {
		return models.MetricResult{}
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return models.MetricResult{Value: min, Calculated: true, SampleSize: len(values)}
}

func calculateFPSStdDev(samples []models.FrameSample) models.MetricResult {
	values := validFPS(samples)
	if len(values) < 2 {
		return models.MetricResult{SampleSize: len(values)}
	}
	avg := mean(values)
	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - avg
		sumSquaredDiff += diff * diff
	}
	return models.MetricResult{
		Value:      math.Sqrt(sumSquaredDiff / float64(len(values))),
		Calculated: true,
		SampleSize: len(values),
	}
}

func calculateFrameTimeMean(samples []models.FrameSample) models.MetricResult {
	values := validFrameTimes(samples)
	if len(values) == 0 {
		return models.MetricResult{}
	}
	return models.MetricResult{Value: mean(values), Calculated: true, SampleSize: len(values)}
}

// calculateFrameTimeVariability is the coefficient of variation of frame
// times, with IQR outlier removal once there are enough windows.
func calculateFrameTimeVariability(samples []models.FrameSample) models.MetricResult {
	values := validFrameTimes(samples)
	if len(values) < 3 {
		return models.MetricResult{SampleSize: len(values)}
	}

	if len(values) > 10 {
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		q1 := sorted[len(sorted)/4]
		q3 := sorted[len(sorted)*3/4]
		iqr := q3 - q1
		lowerBound := q1 - 1.5*iqr
		upperBound := q3 + 1.5*iqr

		filtered := make([]float64, 0, len(sorted))
		for _, v := range sorted {
			if v >= lowerBound && v <= upperBound {
				filtered = append(filtered, v)
			}
		}
		// Only use the filtered set if we didn't drop too much
		if len(filtered) > len(values)/2 {
			values = filtered
		}
	}

	avg := mean(values)
	var variance float64
	for _, v := range values {
		variance += math.Pow(v-avg, 2)
	}
	variance /= float64(len(values) - 1)

	return models.MetricResult{
		Value:      math.Sqrt(variance) / avg,
		Calculated: true,
		SampleSize: len(values),
	}
}

func calculateJankRate(samples []models.FrameSample) models.MetricResult {
	values := validFPS(samples)
	if len(values) == 0 {
		return models.MetricResult{}
	}
	janky := 0
	for _, v := range values {
		if v < jankFPS {
			janky++
		}
	}
	return models.MetricResult{
		Value:      float64(janky) / float64(len(values)),
		Calculated: true,
		SampleSize: len(values),
	}
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
