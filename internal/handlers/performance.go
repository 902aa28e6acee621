package handlers

import (
	"net/http"
	"time"

	"arogyam-go/internal/metrics"
	"arogyam-go/internal/models"
	"arogyam-go/internal/performance"
	"arogyam-go/internal/telemetry"
	"arogyam-go/internal/timing"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// telemetryLogInterval bounds how often ingest is logged at Info.
const telemetryLogInterval = 10 * time.Second

// PerformanceHandler profiles clients and ingests their frame-rate samples.
type PerformanceHandler struct {
	log          *zap.Logger
	prober       *performance.Prober
	store        MetricStore
	hub          *telemetry.Hub
	clock        clock.Clock
	logIngestion func(models.FrameTelemetry)
}

func NewPerformanceHandler(log *zap.Logger, prober *performance.Prober, store MetricStore, hub *telemetry.Hub, clk clock.Clock) *PerformanceHandler {
	h := &PerformanceHandler{log: log, prober: prober, store: store, hub: hub, clock: clk}
	h.logIngestion = timing.Throttle(clk, func(batch models.FrameTelemetry) {
		h.log.Info("Frame telemetry received",
			zap.String("page", batch.Page),
			zap.String("tier", batch.Tier),
			zap.Int("samples", len(batch.Samples)),
			zap.Int("viewers", h.hub.Subscribers()),
		)
	}, telemetryLogInterval)
	return h
}

// Profile answers with the capabilities, settings and flags for the caller.
// The body is an optional capability report; client hint headers fill in
// what it leaves out.
func (h *PerformanceHandler) Profile(c *gin.Context) {
	var report *performance.Report
	if c.Request.ContentLength != 0 {
		report = &performance.Report{}
		if err := c.ShouldBindJSON(report); err != nil {
			failure(c, http.StatusBadRequest, "Invalid capability report")
			return
		}
	}
	env := performance.NewHintsEnvironment(c.Request.Header, report)
	profile := h.prober.ProfileOf(c.Request.Context(), env)

	c.Header("Accept-CH", performance.AcceptCH)
	c.Header("Vary", performance.AcceptCH)
	c.JSON(http.StatusOK, profile)
}

// Metrics stores a batch of frame samples and forwards a summary to live
// dashboard viewers.
func (h *PerformanceHandler) Metrics(c *gin.Context) {
	var batch models.FrameTelemetry
	if err := c.ShouldBindJSON(&batch); err != nil {
		h.log.Debug("Failed to bind frame telemetry", zap.Error(err))
		failure(c, http.StatusBadRequest, "Invalid telemetry")
		return
	}

	now := h.clock.Now().UTC()
	rows := metrics.CalculateFrameMetrics(&batch, now)
	if err := h.store.SaveMetrics(c.Request.Context(), rows); err != nil {
		h.log.Error("Failed to save frame metrics", zap.Error(err))
		failure(c, http.StatusInternalServerError, "Failed to store telemetry")
		return
	}

	summary := make(map[string]float64, len(rows))
	for _, r := range rows {
		summary[r.MetricKey] = r.MetricValue
	}
	h.hub.Publish(telemetry.Report{
		SessionID: batch.SessionID,
		Page:      batch.Page,
		Tier:      batch.Tier,
		Metrics:   summary,
		At:        now,
	})
	h.logIngestion(batch)

	c.JSON(http.StatusAccepted, gin.H{"success": true, "stored": len(rows)})
}
