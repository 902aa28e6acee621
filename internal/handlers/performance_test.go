package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"arogyam-go/internal/performance"
	"arogyam-go/internal/telemetry"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func performanceRouter(store MetricStore, hub *telemetry.Hub, clk clock.Clock) *gin.Engine {
	h := NewPerformanceHandler(zap.NewNop(), performance.NewProber(zap.NewNop()), store, hub, clk)
	r := gin.New()
	r.POST("/api/performance/profile", h.Profile)
	r.POST("/api/performance/metrics", h.Metrics)
	return r
}

func decodeProfile(t *testing.T, w *httptest.ResponseRecorder) performance.Profile {
	t.Helper()
	var p performance.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p), w.Body.String())
	return p
}

func TestProfile_HighEndReport(t *testing.T) {
	r := performanceRouter(&fakeMetrics{}, telemetry.NewHub(0), clock.NewMock())
	w := perform(r, http.MethodPost, "/api/performance/profile", `{
		"device_memory": 8,
		"hardware_concurrency": 8,
		"webgl": {"available": true, "renderer": "NVIDIA GeForce RTX 3080"},
		"transform_3d": true,
		"effective_type": "4g"
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, performance.AcceptCH, w.Header().Get("Accept-CH"))

	p := decodeProfile(t, w)
	assert.Equal(t, performance.TierHigh, p.Capabilities.Tier)
	assert.Equal(t, performance.NetworkFast, p.Capabilities.NetworkSpeed)
	assert.True(t, p.Settings.EnableAnimations)
	assert.Contains(t, p.Flags, performance.FlagHighEnd)
	assert.NotContains(t, p.Flags, performance.FlagNoAnimations)
}

func TestProfile_LowBatteryTurnsEffectsOff(t *testing.T) {
	r := performanceRouter(&fakeMetrics{}, telemetry.NewHub(0), clock.NewMock())
	w := perform(r, http.MethodPost, "/api/performance/profile", `{
		"device_memory": 8,
		"hardware_concurrency": 8,
		"battery": {"level": 0.15, "charging": false}
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decodeProfile(t, w)
	assert.Contains(t, p.Flags, performance.FlagBattery)
	assert.False(t, p.Settings.EnableAnimations)
	assert.Contains(t, p.Flags, performance.FlagNoAnimations)
	assert.Contains(t, p.BodyClass, "battery-optimized")
}

func TestProfile_HintsOnly(t *testing.T) {
	r := performanceRouter(&fakeMetrics{}, telemetry.NewHub(0), clock.NewMock())
	req := httptest.NewRequest(http.MethodPost, "/api/performance/profile", nil)
	req.Header.Set(performance.HeaderDeviceMemory, "0.5")
	req.Header.Set(performance.HeaderSaveData, "on")
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	p := decodeProfile(t, w)
	assert.Equal(t, performance.TierLow, p.Capabilities.Tier)
	assert.Contains(t, p.Flags, performance.FlagLowEnd)
	assert.Contains(t, p.Flags, performance.FlagData)
}

func TestProfile_MalformedReport(t *testing.T) {
	r := performanceRouter(&fakeMetrics{}, telemetry.NewHub(0), clock.NewMock())
	w := perform(r, http.MethodPost, "/api/performance/profile", `{"device_memory": "lots"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

const frameBatch = `{
	"session_id": "s-42",
	"page": "/remedies",
	"tier": "mid",
	"samples": [{"fps": 60, "frame_time": 16}, {"fps": 24, "frame_time": 41}]
}`

func TestMetrics_StoresAndPublishes(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	store := &fakeMetrics{}
	hub := telemetry.NewHub(4)
	reports, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	w := perform(performanceRouter(store, hub, clk), http.MethodPost, "/api/performance/metrics", frameBatch)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, float64(len(store.rows)), decode(t, w)["stored"])
	require.NotEmpty(t, store.rows)

	select {
	case rep := <-reports:
		assert.Equal(t, "s-42", rep.SessionID)
		assert.Equal(t, "/remedies", rep.Page)
		assert.InDelta(t, 42.0, rep.Metrics["fps_mean"], 1e-9)
		assert.InDelta(t, 0.5, rep.Metrics["jank_rate"], 1e-9)
		assert.Equal(t, clk.Now(), rep.At)
	case <-time.After(time.Second):
		t.Fatal("no report published")
	}
}

func TestMetrics_Failures(t *testing.T) {
	r := performanceRouter(&fakeMetrics{}, telemetry.NewHub(0), clock.NewMock())
	w := perform(r, http.MethodPost, "/api/performance/metrics", `{"samples": "none"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r = performanceRouter(&fakeMetrics{fail: true}, telemetry.NewHub(0), clock.NewMock())
	w = perform(r, http.MethodPost, "/api/performance/metrics", frameBatch)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, strings.Contains(w.Body.String(), errBackend.Error()))
}
