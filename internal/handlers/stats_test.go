package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"arogyam-go/internal/models"
	"arogyam-go/internal/repository"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStats struct {
	fail      bool
	since     time.Time
	metricKey string
}

func (f *fakeStats) ConsultationsByStatus(ctx context.Context) ([]repository.StatusCount, error) {
	if f.fail {
		return nil, errBackend
	}
	return []repository.StatusCount{
		{Status: models.StatusPending, Count: 4},
		{Status: models.StatusConfirmed, Count: 2},
		{Status: models.StatusCompleted, Count: 9},
		{Status: models.StatusCancelled, Count: 0},
	}, nil
}

func (f *fakeStats) BookingsPerDay(ctx context.Context, since time.Time) ([]repository.DayCount, error) {
	f.since = since
	return []repository.DayCount{
		{Day: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), Count: 3},
		{Day: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), Count: 5},
	}, nil
}

func (f *fakeStats) FrameTimeline(ctx context.Context, page, metricKey string, since time.Time) ([]repository.TimelineDataPoint, error) {
	f.metricKey = metricKey
	return []repository.TimelineDataPoint{
		{Date: time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC), Value: 58.2},
	}, nil
}

func statsRouter(stats StatsStore, clk clock.Clock) *gin.Engine {
	h := NewStatsHandler(zap.NewNop(), stats, clk)
	r := gin.New()
	r.GET("/api/admin/stats/consultations", h.Consultations)
	r.GET("/api/admin/stats/performance", h.Performance)
	return r
}

func TestStats_Consultations(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	stats := &fakeStats{}

	w := perform(statsRouter(stats, clk), http.MethodGet, "/api/admin/stats/consultations", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Contains(t, body, "status")
	assert.Contains(t, body, "daily")
	assert.Contains(t, w.Body.String(), "Consultations by Status")
	assert.Contains(t, w.Body.String(), "Pending")
	assert.Contains(t, w.Body.String(), "09 Mar")
	assert.Equal(t, clk.Now().Add(-statsWindow), stats.since)
}

func TestStats_ConsultationsFailure(t *testing.T) {
	w := perform(statsRouter(&fakeStats{fail: true}, clock.NewMock()), http.MethodGet, "/api/admin/stats/consultations", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])
}

func TestStats_Performance(t *testing.T) {
	stats := &fakeStats{}
	r := statsRouter(stats, clock.NewMock())

	w := perform(r, http.MethodGet, "/api/admin/stats/performance?page=/remedies&metric=jank_rate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "jank_rate", stats.metricKey)
	assert.Contains(t, w.Body.String(), "Jank Rate")

	w = perform(r, http.MethodGet, "/api/admin/stats/performance?metric=reaction_time", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
