package handlers

import (
	"net/http"
	"strings"
	"time"

	"arogyam-go/internal/repository"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"
)

// statsWindow is how far back the dashboard charts look.
const statsWindow = 30 * 24 * time.Hour

// frameMetricLabels are the frame metrics the dashboard can chart.
var frameMetricLabels = map[string]string{
	"fps_mean":               "Mean FPS",
	"fps_min":                "Minimum FPS",
	"fps_stddev":             "FPS Standard Deviation",
	"frame_time_mean":        "Mean Frame Time (ms)",
	"frame_time_variability": "Frame Time Variability",
	"jank_rate":              "Jank Rate",
}

// StatsHandler renders dashboard chart options as JSON.
type StatsHandler struct {
	log   *zap.Logger
	stats StatsStore
	clock clock.Clock
}

func NewStatsHandler(log *zap.Logger, stats StatsStore, clk clock.Clock) *StatsHandler {
	return &StatsHandler{log: log, stats: stats, clock: clk}
}

// Consultations returns the options of the status pie and the bookings
// per day bar chart.
func (h *StatsHandler) Consultations(c *gin.Context) {
	ctx := c.Request.Context()
	byStatus, err := h.stats.ConsultationsByStatus(ctx)
	if err != nil {
		h.log.Error("Failed to count consultations by status", zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to load statistics")
		return
	}
	perDay, err := h.stats.BookingsPerDay(ctx, h.clock.Now().Add(-statsWindow))
	if err != nil {
		h.log.Error("Failed to count bookings per day", zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to load statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": generateStatusChart(byStatus).JSON(),
		"daily":  generateBookingsChart(perDay).JSON(),
	})
}

// Performance returns the timeline of one frame metric for one page.
func (h *StatsHandler) Performance(c *gin.Context) {
	page := c.DefaultQuery("page", "/")
	metricKey := c.DefaultQuery("metric", "fps_mean")
	label, ok := frameMetricLabels[metricKey]
	if !ok {
		adminError(c, http.StatusUnprocessableEntity, "Unknown metric")
		return
	}

	data, err := h.stats.FrameTimeline(c.Request.Context(), page, metricKey, h.clock.Now().Add(-statsWindow))
	if err != nil {
		h.log.Error("Failed to get timeline data", zap.Error(err), zap.String("page", page), zap.String("metricKey", metricKey))
		adminError(c, http.StatusInternalServerError, "Failed to load timeline data")
		return
	}
	c.JSON(http.StatusOK, generateTimelineChart(data, label).JSON())
}

func generateStatusChart(counts []repository.StatusCount) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Consultations by Status"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	items := make([]opts.PieData, 0, len(counts))
	for _, sc := range counts {
		name := string(sc.Status)
		items = append(items, opts.PieData{Name: strings.ToUpper(name[:1]) + name[1:], Value: sc.Count})
	}
	pie.AddSeries("Consultations", items)
	return pie
}

func generateBookingsChart(days []repository.DayCount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Bookings per Day", Subtitle: "Last 30 days"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	labels := make([]string, 0, len(days))
	items := make([]opts.BarData, 0, len(days))
	for _, d := range days {
		labels = append(labels, d.Day.Format("02 Jan"))
		items = append(items, opts.BarData{Value: d.Count})
	}
	bar.SetXAxis(labels).AddSeries("Bookings", items)
	return bar
}

func generateTimelineChart(data []repository.TimelineDataPoint, metricLabel string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Frame Metric Over Time",
			Subtitle: metricLabel,
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	// Points are [date, value] pairs for the time axis.
	items := make([]opts.LineData, 0, len(data))
	for _, point := range data {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
	}

	line.AddSeries(metricLabel, items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
