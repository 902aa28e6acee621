package handlers

import (
	"net/http"
	"net/url"
	"time"

	"arogyam-go/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	telemetryWriteWait  = 10 * time.Second
	telemetryPingPeriod = 30 * time.Second
)

// TelemetryHandler streams live frame-rate reports to dashboard viewers.
type TelemetryHandler struct {
	log      *zap.Logger
	hub      *telemetry.Hub
	upgrader websocket.Upgrader
}

// NewTelemetryHandler accepts upgrades from the origins allowedOrigins
// returns at upgrade time, or from the request's own host when there are none.
func NewTelemetryHandler(log *zap.Logger, hub *telemetry.Hub, allowedOrigins func() []string) *TelemetryHandler {
	return &TelemetryHandler{
		log: log,
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if allowed := allowedOrigins(); len(allowed) > 0 {
					for _, o := range allowed {
						if o == origin {
							return true
						}
					}
					return false
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

func (h *TelemetryHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Telemetry websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	reports, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()
	h.log.Debug("Telemetry viewer connected", zap.String("client_ip", c.ClientIP()))

	// The reader only exists to notice the viewer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(telemetryPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-gone:
			return
		case r, ok := <-reports:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(telemetryWriteWait))
			if err := conn.WriteJSON(r); err != nil {
				h.log.Debug("Telemetry viewer write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(telemetryWriteWait)); err != nil {
				return
			}
		}
	}
}
