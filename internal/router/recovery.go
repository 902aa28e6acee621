package router

import (
	"io"
	"net/http"
	"strings"

	"arogyam-go/internal/views"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recovery turns a panic into a 500 carrying a correlation id, the request
// id when RequestLogger ran first. API callers get JSON; browsers get the
// recovery screen.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		correlationID := c.GetString(RequestIDContextKey)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		log.Error("Recovered from panic",
			zap.Any("panic", recovered),
			zap.String("correlation_id", correlationID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)

		if c.Writer.Written() {
			c.Abort()
			return
		}
		c.Header("X-Correlation-ID", correlationID)

		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success":        false,
				"error":          "Internal server error",
				"correlation_id": correlationID,
			})
			return
		}

		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusInternalServerError)
		page := views.Page{Title: "Something went wrong"}
		ctx := templ.WithChildren(c.Request.Context(), views.Recovery(correlationID))
		if err := views.Layout(page).Render(ctx, c.Writer); err != nil {
			log.Error("Error rendering recovery screen", zap.Error(err))
		}
		c.Abort()
	})
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}
