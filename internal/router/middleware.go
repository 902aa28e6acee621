package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"arogyam-go/internal/handlers"
	"arogyam-go/internal/models"
	"arogyam-go/internal/repository"
	"arogyam-go/internal/utils"

	"github.com/benbjohnson/clock"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PatientFinder loads the patient behind a portal session.
type PatientFinder interface {
	Get(ctx context.Context, id uint) (*models.Patient, error)
}

// TokenVerifier resolves a bearer token to a live admin session.
type TokenVerifier interface {
	SessionAdmin(ctx context.Context, token string, now time.Time) (*models.AdminUser, error)
}

// PatientLoaderMiddleware checks for a patient id in the session.
// If found, it loads the patient and adds it to the context, so sessions
// of deleted patients do not linger.
func PatientLoaderMiddleware(log *zap.Logger, patients PatientFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		patientID, ok := session.Get(handlers.PatientSessionKey).(uint)
		if !ok {
			// No patient in session, proceed as a guest.
			c.Next()
			return
		}

		patient, err := patients.Get(c.Request.Context(), patientID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Warn("Failed to load session patient", zap.Uint("patientID", patientID), zap.Error(err))
				c.Next()
				return
			}
			// Patient was deleted. Clear the session and treat as a guest.
			session.Clear()
			session.Options(sessions.Options{Path: "/", MaxAge: -1})
			session.Save()
			c.Next()
			return
		}

		c.Set(handlers.PatientContextKey, patient)
		c.Next()
	}
}

// PortalAuthRequired checks that a patient was loaded into the context.
func PortalAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(handlers.PatientContextKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Please sign in to continue"})
			return
		}
		c.Next()
	}
}

// parseBearer extracts the token of an "Authorization: Bearer <token>"
// header. Tokens shorter than utils.MinBearerTokenLength are rejected.
func parseBearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	if len(token) < utils.MinBearerTokenLength {
		return "", false
	}
	return token, true
}

// AdminAuth guards the admin surface. A malformed or short token fails the
// shape check; a well-formed one must also match an unexpired session.
func AdminAuth(log *zap.Logger, verifier TokenVerifier, clk clock.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := parseBearer(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		admin, err := verifier.SessionAdmin(c.Request.Context(), token, clk.Now())
		if errors.Is(err, repository.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if err != nil {
			log.Error("Failed to verify admin token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify token"})
			return
		}

		c.Set(handlers.AdminContextKey, admin)
		c.Set(handlers.AdminTokenContextKey, token)
		c.Next()
	}
}
