package router

import (
	"crypto/subtle"
	"net/http"

	"arogyam-go/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Define keys for storing the token in the session and context.
const (
	csrfTokenSessionKey = "csrf_token"
	csrfTokenFormKey    = "_csrf"
	csrfTokenContextKey = "csrf_token"
	csrfTokenHeaderKey  = "X-CSRF-Token"
)

// CSRFToken makes the session's CSRF token available to templates,
// creating it on first use.
func CSRFToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(csrfTokenSessionKey).(string)
		if token == "" {
			newToken, err := utils.GenerateSecureToken(32)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to start session"})
				return
			}
			token = newToken
			session.Set(csrfTokenSessionKey, token)
			if err := session.Save(); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to start session"})
				return
			}
		}
		c.Set(csrfTokenContextKey, token)
		c.Next()
	}
}

// CSRFProtection rejects unsafe requests whose submitted token does not
// match the session. Routes authenticated by bearer token do not use it.
func CSRFProtection() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		realToken, _ := sessions.Default(c).Get(csrfTokenSessionKey).(string)
		if realToken == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Session expired. Reload the page and try again."})
			return
		}

		// Fetch requests send the header; plain forms post the field.
		submittedToken := c.GetHeader(csrfTokenHeaderKey)
		if submittedToken == "" {
			submittedToken = c.PostForm(csrfTokenFormKey)
		}

		if subtle.ConstantTimeCompare([]byte(submittedToken), []byte(realToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Invalid CSRF token"})
			return
		}
		c.Next()
	}
}
