package router

import (
	"errors"
	"net/http"

	"arogyam-go/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CspNonceContextKey = "csp_nonce"

// NonceMiddleware keeps one cryptographic nonce per session and adds it to
// the Gin context for the CSP header and templates.
func NonceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		nonce, _ := session.Get(CspNonceContextKey).(string)
		if nonce == "" {
			var err error
			nonce, err = utils.GenerateSecureToken(32)
			if err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to generate CSP nonce"))
				return
			}
			session.Set(CspNonceContextKey, nonce)
			if err := session.Save(); err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to save session"))
				return
			}
		}

		c.Set(CspNonceContextKey, nonce)
		c.Next()
	}
}
