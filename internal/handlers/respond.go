package handlers

import (
	"net/http"
	"strconv"

	"arogyam-go/internal/validation"

	"github.com/gin-gonic/gin"
)

// Context keys shared with the router middleware.
const (
	AdminContextKey      = "admin"
	AdminTokenContextKey = "admin_token"
	PatientContextKey    = "patient"
	PatientSessionKey    = "patientID"
)

// adminError is the error shape of the admin surface.
func adminError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// failure is the error shape of the public and portal endpoints.
func failure(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

func validationFailed(c *gin.Context, form *validation.Form) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"success": false,
		"error":   "Please correct the highlighted fields",
		"fields":  form.Errors,
	})
}

// pathID parses the :id parameter, answering 404 when it is not a number.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		adminError(c, http.StatusNotFound, "Not found")
		return 0, false
	}
	return uint(id), true
}
