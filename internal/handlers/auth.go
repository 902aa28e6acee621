package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"arogyam-go/internal/models"
	"arogyam-go/internal/repository"
	"arogyam-go/internal/utils"
	"arogyam-go/internal/validation"

	"github.com/benbjohnson/clock"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type credentials struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// AuthHandler issues and revokes admin bearer tokens.
type AuthHandler struct {
	log    *zap.Logger
	admins AdminStore
	clock  clock.Clock
	ttl    func() time.Duration
}

// NewAuthHandler reads ttl on every sign-in so a reloaded configuration
// applies to the next token issued.
func NewAuthHandler(log *zap.Logger, admins AdminStore, clk clock.Clock, ttl func() time.Duration) *AuthHandler {
	return &AuthHandler{log: log, admins: admins, clock: clk, ttl: ttl}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var creds credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		adminError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	admin, err := h.admins.GetByEmail(c.Request.Context(), strings.TrimSpace(creds.Email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.log.Error("Failed to load admin", zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	var hash string
	if admin != nil {
		hash = admin.Password
	}
	if !models.VerifyPassword(hash, creds.Password) {
		h.log.Warn("Admin login failed", zap.String("email", creds.Email), zap.String("client_ip", c.ClientIP()))
		adminError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		h.log.Error("Failed to generate admin token", zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	expiresAt := h.clock.Now().Add(h.ttl()).UTC()
	if err := h.admins.CreateSession(c.Request.Context(), admin.ID, token, expiresAt); err != nil {
		h.log.Error("Failed to store admin session", zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	h.log.Info("Admin signed in", zap.Uint("adminID", admin.ID))
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": expiresAt})
}

// Logout revokes the token that authenticated the request.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(AdminTokenContextKey)
	if err := h.admins.DeleteSession(c.Request.Context(), token); err != nil {
		h.log.Error("Failed to revoke admin session", zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"signed_out": true})
}

// PortalAuthHandler signs patients in and out of the cookie session.
type PortalAuthHandler struct {
	log      *zap.Logger
	patients PatientStore
}

func NewPortalAuthHandler(log *zap.Logger, patients PatientStore) *PortalAuthHandler {
	return &PortalAuthHandler{log: log, patients: patients}
}

func (h *PortalAuthHandler) Login(c *gin.Context) {
	session := sessions.Default(c)
	var creds credentials
	if err := c.ShouldBind(&creds); err != nil {
		failure(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	patient, err := h.patients.GetByEmail(c.Request.Context(), strings.TrimSpace(creds.Email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.log.Error("Failed to load patient", zap.Error(err))
		failure(c, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	var hash string
	if patient != nil {
		hash = patient.Password
	}
	if !models.VerifyPassword(hash, creds.Password) {
		failure(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	session.Set(PatientSessionKey, patient.ID)
	if err := session.Save(); err != nil {
		h.log.Error("Failed to save session", zap.Error(err))
		failure(c, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": patient})
}

type registration struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone" json:"phone"`
	Password string `form:"password" json:"password"`
}

func (h *PortalAuthHandler) Register(c *gin.Context) {
	var in registration
	if err := c.ShouldBind(&in); err != nil {
		failure(c, http.StatusBadRequest, "Invalid registration")
		return
	}
	form := validation.New(map[string]string{"name": in.Name, "email": in.Email, "phone": in.Phone})
	form.Required("name", "email").MaxLength("name", 120).Email("email").Phone("phone")
	if !utils.IsComplexPassword(in.Password) {
		form.AddError("password", "Password needs 8+ characters with upper and lower case, a number and a symbol")
	}
	if !form.Valid() {
		validationFailed(c, form)
		return
	}

	email := strings.ToLower(form.Get("email"))
	if _, err := h.patients.GetByEmail(c.Request.Context(), email); err == nil {
		failure(c, http.StatusConflict, "An account with this email already exists")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		h.log.Error("Failed to check patient email", zap.Error(err))
		failure(c, http.StatusInternalServerError, "Failed to register")
		return
	}

	patient := &models.Patient{Name: form.Get("name"), Email: email, Phone: form.Get("phone")}
	if err := patient.SetPassword(in.Password); err != nil {
		h.log.Error("Failed to hash password", zap.Error(err))
		failure(c, http.StatusInternalServerError, "Failed to register")
		return
	}
	if err := h.patients.Create(c.Request.Context(), patient); err != nil {
		h.log.Error("Failed to create patient", zap.Error(err))
		failure(c, http.StatusInternalServerError, "Failed to register")
		return
	}

	session := sessions.Default(c)
	session.Set(PatientSessionKey, patient.ID)
	if err := session.Save(); err != nil {
		h.log.Error("Failed to save session", zap.Error(err))
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": patient})
}

func (h *PortalAuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		failure(c, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
