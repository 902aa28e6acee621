package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"arogyam-go/internal/models"
	"arogyam-go/internal/validation"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogSource yields the consultation-type catalog.
type CatalogSource interface {
	Load(ctx context.Context) (*models.Catalog, error)
}

// BookingHandler takes consultation requests from the public site.
type BookingHandler struct {
	log           *zap.Logger
	consultations ConsultationStore
	catalog       CatalogSource
	clock         clock.Clock
}

func NewBookingHandler(log *zap.Logger, consultations ConsultationStore, catalog CatalogSource, clk clock.Clock) *BookingHandler {
	return &BookingHandler{log: log, consultations: consultations, catalog: catalog, clock: clk}
}

type bookingRequest struct {
	Name             string      `form:"name" json:"name"`
	Email            string      `form:"email" json:"email"`
	Phone            string      `form:"phone" json:"phone"`
	Age              looseString `form:"age" json:"age"`
	Gender           string      `form:"gender" json:"gender"`
	ConsultationType string      `form:"consultation_type" json:"consultation_type"`
	PreferredDate    string      `form:"preferred_date" json:"preferred_date"`
	PreferredTime    string      `form:"preferred_time" json:"preferred_time"`
	Symptoms         string      `form:"symptoms" json:"symptoms"`
}

// looseString accepts a JSON string or number, so form scripts may post
// the age either way.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

func (h *BookingHandler) Types(c *gin.Context) {
	catalog, err := h.catalog.Load(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to load consultation types", zap.Error(err))
		failure(c, http.StatusServiceUnavailable, "Consultation types are unavailable right now. Please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": catalog.Types})
}

func (h *BookingHandler) Create(c *gin.Context) {
	var in bookingRequest
	if err := c.ShouldBind(&in); err != nil {
		failure(c, http.StatusBadRequest, "Invalid booking request")
		return
	}

	catalog, err := h.catalog.Load(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to load consultation types", zap.Error(err))
		failure(c, http.StatusServiceUnavailable, "Booking is unavailable right now. Please try again.")
		return
	}

	form := validation.New(map[string]string{
		"name":              in.Name,
		"email":             in.Email,
		"phone":             in.Phone,
		"age":               string(in.Age),
		"gender":            in.Gender,
		"consultation_type": in.ConsultationType,
		"preferred_date":    in.PreferredDate,
		"preferred_time":    in.PreferredTime,
		"symptoms":          in.Symptoms,
	})
	form.Required("name", "email", "phone", "consultation_type", "preferred_date").
		MinLength("name", 2).
		MaxLength("name", 120).
		Email("email").
		Phone("phone").
		Range("age", 1, 120).
		OneOf("gender", "female", "male", "other").
		OneOf("consultation_type", catalog.IDs()...).
		DateNotPast("preferred_date", h.clock.Now()).
		MaxLength("preferred_time", 20).
		MaxLength("symptoms", 2000)
	if !form.Valid() {
		validationFailed(c, form)
		return
	}

	consultation := &models.Consultation{
		Name:             form.Get("name"),
		Email:            strings.ToLower(form.Get("email")),
		Phone:            form.Get("phone"),
		Age:              form.Int("age"),
		Gender:           form.Get("gender"),
		ConsultationType: form.Get("consultation_type"),
		PreferredDate:    form.Date("preferred_date"),
		PreferredTime:    form.Get("preferred_time"),
		Symptoms:         form.Get("symptoms"),
		Status:           models.StatusPending,
	}
	if v, ok := c.Get(PatientContextKey); ok {
		if patient, ok := v.(*models.Patient); ok {
			consultation.PatientID = &patient.ID
		}
	}

	if err := h.consultations.Create(c.Request.Context(), consultation); err != nil {
		h.log.Error("Failed to save consultation", zap.Error(err))
		failure(c, http.StatusInternalServerError, "We could not save your booking. Please try again.")
		return
	}
	h.log.Info("Consultation booked", zap.Uint("consultationID", consultation.ID), zap.String("type", consultation.ConsultationType))
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": consultation})
}
