package handlers

import (
	"errors"
	"net/http"

	"arogyam-go/internal/models"
	"arogyam-go/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConsultationsHandler is the admin view of bookings.
type ConsultationsHandler struct {
	log   *zap.Logger
	store ConsultationStore
}

func NewConsultationsHandler(log *zap.Logger, store ConsultationStore) *ConsultationsHandler {
	return &ConsultationsHandler{log: log, store: store}
}

func (h *ConsultationsHandler) List(c *gin.Context) {
	consultations, err := h.store.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list consultations", zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to load consultations")
		return
	}
	if consultations == nil {
		consultations = []models.Consultation{}
	}
	c.JSON(http.StatusOK, consultations)
}

type statusUpdate struct {
	Status models.ConsultationStatus `json:"status" binding:"required"`
}

func (h *ConsultationsHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body statusUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		adminError(c, http.StatusUnprocessableEntity, "status is required")
		return
	}
	if !body.Status.Valid() {
		adminError(c, http.StatusUnprocessableEntity, "status must be one of pending, confirmed, completed, cancelled")
		return
	}

	updated, err := h.store.UpdateStatus(c.Request.Context(), id, body.Status)
	if errors.Is(err, repository.ErrNotFound) {
		adminError(c, http.StatusNotFound, "Consultation not found")
		return
	}
	if err != nil {
		h.log.Error("Failed to update consultation status", zap.Uint("consultationID", id), zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to update consultation")
		return
	}
	h.log.Info("Consultation status updated", zap.Uint("consultationID", id), zap.String("status", string(body.Status)))
	c.JSON(http.StatusOK, updated)
}

type patientLink struct {
	PatientID uint `json:"patient_id" binding:"required"`
}

// LinkPatient attaches an anonymous booking to a patient once the clinic has
// confirmed who made it. Only linked bookings show up in the portal.
func (h *ConsultationsHandler) LinkPatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body patientLink
	if err := c.ShouldBindJSON(&body); err != nil {
		adminError(c, http.StatusUnprocessableEntity, "patient_id is required")
		return
	}

	linked, err := h.store.LinkPatient(c.Request.Context(), id, body.PatientID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		adminError(c, http.StatusNotFound, "Consultation not found")
		return
	case errors.Is(err, repository.ErrPatientNotFound):
		adminError(c, http.StatusUnprocessableEntity, "Patient not found")
		return
	case err != nil:
		h.log.Error("Failed to link consultation", zap.Uint("consultationID", id), zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to link consultation")
		return
	}
	h.log.Info("Consultation linked to patient", zap.Uint("consultationID", id), zap.Uint("patientID", body.PatientID))
	c.JSON(http.StatusOK, linked)
}

func (h *ConsultationsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := h.store.Delete(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		adminError(c, http.StatusNotFound, "Consultation not found")
		return
	}
	if err != nil {
		h.log.Error("Failed to delete consultation", zap.Uint("consultationID", id), zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to delete consultation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
