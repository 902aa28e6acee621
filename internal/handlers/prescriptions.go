package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"arogyam-go/internal/models"
	"arogyam-go/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type PrescriptionsHandler struct {
	log           *zap.Logger
	prescriptions PrescriptionStore
	patients      PatientStore
}

func NewPrescriptionsHandler(log *zap.Logger, prescriptions PrescriptionStore, patients PatientStore) *PrescriptionsHandler {
	return &PrescriptionsHandler{log: log, prescriptions: prescriptions, patients: patients}
}

type prescriptionInput struct {
	PatientID      uint     `json:"patient_id" binding:"required"`
	ConsultationID *uint    `json:"consultation_id"`
	Remedies       []string `json:"remedies" binding:"required,min=1,dive,required"`
	Dosage         string   `json:"dosage" binding:"required,max=255"`
	Instructions   string   `json:"instructions" binding:"max=2000"`
	FollowUpDate   string   `json:"follow_up_date"`
}

func (h *PrescriptionsHandler) List(c *gin.Context) {
	list, err := h.prescriptions.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list prescriptions", zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to load prescriptions")
		return
	}
	if list == nil {
		list = []models.Prescription{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *PrescriptionsHandler) Create(c *gin.Context) {
	var in prescriptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		adminError(c, http.StatusUnprocessableEntity, "patient_id, remedies and dosage are required")
		return
	}

	remedies := make(pq.StringArray, 0, len(in.Remedies))
	for _, r := range in.Remedies {
		remedies = append(remedies, strings.TrimSpace(r))
	}
	p := &models.Prescription{
		PatientID:      in.PatientID,
		ConsultationID: in.ConsultationID,
		Remedies:       remedies,
		Dosage:         strings.TrimSpace(in.Dosage),
		Instructions:   strings.TrimSpace(in.Instructions),
	}
	if in.FollowUpDate != "" {
		d, err := time.Parse("2006-01-02", in.FollowUpDate)
		if err != nil {
			adminError(c, http.StatusUnprocessableEntity, "follow_up_date must be YYYY-MM-DD")
			return
		}
		p.FollowUpDate = &d
	}

	if _, err := h.patients.Get(c.Request.Context(), in.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			adminError(c, http.StatusUnprocessableEntity, "Unknown patient")
			return
		}
		h.log.Error("Failed to load patient", zap.Uint("patientID", in.PatientID), zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to create prescription")
		return
	}

	if err := h.prescriptions.Create(c.Request.Context(), p); err != nil {
		h.log.Error("Failed to create prescription", zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to create prescription")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PrescriptionsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := h.prescriptions.Delete(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		adminError(c, http.StatusNotFound, "Prescription not found")
		return
	}
	if err != nil {
		h.log.Error("Failed to delete prescription", zap.Uint("prescriptionID", id), zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to delete prescription")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
