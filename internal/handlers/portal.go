package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"arogyam-go/internal/models"
	"arogyam-go/internal/preferences"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PortalHandler serves a signed-in patient's own records.
type PortalHandler struct {
	log           *zap.Logger
	consultations ConsultationStore
	prescriptions PrescriptionStore
	prefs         *preferences.Store
}

func NewPortalHandler(log *zap.Logger, consultations ConsultationStore, prescriptions PrescriptionStore, prefs *preferences.Store) *PortalHandler {
	return &PortalHandler{log: log, consultations: consultations, prescriptions: prescriptions, prefs: prefs}
}

func currentPatient(c *gin.Context) *models.Patient {
	p, _ := c.MustGet(PatientContextKey).(*models.Patient)
	return p
}

func preferencesKey(patientID uint) string {
	return "preferences:patient:" + strconv.FormatUint(uint64(patientID), 10)
}

func (h *PortalHandler) Consultations(c *gin.Context) {
	patient := currentPatient(c)
	list, err := h.consultations.ListForPatient(c.Request.Context(), patient)
	if err != nil {
		h.log.Error("Failed to list patient consultations", zap.Uint("patientID", patient.ID), zap.Error(err))
		failure(c, http.StatusInternalServerError, "Could not load your consultations. Please try again.")
		return
	}
	if list == nil {
		list = []models.Consultation{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}

func (h *PortalHandler) Prescriptions(c *gin.Context) {
	patient := currentPatient(c)
	list, err := h.prescriptions.ListForPatient(c.Request.Context(), patient.ID)
	if err != nil {
		h.log.Error("Failed to list patient prescriptions", zap.Uint("patientID", patient.ID), zap.Error(err))
		failure(c, http.StatusInternalServerError, "Could not load your prescriptions. Please try again.")
		return
	}
	if list == nil {
		list = []models.Prescription{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}

func (h *PortalHandler) GetPreferences(c *gin.Context) {
	patient := currentPatient(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.prefs.Load(preferencesKey(patient.ID))})
}

// PutPreferences merges the posted fields over the stored preferences.
func (h *PortalHandler) PutPreferences(c *gin.Context) {
	patient := currentPatient(c)
	key := preferencesKey(patient.ID)

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 4096))
	if err != nil {
		failure(c, http.StatusBadRequest, "Invalid preferences")
		return
	}
	prefs := h.prefs.Load(key)
	if err := json.Unmarshal(raw, &prefs); err != nil {
		failure(c, http.StatusBadRequest, "Invalid preferences")
		return
	}
	if err := prefs.Validate(); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err := h.prefs.Save(key, prefs); err != nil {
		h.log.Error("Failed to save preferences", zap.Uint("patientID", patient.ID), zap.Error(err))
		failure(c, http.StatusInternalServerError, "Could not save your preferences")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": prefs})
}
