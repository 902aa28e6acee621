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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PatientsHandler struct {
	log           *zap.Logger
	patients      PatientStore
	prescriptions PrescriptionStore
}

func NewPatientsHandler(log *zap.Logger, patients PatientStore, prescriptions PrescriptionStore) *PatientsHandler {
	return &PatientsHandler{log: log, patients: patients, prescriptions: prescriptions}
}

type patientInput struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	DateOfBirth    *string `json:"date_of_birth"`
	Address        *string `json:"address"`
	MedicalHistory *string `json:"medical_history"`
	Password       *string `json:"password"`
}

func (in patientInput) values() map[string]string {
	values := map[string]string{}
	set := func(k string, v *string) {
		if v != nil {
			values[k] = *v
		}
	}
	set("name", in.Name)
	set("email", in.Email)
	set("phone", in.Phone)
	set("date_of_birth", in.DateOfBirth)
	set("address", in.Address)
	set("medical_history", in.MedicalHistory)
	return values
}

func validatePatient(form *validation.Form, in patientInput) {
	form.MaxLength("name", 120).Email("email").Phone("phone").MaxLength("address", 500)
	if dob := form.Get("date_of_birth"); dob != "" {
		if d, err := time.Parse("2006-01-02", dob); err != nil || d.After(time.Now()) {
			form.AddError("date_of_birth", "Enter a past date as YYYY-MM-DD")
		}
	}
	if in.Password != nil && !utils.IsComplexPassword(*in.Password) {
		form.AddError("password", "Password needs 8+ characters with upper and lower case, a number and a symbol")
	}
}

func (h *PatientsHandler) List(c *gin.Context) {
	var (
		patients []models.Patient
		err      error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		patients, err = h.patients.Search(c.Request.Context(), q)
	} else {
		patients, err = h.patients.List(c.Request.Context())
	}
	if err != nil {
		h.log.Error("Failed to list patients", zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to load patients")
		return
	}
	if patients == nil {
		patients = []models.Patient{}
	}
	c.JSON(http.StatusOK, patients)
}

func (h *PatientsHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	patient, err := h.patients.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		adminError(c, http.StatusNotFound, "Patient not found")
		return
	}
	if err != nil {
		h.log.Error("Failed to load patient", zap.Uint("patientID", id), zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to load patient")
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (h *PatientsHandler) Create(c *gin.Context) {
	var in patientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		adminError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	form := validation.New(in.values())
	form.Required("name", "email")
	validatePatient(form, in)
	if !form.Valid() {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid patient", "fields": form.Errors})
		return
	}

	patient := &models.Patient{
		Name:           form.Get("name"),
		Email:          strings.ToLower(form.Get("email")),
		Phone:          form.Get("phone"),
		Address:        form.Get("address"),
		MedicalHistory: form.Get("medical_history"),
	}
	if dob := form.Get("date_of_birth"); dob != "" {
		d, _ := time.Parse("2006-01-02", dob)
		patient.DateOfBirth = &d
	}
	if in.Password != nil {
		if err := patient.SetPassword(*in.Password); err != nil {
			h.log.Error("Failed to hash patient password", zap.Error(err))
			adminError(c, http.StatusInternalServerError, "Failed to create patient")
			return
		}
	}

	if err := h.patients.Create(c.Request.Context(), patient); err != nil {
		h.log.Error("Failed to create patient", zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to create patient")
		return
	}
	h.log.Info("Patient created", zap.Uint("patientID", patient.ID))
	c.JSON(http.StatusCreated, patient)
}

func (h *PatientsHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in patientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		adminError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	form := validation.New(in.values())
	if in.Name != nil {
		form.Required("name")
	}
	if in.Email != nil {
		form.Required("email")
	}
	validatePatient(form, in)
	if !form.Valid() {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid patient", "fields": form.Errors})
		return
	}

	changes := map[string]interface{}{"updated_at": time.Now().UTC()}
	for field := range in.values() {
		changes[field] = form.Get(field)
	}
	if email, ok := changes["email"].(string); ok {
		changes["email"] = strings.ToLower(email)
	}
	if dob, ok := changes["date_of_birth"].(string); ok {
		if dob == "" {
			changes["date_of_birth"] = nil
		} else {
			d, _ := time.Parse("2006-01-02", dob)
			changes["date_of_birth"] = d
		}
	}
	if in.Password != nil {
		var p models.Patient
		if err := p.SetPassword(*in.Password); err != nil {
			h.log.Error("Failed to hash patient password", zap.Error(err))
			adminError(c, http.StatusInternalServerError, "Failed to update patient")
			return
		}
		changes["password"] = p.Password
	}

	patient, err := h.patients.Update(c.Request.Context(), id, changes)
	if errors.Is(err, repository.ErrNotFound) {
		adminError(c, http.StatusNotFound, "Patient not found")
		return
	}
	if err != nil {
		h.log.Error("Failed to update patient", zap.Uint("patientID", id), zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to update patient")
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (h *PatientsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := h.patients.Delete(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		adminError(c, http.StatusNotFound, "Patient not found")
		return
	}
	if err != nil {
		h.log.Error("Failed to delete patient", zap.Uint("patientID", id), zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to delete patient")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// Prescriptions lists the prescriptions of one patient.
func (h *PatientsHandler) Prescriptions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.patients.Get(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			adminError(c, http.StatusNotFound, "Patient not found")
			return
		}
		h.log.Error("Failed to load patient", zap.Uint("patientID", id), zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to load prescriptions")
		return
	}
	list, err := h.prescriptions.ListForPatient(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to list prescriptions", zap.Uint("patientID", id), zap.Error(err))
		adminError(c, http.StatusInternalServerError, "Failed to load prescriptions")
		return
	}
	if list == nil {
		list = []models.Prescription{}
	}
	c.JSON(http.StatusOK, list)
}
