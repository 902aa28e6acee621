package handlers

import (
	"context"
	"net/http"
	"testing"

	"arogyam-go/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func patientsRouter(patients PatientStore, prescriptions PrescriptionStore) *gin.Engine {
	h := NewPatientsHandler(zap.NewNop(), patients, prescriptions)
	p := NewPrescriptionsHandler(zap.NewNop(), prescriptions, patients)
	r := gin.New()
	r.GET("/api/admin/patients", h.List)
	r.POST("/api/admin/patients", h.Create)
	r.GET("/api/admin/patients/:id", h.Get)
	r.PUT("/api/admin/patients/:id", h.Update)
	r.DELETE("/api/admin/patients/:id", h.Delete)
	r.GET("/api/admin/patients/:id/prescriptions", h.Prescriptions)
	r.GET("/api/admin/prescriptions", p.List)
	r.POST("/api/admin/prescriptions", p.Create)
	r.DELETE("/api/admin/prescriptions/:id", p.Delete)
	return r
}

func TestPatients_CreateAndGet(t *testing.T) {
	patients := newFakePatients()
	r := patientsRouter(patients, &fakePrescriptions{})

	w := perform(r, http.MethodPost, "/api/admin/patients",
		`{"name":"Asha Rao","email":"ASHA@example.com","phone":"+91 98765 43210","date_of_birth":"1990-05-17"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "asha@example.com", created["email"])
	assert.NotContains(t, created, "password")

	w = perform(r, http.MethodGet, "/api/admin/patients/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha Rao", decode(t, w)["name"])

	w = perform(r, http.MethodGet, "/api/admin/patients/41", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = perform(r, http.MethodGet, "/api/admin/patients/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatients_CreateValidation(t *testing.T) {
	patients := newFakePatients()
	r := patientsRouter(patients, &fakePrescriptions{})

	w := perform(r, http.MethodPost, "/api/admin/patients",
		`{"email":"not-an-email","date_of_birth":"2999-01-01","password":"short"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	for _, f := range []string{"name", "email", "date_of_birth", "password"} {
		assert.Contains(t, fields, f)
	}

	list, _ := patients.List(context.Background())
	assert.Empty(t, list)
}

func TestPatients_ListAndSearch(t *testing.T) {
	r := patientsRouter(newFakePatients(
		models.Patient{ID: 1, Name: "Asha Rao", Email: "asha@example.com"},
		models.Patient{ID: 2, Name: "Ravi Kumar", Email: "ravi@example.com"},
	), &fakePrescriptions{})

	w := perform(r, http.MethodGet, "/api/admin/patients", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ravi Kumar")

	w = perform(r, http.MethodGet, "/api/admin/patients?q=asha", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Asha Rao")
	assert.NotContains(t, w.Body.String(), "Ravi Kumar")

	w = perform(r, http.MethodGet, "/api/admin/patients?q=nobody", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPatients_UpdateIsPartial(t *testing.T) {
	patients := newFakePatients(models.Patient{ID: 1, Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210"})
	r := patientsRouter(patients, &fakePrescriptions{})

	w := perform(r, http.MethodPut, "/api/admin/patients/1", `{"address":"12 MG Road, Pune"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p, err := patients.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "12 MG Road, Pune", p.Address)
	assert.Equal(t, "Asha Rao", p.Name)
	assert.Equal(t, "9876543210", p.Phone)

	w = perform(r, http.MethodPut, "/api/admin/patients/1", `{"name":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(r, http.MethodPut, "/api/admin/patients/7", `{"address":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatients_Delete(t *testing.T) {
	r := patientsRouter(newFakePatients(models.Patient{ID: 1, Name: "Asha Rao"}), &fakePrescriptions{})

	w := perform(r, http.MethodDelete, "/api/admin/patients/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":1}`, w.Body.String())

	w = perform(r, http.MethodDelete, "/api/admin/patients/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatients_Prescriptions(t *testing.T) {
	prescriptions := &fakePrescriptions{rows: []models.Prescription{
		{ID: 1, PatientID: 1, Dosage: "Arnica 30C"},
		{ID: 2, PatientID: 2, Dosage: "Nux Vomica 6C"},
	}}
	r := patientsRouter(newFakePatients(models.Patient{ID: 1}, models.Patient{ID: 3}), prescriptions)

	w := perform(r, http.MethodGet, "/api/admin/patients/1/prescriptions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Arnica 30C")
	assert.NotContains(t, w.Body.String(), "Nux Vomica")

	w = perform(r, http.MethodGet, "/api/admin/patients/3/prescriptions", "")
	assert.JSONEq(t, `[]`, w.Body.String())

	w = perform(r, http.MethodGet, "/api/admin/patients/2/prescriptions", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPrescriptions_Create(t *testing.T) {
	prescriptions := &fakePrescriptions{}
	r := patientsRouter(newFakePatients(models.Patient{ID: 1}), prescriptions)

	w := perform(r, http.MethodPost, "/api/admin/prescriptions",
		`{"patient_id":1,"remedies":[" Arnica 30C ","Rhus Tox 200C"],"dosage":"4 pills twice daily","follow_up_date":"2026-04-01"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Len(t, prescriptions.rows, 1)
	p := prescriptions.rows[0]
	assert.Equal(t, []string{"Arnica 30C", "Rhus Tox 200C"}, []string(p.Remedies))
	require.NotNil(t, p.FollowUpDate)
	assert.Equal(t, "2026-04-01", p.FollowUpDate.Format("2006-01-02"))
}

func TestPrescriptions_CreateRejections(t *testing.T) {
	prescriptions := &fakePrescriptions{}
	r := patientsRouter(newFakePatients(models.Patient{ID: 1}), prescriptions)

	bodies := map[string]string{
		"no remedies":     `{"patient_id":1,"remedies":[],"dosage":"daily"}`,
		"no dosage":       `{"patient_id":1,"remedies":["Arnica"]}`,
		"bad date":        `{"patient_id":1,"remedies":["Arnica"],"dosage":"daily","follow_up_date":"next week"}`,
		"unknown patient": `{"patient_id":9,"remedies":["Arnica"],"dosage":"daily"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			w := perform(r, http.MethodPost, "/api/admin/prescriptions", body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
	assert.Empty(t, prescriptions.rows)
}

func TestPrescriptions_Delete(t *testing.T) {
	prescriptions := &fakePrescriptions{rows: []models.Prescription{{ID: 1, PatientID: 1}}}
	r := patientsRouter(newFakePatients(), prescriptions)

	w := perform(r, http.MethodDelete, "/api/admin/prescriptions/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = perform(r, http.MethodDelete, "/api/admin/prescriptions/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
