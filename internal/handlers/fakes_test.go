package handlers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"arogyam-go/internal/models"
	"arogyam-go/internal/repository"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errBackend = errors.New("connection refused")

type fakeConsultations struct {
	mu    sync.Mutex
	rows  map[uint]*models.Consultation
	next  uint
	fail  bool
	clock func() time.Time

	// knownPatients, when set, stands in for the patients table.
	knownPatients map[uint]bool
}

func newFakeConsultations(rows ...models.Consultation) *fakeConsultations {
	f := &fakeConsultations{rows: map[uint]*models.Consultation{}, clock: time.Now}
	for i := range rows {
		r := rows[i]
		f.rows[r.ID] = &r
		if r.ID > f.next {
			f.next = r.ID
		}
	}
	return f
}

func (f *fakeConsultations) List(ctx context.Context) ([]models.Consultation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackend
	}
	out := make([]models.Consultation, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeConsultations) Create(ctx context.Context, c *models.Consultation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBackend
	}
	f.next++
	c.ID = f.next
	c.CreatedAt = f.clock()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	f.rows[c.ID] = &stored
	return nil
}

func (f *fakeConsultations) UpdateStatus(ctx context.Context, id uint, status models.ConsultationStatus) (*models.Consultation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackend
	}
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = f.clock()
	out := *r
	return &out, nil
}

func (f *fakeConsultations) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBackend
	}
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeConsultations) ListForPatient(ctx context.Context, p *models.Patient) ([]models.Consultation, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Consultation
	for _, c := range all {
		if c.PatientID != nil && *c.PatientID == p.ID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConsultations) LinkPatient(ctx context.Context, id, patientID uint) (*models.Consultation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackend
	}
	if f.knownPatients != nil && !f.knownPatients[patientID] {
		return nil, repository.ErrPatientNotFound
	}
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	pid := patientID
	r.PatientID = &pid
	r.UpdatedAt = f.clock()
	out := *r
	return &out, nil
}

type fakePatients struct {
	mu   sync.Mutex
	rows map[uint]*models.Patient
	next uint
	fail bool
}

func newFakePatients(rows ...models.Patient) *fakePatients {
	f := &fakePatients{rows: map[uint]*models.Patient{}}
	for i := range rows {
		r := rows[i]
		f.rows[r.ID] = &r
		if r.ID > f.next {
			f.next = r.ID
		}
	}
	return f
}

func (f *fakePatients) List(ctx context.Context) ([]models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackend
	}
	out := make([]models.Patient, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePatients) Search(ctx context.Context, q string) ([]models.Patient, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Patient
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePatients) Get(ctx context.Context, id uint) (*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackend
	}
	p, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakePatients) GetByEmail(ctx context.Context, email string) (*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackend
	}
	for _, p := range f.rows {
		if strings.EqualFold(p.Email, email) {
			out := *p
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePatients) Create(ctx context.Context, p *models.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBackend
	}
	f.next++
	p.ID = f.next
	stored := *p
	f.rows[p.ID] = &stored
	return nil
}

func (f *fakePatients) Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.Patient, error) {
	f.mu.Lock()
	p, ok := f.rows[id]
	if !ok {
		f.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	for k, v := range changes {
		switch k {
		case "name":
			p.Name = v.(string)
		case "email":
			p.Email = v.(string)
		case "phone":
			p.Phone = v.(string)
		case "address":
			p.Address = v.(string)
		case "password":
			p.Password = v.(string)
		}
	}
	f.mu.Unlock()
	return f.Get(ctx, id)
}

func (f *fakePatients) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakePrescriptions struct {
	mu   sync.Mutex
	rows []models.Prescription
	fail bool
}

func (f *fakePrescriptions) List(ctx context.Context) ([]models.Prescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackend
	}
	return append([]models.Prescription(nil), f.rows...), nil
}

func (f *fakePrescriptions) ListForPatient(ctx context.Context, patientID uint) ([]models.Prescription, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Prescription
	for _, p := range all {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePrescriptions) Create(ctx context.Context, p *models.Prescription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *p)
	return nil
}

func (f *fakePrescriptions) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.rows {
		if p.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeMetrics struct {
	mu   sync.Mutex
	rows []models.PerformanceMetric
	fail bool
}

func (f *fakeMetrics) SaveMetrics(ctx context.Context, rows []models.PerformanceMetric) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBackend
	}
	f.rows = append(f.rows, rows...)
	return nil
}

type fakeAdmins struct {
	mu       sync.Mutex
	admin    *models.AdminUser
	sessions map[string]time.Time
}

func (f *fakeAdmins) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if f.admin == nil || !strings.EqualFold(f.admin.Email, email) {
		return nil, repository.ErrNotFound
	}
	return f.admin, nil
}

func (f *fakeAdmins) CreateSession(ctx context.Context, adminID uint, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[token] = expiresAt
	return nil
}

func (f *fakeAdmins) DeleteSession(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

type staticCatalog struct {
	catalog *models.Catalog
	err     error
}

func (s staticCatalog) Load(ctx context.Context) (*models.Catalog, error) {
	return s.catalog, s.err
}

var testCatalog = staticCatalog{catalog: &models.Catalog{Types: []models.ConsultationType{
	{ID: "acute", Title: "Acute Care", Minutes: 20, Fee: 500},
	{ID: "chronic", Title: "Chronic Care", Minutes: 45, Fee: 1200, Online: true},
}}}
