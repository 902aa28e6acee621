package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"arogyam-go/internal/models"
	"arogyam-go/internal/utils"

	"github.com/benbjohnson/clock"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func adminAuthRouter(t *testing.T, clk clock.Clock) (*gin.Engine, *fakeAdmins) {
	admins := &fakeAdmins{
		admin:    &models.AdminUser{ID: 1, Email: "dr.mehta@arogyam.in", Password: hashed(t, "Rem3dy!Kit")},
		sessions: map[string]time.Time{},
	}
	h := NewAuthHandler(zap.NewNop(), admins, clk, func() time.Duration { return 12 * time.Hour })
	r := gin.New()
	r.POST("/api/admin/login", h.Login)
	r.POST("/api/admin/logout", func(c *gin.Context) {
		c.Set(AdminTokenContextKey, c.GetHeader("X-Test-Token"))
	}, h.Logout)
	return r, admins
}

func TestAdminLogin_IssuesLongToken(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	r, admins := adminAuthRouter(t, clk)

	w := perform(r, http.MethodPost, "/api/admin/login", `{"email":"dr.mehta@arogyam.in","password":"Rem3dy!Kit"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	token := body["token"].(string)
	assert.GreaterOrEqual(t, len(token), utils.MinBearerTokenLength)
	assert.Equal(t, "2026-03-10T21:00:00Z", body["expires_at"])

	expiry, ok := admins.sessions[token]
	require.True(t, ok)
	assert.Equal(t, clk.Now().Add(12*time.Hour), expiry)
}

func TestAdminLogin_Rejections(t *testing.T) {
	r, admins := adminAuthRouter(t, clock.NewMock())
	tests := []struct {
		name string
		body string
		code int
	}{
		{"wrong password", `{"email":"dr.mehta@arogyam.in","password":"nope"}`, http.StatusUnauthorized},
		{"unknown admin", `{"email":"someone@arogyam.in","password":"Rem3dy!Kit"}`, http.StatusUnauthorized},
		{"missing fields", `{"email":"dr.mehta@arogyam.in"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodPost, "/api/admin/login", tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
	assert.Empty(t, admins.sessions)
}

func TestAdminLogout_RevokesToken(t *testing.T) {
	r, admins := adminAuthRouter(t, clock.NewMock())
	admins.sessions["tok-abcdefghijklmnopqrstuvwxyz-0123456789"] = time.Now().Add(time.Hour)

	req := serveRequest(http.MethodPost, "/api/admin/logout")
	req.Header.Set("X-Test-Token", "tok-abcdefghijklmnopqrstuvwxyz-0123456789")
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, admins.sessions)
}

func portalAuthRouter(patients PatientStore) *gin.Engine {
	h := NewPortalAuthHandler(zap.NewNop(), patients)
	r := gin.New()
	r.Use(sessions.Sessions("arogyam_session", cookie.NewStore([]byte("test-secret-test-secret-test-secret"))))
	r.POST("/portal/login", h.Login)
	r.POST("/portal/register", h.Register)
	r.POST("/portal/logout", h.Logout)
	return r
}

func TestPortalRegister(t *testing.T) {
	patients := newFakePatients()
	r := portalAuthRouter(patients)

	w := perform(r, http.MethodPost, "/portal/register",
		`{"name":"Asha Rao","email":"Asha@Example.com","phone":"9876543210","password":"Calend!ula9"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"))

	stored, err := patients.GetByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", stored.Email)
	assert.NotEqual(t, "Calend!ula9", stored.Password)
	assert.True(t, stored.CheckPassword("Calend!ula9"))
	assert.NotContains(t, w.Body.String(), stored.Password)

	w = perform(r, http.MethodPost, "/portal/register",
		`{"name":"Asha Again","email":"asha@example.com","password":"Calend!ula9"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPortalRegister_WeakPassword(t *testing.T) {
	w := perform(portalAuthRouter(newFakePatients()), http.MethodPost, "/portal/register",
		`{"name":"Asha Rao","email":"asha@example.com","password":"password"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "password")
}

func TestPortalLogin(t *testing.T) {
	patient := models.Patient{ID: 3, Name: "Asha Rao", Email: "asha@example.com"}
	require.NoError(t, patient.SetPassword("Calend!ula9"))
	r := portalAuthRouter(newFakePatients(patient))

	w := serve(r, formRequest(http.MethodPost, "/portal/login", url.Values{
		"email": {"asha@example.com"}, "password": {"Calend!ula9"},
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"))
	assert.Equal(t, true, decode(t, w)["success"])

	w = serve(r, formRequest(http.MethodPost, "/portal/login", url.Values{
		"email": {"asha@example.com"}, "password": {"wrong"},
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}
