package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"medicare-backend/services"
	"medicare-backend/shared/security"
	"medicare-backend/store/memstore"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *memstore.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := memstore.New()
	passwords := services.Passwords{Cost: bcrypt.MinCost}
	logger := zerolog.Nop()

	_, err := services.NewSeeder(db.Users(), passwords, logger).Seed(context.Background())
	require.NoError(t, err)

	router := NewRouter(Deps{
		Users:        db.Users(),
		Profiles:     db.Profiles(),
		Appointments: db.Appointments(),
		DB:           db,
		Tokens:       security.NewTokenManager("test-secret", time.Hour, 24*time.Hour),
		Passwords:    passwords,
		Logger:       logger,
	})
	return &testServer{t: t, router: router, db: db}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(identifier, password string) security.TokenPair {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login/", "", gin.H{"username_or_email": identifier, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var pair security.TokenPair
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &pair))
	return pair
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRegisterLoginAndBook(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/users/", "", gin.H{
		"email":      "john@example.com",
		"password":   "password123",
		"first_name": "John",
		"last_name":  "Doe",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	john := decode[map[string]interface{}](t, w)
	assert.Equal(t, "patient", john["role"])
	assert.Equal(t, "john@example.com", john["username"])
	assert.NotContains(t, john, "password")
	johnID := john["id"].(float64)

	pair := s.login("john@example.com", "password123")
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	// The patient in the payload is ignored.
	w = s.do(http.MethodPost, "/api/appointments/", pair.Access, gin.H{
		"doctor":  5,
		"date":    "2024-06-01",
		"time":    "10:00",
		"patient": 99,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]interface{}](t, w)
	assert.Equal(t, johnID, created["patient"])
	assert.Equal(t, float64(200), created["consultation_fee"])

	w = s.do(http.MethodGet, "/api/appointments/", pair.Access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]interface{}](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "pending", list[0]["status"])
	assert.Equal(t, johnID, list[0]["patient"])
	assert.Equal(t, "10:00", list[0]["time"])
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/users/", "", gin.H{
		"email":      "short@example.com",
		"password":   "short",
		"first_name": "Short",
		"last_name":  "Password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[security.ErrorResponse](t, w)
	assert.Equal(t, security.CodeValidationError, body.Code)
	assert.Contains(t, body.Details, "password")

	w = s.do(http.MethodPost, "/api/users/", "", gin.H{
		"email":      "admin@medicare.com",
		"password":   "password123",
		"first_name": "Dup",
		"last_name":  "Licate",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	body = decode[security.ErrorResponse](t, w)
	assert.Equal(t, security.CodeConflict, body.Code)
	assert.Contains(t, body.Details, "email")
}

func TestLoginFailure(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/login/", "", gin.H{"username": "admin", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login/", "", gin.H{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefresh(t *testing.T) {
	s := newTestServer(t)
	pair := s.login("admin", "Admin@123")

	w := s.do(http.MethodPost, "/api/auth/refresh/", "", gin.H{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]string](t, w)
	assert.NotEmpty(t, body["access"])

	// An access token is not accepted as a refresh token.
	w = s.do(http.MethodPost, "/api/auth/refresh/", "", gin.H{"refresh": pair.Access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/users/profile/", "/api/appointments/", "/api/my-medical-profile/", "/api/admin/users/"} {
		w := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	patient := s.login("john.smith", "Patient@123")
	admin := s.login("admin", "Admin@123")

	w := s.do(http.MethodGet, "/api/admin/users/", patient.Access, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/admin/users/?role=doctor", admin.Access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, w), 4)

	w = s.do(http.MethodPatch, "/api/admin/users/2/", admin.Access, gin.H{"is_verified": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, decode[map[string]interface{}](t, w)["is_verified"])

	w = s.do(http.MethodGet, "/api/users/doctors/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, w), 3)

	w = s.do(http.MethodDelete, "/api/admin/users/1/", admin.Access, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/admin/users/9/", admin.Access, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, "/api/admin/users/9/", admin.Access, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileAndMedicalProfile(t *testing.T) {
	s := newTestServer(t)
	pair := s.login("emma.davis", "Patient@123")

	w := s.do(http.MethodPatch, "/api/users/profile/", pair.Access, gin.H{"bio": "Runner", "phone": "+1 555 0100"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile := decode[map[string]interface{}](t, w)
	assert.Equal(t, "Runner", profile["bio"])
	assert.Equal(t, "O+", profile["blood_group"])

	w = s.do(http.MethodPatch, "/api/users/profile/", pair.Access, gin.H{"role": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/my-medical-profile/", pair.Access, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	medical := decode[map[string]interface{}](t, w)
	assert.Nil(t, medical["allergies"])

	w = s.do(http.MethodPatch, "/api/my-medical-profile/", pair.Access, gin.H{"allergies": "Penicillin", "date_of_birth": "1990-04-12"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	medical = decode[map[string]interface{}](t, w)
	assert.Equal(t, "Penicillin", medical["allergies"])
	assert.Equal(t, "1990-04-12", medical["date_of_birth"])
}

func TestAppointmentScopeOverHTTP(t *testing.T) {
	s := newTestServer(t)
	john := s.login("john.smith", "Patient@123")
	emma := s.login("emma.davis", "Patient@123")
	sarah := s.login("dr.sarah", "Doctor@123")

	w := s.do(http.MethodPost, "/api/appointments/", john.Access, gin.H{"doctor": 2, "date": "2024-07-01", "time": "09:30"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int64(decode[map[string]interface{}](t, w)["id"].(float64))
	path := "/api/appointments/" + jsonNumber(id) + "/"

	// Same doctor, same slot.
	w = s.do(http.MethodPost, "/api/appointments/", emma.Access, gin.H{"doctor": 2, "date": "2024-07-01", "time": "09:30:00"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, path, emma.Access, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPatch, path, sarah.Access, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", decode[map[string]interface{}](t, w)["status"])

	w = s.do(http.MethodPut, path, john.Access, gin.H{"notes": "only notes"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/appointments/?status=approved", sarah.Access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, w), 1)

	w = s.do(http.MethodGet, "/api/appointments/?status=bogus", sarah.Access, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, path, john.Access, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, path, john.Access, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]interface{}](t, w)["status"])
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
