package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dentaheal/dentaheal-api/internal/middleware"
	"github.com/dentaheal/dentaheal-api/internal/models"
	"github.com/dentaheal/dentaheal-api/internal/services"
	"github.com/dentaheal/dentaheal-api/internal/stores"
	"github.com/dentaheal/dentaheal-api/internal/utils"
)

func newTestServer(t *testing.T) (*gin.Engine, *stores.MemoryAppointmentStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := stores.NewMemoryAccountStore()
	exts := stores.NewMemoryExtensionStore()
	sessions := stores.NewMemorySessionStore()
	appointments := stores.NewMemoryAppointmentStore()
	tokens := utils.NewTokenManager("test-secret", 7*24*time.Hour)

	accountSvc := services.NewAccountService(accounts, exts, sessions, tokens, 6, 4, zerolog.Nop())
	patientSvc := services.NewPatientDirectoryService(accounts, exts, accountSvc, 6, 4)
	appointmentSvc := services.NewAppointmentQueryService(appointments, accounts, exts, accountSvc)

	h := NewHandler(accountSvc, patientSvc, appointmentSvc, 7*24*time.Hour, zerolog.Nop())

	r := gin.New()
	h.RegisterRoutes(r)
	return r, appointments
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSignupLoginWhoAmILogoutFlow(t *testing.T) {
	r, _ := newTestServer(t)

	// Signup
	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret1",
		"fullName": "Alice Martin",
		"role":     "patient",
		"phone":    "0611111111",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "patient", user["role"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, w.Body.String(), "passwordHash")

	// Login
	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "login must set the session cookie")
	assert.True(t, sessionCookie.HttpOnly)

	// WhoAmI
	w = doJSON(t, r, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "patient", me["role"])
	assert.Equal(t, "0611111111", me["phone"])
	assert.NotEmpty(t, me["createdAt"])

	// Logout, then the token is dead.
	w = doJSON(t, r, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Logging out again still succeeds.
	w = doJSON(t, r, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupValidationAndConflicts(t *testing.T) {
	r, _ := newTestServer(t)

	// Patient without a phone.
	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret1",
		"fullName": "Alice Martin",
		"role":     "patient",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Dentist without a specialty.
	w = doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email":    "drsmith@example.com",
		"password": "secret1",
		"fullName": "Dr Smith",
		"role":     "dentist",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	signup := gin.H{
		"email":    "alice@example.com",
		"password": "secret1",
		"fullName": "Alice Martin",
		"role":     "patient",
		"phone":    "0611111111",
	}
	w = doJSON(t, r, http.MethodPost, "/auth/signup", "", signup)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/auth/signup", "", signup)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginFailurePayloadsMatch(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret1",
		"fullName": "Alice Martin",
		"role":     "patient",
		"phone":    "0611111111",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	wrongPassword := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-password",
	})
	unknownEmail := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "secret1",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestDentistOnlyRoutesRejectPatients(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret1",
		"fullName": "Alice Martin",
		"role":     "patient",
		"phone":    "0611111111",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/patients"},
		{http.MethodGet, "/api/appointments"},
		{http.MethodGet, "/api/analytics/summary"},
	} {
		w = doJSON(t, r, route.method, route.path, token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", route.method, route.path)
	}

	w = doJSON(t, r, http.MethodPost, "/api/patients", token, gin.H{
		"email": "bob@example.com", "password": "secret1", "fullName": "Bob", "phone": "0622222222",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/patients/someid", token, gin.H{"phone": "0600000000"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDentistAppointmentListing(t *testing.T) {
	r, appointments := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email":     "drsmith@example.com",
		"password":  "secret1",
		"fullName":  "Dr Smith",
		"role":      "dentist",
		"specialty": "Orthodontics",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	dentistID := decode(t, w)["user"].(map[string]any)["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "drsmith@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)

	seedAppointment(t, appointments, dentistID, "2025-01-15", "09:00")
	seedAppointment(t, appointments, dentistID, "2025-01-16", "10:00")

	w = doJSON(t, r, http.MethodGet, "/api/appointments?date=2025-01-15", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decode(t, w)["appointments"].([]any)
	require.Len(t, list, 1)
	apt := list[0].(map[string]any)
	assert.Equal(t, "2025-01-15", apt["date"])
	assert.Equal(t, float64(30), apt["duration"])
	assert.Equal(t, "Consultation", apt["service"])
	assert.Equal(t, "pending", apt["status"])
	assert.Equal(t, "Unknown", apt["patient"])

	w = doJSON(t, r, http.MethodGet, "/api/analytics/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["total"])
	assert.Equal(t, float64(2), summary["pending"])
}

func seedAppointment(t *testing.T, store *stores.MemoryAppointmentStore, dentistID, date, timeOfDay string) {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(dentistID)
	require.NoError(t, err)
	store.Add(models.Appointment{
		ID:        primitive.NewObjectID(),
		PatientID: primitive.NewObjectID(),
		DentistID: id,
		Date:      date,
		Time:      timeOfDay,
	})
}
