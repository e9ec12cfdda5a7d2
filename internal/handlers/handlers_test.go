package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/auth"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/middleware"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/service"
)

var testTokens = auth.NewTokenManager(auth.Config{Secret: "test-secret", TTL: time.Hour})

func setupRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := database.New(sqlDB)
	services := service.NewServices(service.Deps{
		DB:     db,
		Repos:  repository.NewRepositories(db),
		Tokens: testTokens,
	})
	h := NewHandlers(services)

	router := gin.New()
	router.POST("/api/reservations/check-availability", h.CheckAvailability)
	router.POST("/api/reservations", h.CreateReservation)
	router.GET("/api/reservations/:id", middleware.OptionalClientAuth(testTokens), h.GetReservation)
	router.DELETE("/api/reservations/:id/services/:serviceId", middleware.OptionalClientAuth(testTokens), h.RemoveReservationService)
	router.GET("/api/services", h.ListServices)
	router.GET("/api/auth/verify-email", h.VerifyEmail)
	router.POST("/api/auth/signup", h.Signup)
	router.POST("/api/store/orders", h.PlaceOrder)
	router.GET("/api/admin/reservations", h.AdminListReservations)
	router.POST("/api/jotform/submissions", h.SubmitWaiver)
	return router, mock
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	return doJSONAs(router, method, path, "", body)
}

func doJSONAs(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.Invalid("bad"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", apperrors.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", apperrors.ErrForbidden), http.StatusForbidden},
		{apperrors.NotFound("reservation"), http.StatusNotFound},
		{apperrors.Conflict("already cancelled"), http.StatusConflict},
		{apperrors.Unavailable("slot taken"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestClientMessage(t *testing.T) {
	assert.Equal(t, "invalid email or password",
		clientMessage(fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)))
	assert.Equal(t, "slot taken", clientMessage(apperrors.Unavailable("slot taken")))
	assert.Equal(t, "service not found", clientMessage(apperrors.NotFound("service")))
	assert.Equal(t, apperrors.ErrForbidden.Error(), clientMessage(apperrors.ErrForbidden))
}

func TestCheckAvailabilityRejectsMalformedBody(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/reservations/check-availability", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckAvailabilityRequiresService(t *testing.T) {
	router, mock := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/reservations/check-availability", map[string]any{
		"date_reservation": "2025-03-10",
		"heure_debut":      "10:00",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "at least one service is required", errorOf(t, w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityRejectsBadTime(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/reservations/check-availability", map[string]any{
		"service_ids":      []int64{1},
		"date_reservation": "2025-03-10",
		"heure_debut":      "25:99",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "heure_debut must be HH:MM", errorOf(t, w))
}

func TestCreateReservationRequiresDate(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/reservations", map[string]any{
		"service_ids": []int64{1},
		"heure_debut": "10:00",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReservationInvalidID(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/api/reservations/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid id", errorOf(t, w))
}

func TestGetReservationNotFound(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectQuery(`FROM reservations r WHERE r.id = \?`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := doJSON(router, http.MethodGet, "/api/reservations/42", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "reservation not found", errorOf(t, w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// expectOwnedReservation queues reservation 5, booked by client 42, with its two items.
func expectOwnedReservation(mock sqlmock.Sqlmock, forUpdate bool) {
	query := `FROM reservations r WHERE r.id = \?`
	if forUpdate {
		mock.ExpectBegin()
		query += ` FOR UPDATE`
	}
	now := time.Now()
	mock.ExpectQuery(query).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "client_id", "service_id", "date_reservation", "heure_debut", "heure_fin", "statut",
			"prix_services", "reduction_pourcentage", "prix_final", "referral_code_id",
			"client_nom", "client_prenom", "client_email", "client_telephone",
			"notes", "session_id", "date_creation", "date_modification",
		}).AddRow(
			5, int64(42), int64(1), "2025-03-10", "10:00", "11:10", "confirmee",
			70.0, 0.0, 70.0, nil,
			"Ben Ali", "Amal", "amal@example.com", "+21600000000",
			nil, nil, now, now,
		))
	mock.ExpectQuery(`FROM reservation_items ri`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id", "service_id", "nom", "item_type", "prix", "duree", "notes", "created_at"}).
			AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, now).
			AddRow(12, 5, 7, "Gommage", "addon", 25.0, 30, nil, now))
}

func TestGetReservationOfAnotherClientIsNotFound(t *testing.T) {
	router, mock := setupRouter(t)
	expectOwnedReservation(mock, false)

	token, _, err := testTokens.IssueClient(7, "sana@example.com")
	require.NoError(t, err)
	w := doJSONAs(router, http.MethodGet, "/api/reservations/5", token, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "reservation not found", errorOf(t, w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReservationByOwner(t *testing.T) {
	router, mock := setupRouter(t)
	expectOwnedReservation(mock, false)

	token, _, err := testTokens.IssueClient(42, "amal@example.com")
	require.NoError(t, err)
	w := doJSONAs(router, http.MethodGet, "/api/reservations/5", token, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"prix_final":70`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveServiceAnonymousOnClientBookingIsNotFound(t *testing.T) {
	router, mock := setupRouter(t)
	expectOwnedReservation(mock, true)
	mock.ExpectRollback()

	// the owner's email is not enough for a client account booking
	w := doJSON(router, http.MethodDelete, "/api/reservations/5/services/7?email=amal@example.com", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReservationDatabaseErrorIsHidden(t *testing.T) {
	router, mock := setupRouter(t)
	mock.ExpectQuery(`FROM reservations r WHERE r.id = \?`).
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))

	w := doJSON(router, http.MethodGet, "/api/reservations/7", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to get reservation", errorOf(t, w))
}

func TestRemoveServiceInvalidServiceID(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodDelete, "/api/reservations/1/services/0", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid serviceId", errorOf(t, w))
}

func TestListServicesInvalidCategory(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/api/services?categorie_id=x", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyEmailRequiresToken(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/api/auth/verify-email", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "token is required", errorOf(t, w))
}

func TestSignupValidatesBody(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/auth/signup", map[string]any{
		"nom":          "Ben Ali",
		"prenom":       "Amal",
		"email":        "not-an-email",
		"mot_de_passe": "secret123",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceOrderWithoutItems(t *testing.T) {
	router, mock := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/store/orders", map[string]any{
		"client_nom":   "Amal",
		"client_email": "amal@example.com",
		"items":        []any{},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminListReservationsPagination(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		query string
		want  string
	}{
		{"page=0", "page must be >= 1"},
		{"pageSize=500", "pageSize must be between 1 and 100"},
		{"client_id=-3", "invalid client_id"},
	}
	for _, tt := range tests {
		w := doJSON(router, http.MethodGet, "/api/admin/reservations?"+tt.query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, tt.query)
		assert.Equal(t, tt.want, errorOf(t, w), tt.query)
	}
}

func TestSubmitWaiverRequiresAnswers(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/jotform/submissions", map[string]any{
		"session_id": "abc",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
