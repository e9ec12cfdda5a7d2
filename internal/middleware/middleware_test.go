package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager(auth.Config{Secret: "test-secret", TTL: time.Hour, Issuer: "zenshe"})
}

func TestRequestIDIsGeneratedAndEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryAnswersJSON(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestClientAuth(t *testing.T) {
	tokens := newTokens()
	r := gin.New()
	r.GET("/me", ClientAuth(tokens), func(c *gin.Context) {
		id, _ := ClientID(c)
		ctxID, _ := ClientIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": id, "ctx": ctxID})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	clientToken, _, err := tokens.IssueClient(42, "amal@example.com")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+clientToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42,"ctx":42}`, w.Body.String())

	adminToken, _, err := tokens.IssueAdmin(1, "admin@zenshe.tn", "admin", []string{"reservations"})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalClientAuthLetsGuestsThrough(t *testing.T) {
	tokens := newTokens()
	r := gin.New()
	r.GET("/book", OptionalClientAuth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"client": ClientIDPtr(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/book", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"client":null}`, w.Body.String())
}

func TestAdminPermissions(t *testing.T) {
	tokens := newTokens()
	r := gin.New()
	admin := r.Group("/admin", AdminAuth(tokens))
	admin.GET("/reservations", RequirePermission("reservations"), func(c *gin.Context) { c.Status(http.StatusOK) })
	admin.GET("/store", RequirePermission("store"), func(c *gin.Context) { c.Status(http.StatusOK) })

	employe, _, err := tokens.IssueAdmin(2, "emp@zenshe.tn", "employe", []string{"reservations", "clients"})
	require.NoError(t, err)
	superAdmin, _, err := tokens.IssueAdmin(1, "root@zenshe.tn", "super_admin", nil)
	require.NoError(t, err)

	tests := []struct {
		token string
		path  string
		want  int
	}{
		{employe, "/admin/reservations", http.StatusOK},
		{employe, "/admin/store", http.StatusForbidden},
		{superAdmin, "/admin/store", http.StatusOK},
		{"", "/admin/store", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.token != "" {
			req.Header.Set("Authorization", "Bearer "+tt.token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, tt.path)
	}
}
