package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTService(exp time.Duration) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:   "test-secret",
		TokenExp:    exp,
		TokenIssuer: "certificados-test",
	})
}

func protectedRouter(t *testing.T, jwtService *auth.JWTService) *gin.Engine {
	t.Helper()
	router := gin.New()
	m := NewAuthMiddleware(jwtService)
	router.GET("/protected", m.JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString(ContextUsername)})
	})
	return router
}

func TestJWTAuthMissingHeader(t *testing.T) {
	router := protectedRouter(t, newJWTService(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthValidToken(t *testing.T) {
	jwtService := newJWTService(time.Hour)
	router := protectedRouter(t, jwtService)

	token, _, err := jwtService.GenerateToken(1, "admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
}

func TestJWTAuthGarbageToken(t *testing.T) {
	router := protectedRouter(t, newJWTService(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	issuer := newJWTService(-time.Minute)
	token, _, err := issuer.GenerateToken(1, "admin")
	require.NoError(t, err)

	router := protectedRouter(t, newJWTService(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	other := auth.NewJWTService(auth.JWTConfig{SecretKey: "other-secret", TokenExp: time.Hour})
	token, _, err := other.GenerateToken(1, "admin")
	require.NoError(t, err)

	router := protectedRouter(t, newJWTService(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	jwtService := newJWTService(time.Hour)
	router := gin.New()
	m := NewAuthMiddleware(jwtService)
	router.GET("/public", m.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authenticated": IsAuthenticated(c)})
	})

	// Without a token the request still succeeds, unauthenticated.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")

	// A garbage token is ignored rather than rejected.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer junk")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")

	// A valid token marks the request authenticated.
	token, _, err := jwtService.GenerateToken(1, "admin")
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "true")
}
