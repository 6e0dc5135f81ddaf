package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mozart-api/internal/domain/entity"
	"github.com/yourusername/mozart-api/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ============================================================================
// Тесты для AuthMiddleware
// ============================================================================

func createTestAuthMiddleware(t *testing.T) (*AuthMiddleware, *auth.JWTService) {
	t.Helper()

	jwtService, err := auth.NewJWTService("test-secret-for-middleware", 1)
	require.NoError(t, err)
	return NewAuthMiddleware(jwtService), jwtService
}

// setupWhoamiRouter регистрирует маршрут, отвечающий user_id из контекста
// либо guest, если middleware его не установил
func setupWhoamiRouter(mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/whoami", mw, func(c *gin.Context) {
		if userID, ok := c.Get("user_id"); ok {
			c.JSON(http.StatusOK, gin.H{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"guest": true})
	})
	return router
}

func issueTestToken(t *testing.T, jwtService *auth.JWTService, userID uint) string {
	t.Helper()

	token, err := jwtService.GenerateToken(&entity.User{
		ID:       userID,
		Username: "mozart_fan",
		Email:    "fan@example.com",
	})
	require.NoError(t, err)
	return token
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	// Arrange
	m, _ := createTestAuthMiddleware(t)
	router := setupWhoamiRouter(m.RequireAuth())

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token_missing")
}

func TestRequireAuth_BadHeaderFormat(t *testing.T) {
	// Arrange
	m, _ := createTestAuthMiddleware(t)
	router := setupWhoamiRouter(m.RequireAuth())

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token abcdef")
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token_format")
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	// Arrange
	m, _ := createTestAuthMiddleware(t)
	router := setupWhoamiRouter(m.RequireAuth())

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token_invalid")
}

func TestRequireAuth_ValidToken(t *testing.T) {
	// Arrange
	m, jwtService := createTestAuthMiddleware(t)
	router := setupWhoamiRouter(m.RequireAuth())
	token := issueTestToken(t, jwtService, 42)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
}

func TestOptionalAuth_NoHeaderIsGuest(t *testing.T) {
	// Arrange: гостевой доступ без заголовка проходит без user_id
	m, _ := createTestAuthMiddleware(t)
	router := setupWhoamiRouter(m.OptionalAuth())

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"guest":true`)
}

func TestOptionalAuth_InvalidTokenIsGuest(t *testing.T) {
	// Arrange: битый токен на открытом маршруте не приводит к 401
	m, _ := createTestAuthMiddleware(t)
	router := setupWhoamiRouter(m.OptionalAuth())

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"guest":true`)
}

func TestOptionalAuth_ValidTokenSetsUserID(t *testing.T) {
	// Arrange
	m, jwtService := createTestAuthMiddleware(t)
	router := setupWhoamiRouter(m.OptionalAuth())
	token := issueTestToken(t, jwtService, 7)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}
