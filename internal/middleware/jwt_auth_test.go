package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devhub/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, userID uint, secret []byte) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		Email:  "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestTokenFromHeader_BearerAndLegacy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	token, err := TokenFromHeader(req)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-auth-token", "legacy456")
	token, err = TokenFromHeader(req)
	require.NoError(t, err)
	assert.Equal(t, "legacy456", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = TokenFromHeader(req)
	assert.Error(t, err)
}

func TestParseToken_RoundTrip(t *testing.T) {
	signed := signTestToken(t, 7, jwtSecret())

	claims, err := ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	signed := signTestToken(t, 7, []byte("someothersecret"))

	_, err := ParseToken(signed)
	assert.Error(t, err)
}

func TestJWTAuthMiddleware_StoresClaims(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 42, jwtSecret()))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured *models.JwtCustomClaims
	handler := JWTAuthMiddleware()(func(c echo.Context) error {
		captured = c.Get("user").(*models.JwtCustomClaims)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	require.NotNil(t, captured)
	assert.Equal(t, uint(42), captured.UserID)
}

func TestJWTAuthMiddleware_RejectsMissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTAuthMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
