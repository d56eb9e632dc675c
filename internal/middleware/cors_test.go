package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestCORSAllowlistedOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := CORS([]string{"https://app.example.com/"})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/api/v1/notes", nil)
	c.Request.Header.Set("Origin", "https://app.example.com")
	handler(c)

	require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORSUnknownOriginGetsNoHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := CORS([]string{"https://app.example.com"})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/api/v1/notes", nil)
	c.Request.Header.Set("Origin", "https://evil.example.com")
	handler(c)

	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSEmptyAllowlistAllowsAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := CORS(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/api/v1/notes", nil)
	handler(c)

	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := CORS(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("OPTIONS", "/api/v1/notes", nil)
	handler(c)

	require.True(t, c.IsAborted())
	require.Equal(t, 204, rec.Code)
}
