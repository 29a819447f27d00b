package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newCORSRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(origins))
	r.POST("/hook", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/hook", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	return r
}

func TestCORS_AnyOriginWhenUnconfigured(t *testing.T) {
	r := newCORSRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/hook", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code, "preflight never reaches the handler")
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_AllowList(t *testing.T) {
	r := newCORSRouter([]string{"https://forms.example.com"})

	req := httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.Header.Set("Origin", "https://forms.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://forms.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", rec.Header().Get("Vary"))

	req = httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/hook", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
