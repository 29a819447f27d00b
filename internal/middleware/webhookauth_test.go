package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVerifySecret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		secret string
		header string
		policy SecretPolicy
		want   bool
	}{
		{"unset allows", "", "", AllowWhenUnset, true},
		{"unset denies", "", "Bearer anything", DenyWhenUnset, false},
		{"match", "s3cret", "Bearer s3cret", DenyWhenUnset, true},
		{"match under allow policy", "s3cret", "Bearer s3cret", AllowWhenUnset, true},
		{"missing header", "s3cret", "", AllowWhenUnset, false},
		{"wrong secret", "s3cret", "Bearer s3cre", AllowWhenUnset, false},
		{"lowercase scheme", "s3cret", "bearer s3cret", DenyWhenUnset, false},
		{"bare secret", "s3cret", "s3cret", DenyWhenUnset, false},
		{"trailing space", "s3cret", "Bearer s3cret ", DenyWhenUnset, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, VerifySecret(tt.secret, tt.header, tt.policy))
		})
	}
}

func TestWebhookSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reached := false
	r := gin.New()
	r.POST("/hook", Endpoint("recruit"), WebhookSecret("s3cret", DenyWhenUnset, zap.NewNop()), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hook", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"success":false,"error":"Unauthorized"}`, rec.Body.String())
	require.False(t, reached)

	req := httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, reached)
}

func TestSecretPolicyString(t *testing.T) {
	require.Equal(t, "allow-when-unset", AllowWhenUnset.String())
	require.Equal(t, "deny-when-unset", DenyWhenUnset.String())
}
