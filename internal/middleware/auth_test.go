package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestInternalTokenMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		wantStatus int
	}{
		{name: "valid token", configured: "secret", sent: "secret", wantStatus: http.StatusOK},
		{name: "wrong token", configured: "secret", sent: "guess", wantStatus: http.StatusUnauthorized},
		{name: "missing token", configured: "secret", wantStatus: http.StatusUnauthorized},
		{name: "prefix of token", configured: "secret", sent: "sec", wantStatus: http.StatusUnauthorized},
		{name: "open when unconfigured", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			router := gin.New()
			router.GET("/metrics", InternalTokenMiddleware(tt.configured), func(c *gin.Context) {
				handlerCalled = true
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
			if tt.sent != "" {
				req.Header.Set(InternalTokenHeader, tt.sent)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, handlerCalled)
		})
	}
}
