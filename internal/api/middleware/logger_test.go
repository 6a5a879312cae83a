package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newBufferedLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name          string
		status        int
		expectedLevel string
	}{
		{"Success", http.StatusOK, `"level":"INFO"`},
		{"ClientError", http.StatusNotFound, `"level":"WARN"`},
		{"ServerError", http.StatusServiceUnavailable, `"level":"ERROR"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			router := gin.New()
			router.Use(CorrelationID())
			router.Use(Logger(newBufferedLogger(&buf)))
			router.GET("/contacts", func(c *gin.Context) { c.Status(tc.status) })

			req, _ := http.NewRequest(http.MethodGet, "/contacts?q=asha", nil)
			req.Header.Set("User-Agent", "test-agent")
			req.Header.Set(CorrelationIDHeader, "corr-42")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			out := buf.String()
			assert.Contains(t, out, tc.expectedLevel)
			assert.Contains(t, out, `"msg":"HTTP request"`)
			assert.Contains(t, out, `"path":"/contacts?q=asha"`)
			assert.Contains(t, out, `"user_agent":"test-agent"`)
			assert.Contains(t, out, `"correlation_id":"corr-42"`)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fallback := slog.Default()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, fallback, RequestLogger(c, fallback))

	var buf bytes.Buffer
	router := gin.New()
	router.Use(CorrelationID())
	router.Use(Logger(newBufferedLogger(&buf)))
	router.GET("/x", func(c *gin.Context) {
		RequestLogger(c, fallback).Info("inside handler")
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(CorrelationIDHeader, "corr-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"msg":"inside handler","correlation_id":"corr-7"`)
}
