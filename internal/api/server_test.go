package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata-ledger/internal/api/middleware"
	"github.com/khata-ledger/internal/config"
	"github.com/khata-ledger/internal/data/memory"
	"github.com/khata-ledger/internal/khata"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := khata.NewService(logger, memory.NewKVStore())
	require.NoError(t, svc.Load(context.Background()))

	cfg := &config.Config{
		Application: config.ApplicationConfig{Env: "test"},
		Server: config.ServerConfig{
			Port:         0,
			WriteTimeout: time.Second,
		},
	}
	return NewServer(logger, cfg, svc)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	t.Run("Health", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"ok"`)
	})

	t.Run("ContactLifecycle", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/contacts", bytes.NewBufferString(`{"name":"Meena"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.CorrelationIDHeader, "corr-1")
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, "corr-1", rr.Header().Get(middleware.CorrelationIDHeader))

		var created struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
			CorrelationID string `json:"correlation_id"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		assert.Equal(t, "corr-1", created.CorrelationID)

		rr = httptest.NewRecorder()
		req, _ = http.NewRequest(http.MethodPost, "/api/v1/contacts/"+created.Data.ID+"/entries", bytes.NewBufferString(`{"amount":"75","type":"payment"}`))
		req.Header.Set("Content-Type", "application/json")
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		for _, path := range []string{
			"/api/v1/contacts",
			"/api/v1/contacts/" + created.Data.ID,
			"/api/v1/contacts/" + created.Data.ID + "/entries",
			"/api/v1/contacts/" + created.Data.ID + "/verify",
		} {
			rr = httptest.NewRecorder()
			req, _ = http.NewRequest(http.MethodGet, path, nil)
			h.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusOK, rr.Code, path)
		}
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestServer_StopWithoutStart(t *testing.T) {
	srv := newTestServer(t)
	assert.NoError(t, srv.Stop(context.Background()))
}
