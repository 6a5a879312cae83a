package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khata-ledger/internal/data/memory"
	"github.com/khata-ledger/internal/domain/contact"
	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/khata"
)

type MockKhataService struct {
	mock.Mock
}

func (m *MockKhataService) Currency() string {
	return "INR"
}

func (m *MockKhataService) CreateContact(ctx context.Context, name, phone string) (*contact.Contact, error) {
	args := m.Called(ctx, name, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contact.Contact), args.Error(1)
}

func (m *MockKhataService) GetContact(ctx context.Context, id string) (*contact.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contact.Contact), args.Error(1)
}

func (m *MockKhataService) ListContacts(ctx context.Context, query string) []*contact.Contact {
	args := m.Called(ctx, query)
	return args.Get(0).([]*contact.Contact)
}

func (m *MockKhataService) Entries(ctx context.Context, id string, q khata.EntryQuery) ([]ledger.Entry, error) {
	args := m.Called(ctx, id, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Entry), args.Error(1)
}

func (m *MockKhataService) Record(ctx context.Context, params khata.RecordParams) (*khata.Transaction, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*khata.Transaction), args.Error(1)
}

func (m *MockKhataService) Verify(ctx context.Context, id string) (*khata.VerifyResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*khata.VerifyResult), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRouter(svc KhataService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	contacts := NewContactHandler(testLogger(), svc)
	entries := NewEntryHandler(testLogger(), svc)

	r.POST("/contacts", contacts.Create)
	r.GET("/contacts", contacts.List)
	r.GET("/contacts/:id", contacts.GetByID)
	r.GET("/contacts/:id/verify", contacts.Verify)
	r.POST("/contacts/:id/entries", entries.Record)
	r.GET("/contacts/:id/entries", entries.List)
	return r
}

func newTestService(t *testing.T) *khata.Service {
	t.Helper()
	svc := khata.NewService(testLogger(), memory.NewKVStore())
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func doRequest(t *testing.T, r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// decodeData unmarshals the "data" envelope field into out and returns the envelope
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) Response {
	t.Helper()

	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error *ErrorInfo      `json:"error"`
		Meta  *MetaInfo       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope), rr.Body.String())
	// error responses carry no data
	if out != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, out), rr.Body.String())
	}
	return Response{Error: envelope.Error, Meta: envelope.Meta}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) *ErrorInfo {
	t.Helper()

	resp := decodeData(t, rr, nil)
	require.NotNil(t, resp.Error, rr.Body.String())
	return resp.Error
}
