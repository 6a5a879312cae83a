package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khata-ledger/internal/domain/contact"
	"github.com/khata-ledger/internal/domain/shared"
	"github.com/khata-ledger/internal/khata"
)

func TestContactHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router := setupTestRouter(newTestService(t))

		rr := doRequest(t, router, http.MethodPost, "/contacts", CreateContactRequest{Name: "  Ravi Kumar ", Phone: "9876543210"}, nil)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var body ContactResponse
		decodeData(t, rr, &body)
		assert.NotEmpty(t, body.ID)
		assert.Equal(t, "Ravi Kumar", body.Name)
		assert.Equal(t, "9876543210", body.Phone)
		assert.Equal(t, "0", body.Balance)
		assert.Equal(t, "settled", body.Label.Direction)
		assert.Equal(t, "Settled", body.Label.Text)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		mockService := new(MockKhataService)
		router := setupTestRouter(mockService)

		rr := doRequest(t, router, http.MethodPost, "/contacts", `{"name":`, nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, rr).Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		tests := []struct {
			name     string
			req      CreateContactRequest
			wantCode string
		}{
			{"BlankName", CreateContactRequest{Name: "   "}, "EMPTY_NAME"},
			{"ShortPhone", CreateContactRequest{Name: "Asha", Phone: "12345"}, "INVALID_PHONE"},
			{"LettersInPhone", CreateContactRequest{Name: "Asha", Phone: "98765abcde"}, "INVALID_PHONE"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router := setupTestRouter(newTestService(t))

				rr := doRequest(t, router, http.MethodPost, "/contacts", tt.req, nil)

				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Equal(t, tt.wantCode, decodeError(t, rr).Code)
			})
		}
	})

	t.Run("StorageFailure", func(t *testing.T) {
		mockService := new(MockKhataService)
		mockService.On("CreateContact", mock.Anything, "Asha", "").
			Return(nil, shared.PersistenceError{Op: "set", Key: "khata:index", Err: errors.New("disk full")})
		router := setupTestRouter(mockService)

		rr := doRequest(t, router, http.MethodPost, "/contacts", CreateContactRequest{Name: "Asha"}, nil)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "STORAGE_UNAVAILABLE", decodeError(t, rr).Code)
		mockService.AssertExpectations(t)
	})

	t.Run("UnexpectedError", func(t *testing.T) {
		mockService := new(MockKhataService)
		mockService.On("CreateContact", mock.Anything, "Asha", "").Return(nil, errors.New("boom"))
		router := setupTestRouter(mockService)

		rr := doRequest(t, router, http.MethodPost, "/contacts", CreateContactRequest{Name: "Asha"}, nil)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", decodeError(t, rr).Code)
	})
}

func TestContactHandler_List(t *testing.T) {
	svc := newTestService(t)
	router := setupTestRouter(svc)

	for _, name := range []string{"Ravi", "Ravindra", "Sunita"} {
		rr := doRequest(t, router, http.MethodPost, "/contacts", CreateContactRequest{Name: name}, nil)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	tests := []struct {
		name  string
		path  string
		names []string
	}{
		{"All", "/contacts", []string{"Ravi", "Ravindra", "Sunita"}},
		{"Filtered", "/contacts?q=ravi", []string{"Ravi", "Ravindra"}},
		{"NoMatch", "/contacts?q=zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, http.MethodGet, tt.path, nil, nil)
			require.Equal(t, http.StatusOK, rr.Code)

			var body []ContactResponse
			decodeData(t, rr, &body)
			got := make([]string, 0, len(body))
			for _, c := range body {
				got = append(got, c.Name)
			}
			assert.ElementsMatch(t, tt.names, got)
		})
	}
}

func TestContactHandler_GetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockService := new(MockKhataService)
		c, err := contact.NewContact("Asha", "")
		require.NoError(t, err)
		mockService.On("GetContact", mock.Anything, c.ID.String()).Return(c, nil)
		router := setupTestRouter(mockService)

		rr := doRequest(t, router, http.MethodGet, "/contacts/"+c.ID.String(), nil, nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var body ContactResponse
		decodeData(t, rr, &body)
		assert.Equal(t, c.ID.String(), body.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("UnknownID", func(t *testing.T) {
		router := setupTestRouter(newTestService(t))

		rr := doRequest(t, router, http.MethodGet, "/contacts/"+uuid.NewString(), nil, nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, rr).Code)
	})

	t.Run("MalformedID", func(t *testing.T) {
		router := setupTestRouter(newTestService(t))

		rr := doRequest(t, router, http.MethodGet, "/contacts/not-a-uuid", nil, nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestContactHandler_Verify(t *testing.T) {
	t.Run("Consistent", func(t *testing.T) {
		svc := newTestService(t)
		router := setupTestRouter(svc)
		c, err := svc.CreateContact(context.Background(), "Asha", "")
		require.NoError(t, err)

		rr := doRequest(t, router, http.MethodPost, "/contacts/"+c.ID.String()+"/entries", RecordEntryRequest{Amount: "250", Type: "credit"}, nil)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = doRequest(t, router, http.MethodGet, "/contacts/"+c.ID.String()+"/verify", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var body VerifyResponse
		decodeData(t, rr, &body)
		assert.True(t, body.Consistent)
		assert.Equal(t, "250", body.Cached)
		assert.Equal(t, "250", body.Recomputed)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockKhataService)
		id := uuid.NewString()
		mockService.On("Verify", mock.Anything, id).Return(nil, shared.NotFoundError{Resource: "contact", ID: id})
		router := setupTestRouter(mockService)

		rr := doRequest(t, router, http.MethodGet, "/contacts/"+id+"/verify", nil, nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Diverged", func(t *testing.T) {
		mockService := new(MockKhataService)
		id := uuid.New()
		mockService.On("Verify", mock.Anything, id.String()).Return(&khata.VerifyResult{
			ContactID:  id,
			Consistent: false,
		}, nil)
		router := setupTestRouter(mockService)

		rr := doRequest(t, router, http.MethodGet, "/contacts/"+id.String()+"/verify", nil, nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var body VerifyResponse
		decodeData(t, rr, &body)
		assert.False(t, body.Consistent)
	})
}
