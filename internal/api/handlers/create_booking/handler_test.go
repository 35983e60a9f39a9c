package create_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawly/PGS-BookingService/internal/api/handlers"
	createBooking "github.com/pawly/PGS-BookingService/internal/usecase/create_booking"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeUseCase struct {
	err  error
	resp *createBooking.Response
}

func (f *fakeUseCase) Execute(_ context.Context, _ *createBooking.Request) (*createBooking.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func doRequest(t *testing.T, uc *fakeUseCase, body string) *httptest.ResponseRecorder {
	t.Helper()

	h := NewHandler(uc, time.UTC, nopLogger{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandle_ParseErrors(t *testing.T) {
	t.Run("malformed date", func(t *testing.T) {
		rec := doRequest(t, &fakeUseCase{}, `{
			"customerId": 1, "petId": 10,
			"date": "15.10.2025", "startTime": "10:00",
			"services": [{"serviceId": 100}]
		}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, handlers.CodeValidationError, resp.Error.Code)
		assert.Equal(t, msgInvalidDate, resp.Error.Message)
	})

	t.Run("malformed start time gets a time-specific message", func(t *testing.T) {
		rec := doRequest(t, &fakeUseCase{}, `{
			"customerId": 1, "petId": 10,
			"date": "2025-10-15", "startTime": "10am",
			"services": [{"serviceId": 100}]
		}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, handlers.CodeValidationError, resp.Error.Code)
		assert.Equal(t, msgInvalidStartTime, resp.Error.Message)
	})

	t.Run("non canonical start time rejected the same way", func(t *testing.T) {
		rec := doRequest(t, &fakeUseCase{}, `{
			"customerId": 1, "petId": 10,
			"date": "2025-10-15", "startTime": "9:00",
			"services": [{"serviceId": 100}]
		}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, msgInvalidStartTime, resp.Error.Message)
	})

	t.Run("unknown field in body", func(t *testing.T) {
		rec := doRequest(t, &fakeUseCase{}, `{"bogus": true}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, msgInvalidRequestBody, resp.Error.Message)
	})
}

func TestHandle_UseCaseErrorMapping(t *testing.T) {
	validBody := `{
		"customerId": 1, "petId": 10,
		"date": "2025-10-15", "startTime": "10:00",
		"services": [{"serviceId": 100}]
	}`

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"slot taken", createBooking.ErrSlotNotAvailable, http.StatusConflict, handlers.CodeSlotUnavailable},
		{"quota exhausted", createBooking.ErrQuotaExhausted, http.StatusUnprocessableEntity, handlers.CodeQuotaExhausted},
		{"no active subscription", createBooking.ErrNoActiveSubscription, http.StatusUnprocessableEntity, handlers.CodeQuotaExhausted},
		{"incomplete period", createBooking.ErrIncompletePeriod, http.StatusUnprocessableEntity, handlers.CodeIncompletePeriod},
		{"customer not found", createBooking.ErrCustomerNotFound, http.StatusNotFound, handlers.CodeNotFound},
		{"salon closed", createBooking.ErrSalonClosed, http.StatusBadRequest, handlers.CodeValidationError},
		{"off-grid time", createBooking.ErrInvalidTimeSlot, http.StatusBadRequest, handlers.CodeValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &fakeUseCase{err: tt.err}, validBody)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
