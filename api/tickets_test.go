package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/airticket/internal/domain"
	"github.com/Domenick1991/airticket/internal/log"
	"github.com/Domenick1991/airticket/internal/service/booking"
	"github.com/Domenick1991/airticket/internal/service/cancellation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Book(ctx context.Context, input booking.BookInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

type MockCancellationUseCase struct {
	mock.Mock
}

func (m *MockCancellationUseCase) Cancel(ctx context.Context, ticketID int64) (cancellation.Outcome, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).(cancellation.Outcome), args.Error(1)
}

type MockLookupUseCase struct {
	mock.Mock
}

func (m *MockLookupUseCase) GetByPNR(ctx context.Context, pnr string) (domain.TicketView, error) {
	args := m.Called(ctx, pnr)
	return args.Get(0).(domain.TicketView), args.Error(1)
}

func (m *MockLookupUseCase) GetTicketsByEmail(ctx context.Context, email string) ([]domain.TicketView, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketView), args.Error(1)
}

func (m *MockLookupUseCase) SeatMap(ctx context.Context, flightID int64) (domain.SeatMap, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).(domain.SeatMap), args.Error(1)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var response errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestTicketHandler_book(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewTicketHandler(mockService, nil, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"flight_id": 1, "passenger_ids": [1, 2], "seat_numbers": ["1", "2"]}`
	c.Request = httptest.NewRequest("POST", "/api/tickets", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	input := booking.BookInput{FlightID: 1, PassengerIDs: []int64{1, 2}, SeatNumbers: []string{"1", "2"}}
	mockService.On("Book", c.Request.Context(), input).Return("PNR-1", nil)

	handler.book(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response bookTicketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "PNR-1", response.PNR)
	mockService.AssertExpectations(t)
}

func TestTicketHandler_book_InvalidBody(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewTicketHandler(mockService, nil, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/tickets", bytes.NewBufferString(`{"flight_id": "x"`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.book(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decodeError(t, w).Code)
	mockService.AssertNotCalled(t, "Book", mock.Anything, mock.Anything)
}

func TestTicketHandler_book_Errors(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectedCode int
		expectedKind string
	}{
		{name: "Invalid", err: fmt.Errorf("%w: passengers and seats count must match", domain.ErrInvalidRequest), expectedCode: http.StatusBadRequest, expectedKind: "invalid_request"},
		{name: "Conflict", err: fmt.Errorf("%w: seats already booked: 1", domain.ErrConflict), expectedCode: http.StatusConflict, expectedKind: "conflict"},
		{name: "Not found", err: domain.ErrNotFound, expectedCode: http.StatusNotFound, expectedKind: "not_found"},
		{name: "Unavailable", err: domain.ErrUpstreamUnavailable, expectedCode: http.StatusServiceUnavailable, expectedKind: "upstream_unavailable"},
		{name: "Internal", err: fmt.Errorf("save ticket: connection reset"), expectedCode: http.StatusInternalServerError, expectedKind: "internal"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewTicketHandler(mockService, nil, nil)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/api/tickets", bytes.NewBufferString(`{"flight_id": 1, "passenger_ids": [1], "seat_numbers": ["1"]}`))
			c.Request.Header.Set("Content-Type", "application/json")
			mockService.On("Book", mock.Anything, mock.Anything).Return("", tc.err)

			handler.book(c)

			assert.Equal(t, tc.expectedCode, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tc.expectedKind, response.Code)
			if tc.expectedKind == "internal" {
				assert.NotContains(t, response.Error, "connection reset")
			} else {
				assert.Equal(t, tc.err.Error(), response.Error)
			}
		})
	}
}

func TestTicketHandler_cancel(t *testing.T) {
	mockService := &MockCancellationUseCase{}
	handler := NewTicketHandler(nil, mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("DELETE", "/api/tickets/7", nil)

	mockService.On("Cancel", c.Request.Context(), int64(7)).Return(cancellation.OutcomeCancelled, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response cancelTicketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(7), response.ID)
	assert.Equal(t, "cancelled", response.Status)
	mockService.AssertExpectations(t)
}

func TestTicketHandler_cancel_TooLate(t *testing.T) {
	mockService := &MockCancellationUseCase{}
	handler := NewTicketHandler(nil, mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("DELETE", "/api/tickets/7", nil)

	mockService.On("Cancel", c.Request.Context(), int64(7)).
		Return(cancellation.Outcome(""), fmt.Errorf("%w: ticket cannot be cancelled within 24 hours of departure", domain.ErrDomainRule))

	handler.cancel(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "domain_rule", decodeError(t, w).Code)
}

func TestTicketHandler_cancel_InvalidID(t *testing.T) {
	mockService := &MockCancellationUseCase{}
	handler := NewTicketHandler(nil, mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	c.Request = httptest.NewRequest("DELETE", "/api/tickets/abc", nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestTicketHandler_getByPNR(t *testing.T) {
	mockService := &MockLookupUseCase{}
	handler := NewTicketHandler(nil, nil, mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "pnr", Value: "PNR-1"}}
	c.Request = httptest.NewRequest("GET", "/api/tickets/pnr/PNR-1", nil)

	view := domain.TicketView{ID: 1, PNR: "PNR-1", FlightID: 3, Origin: "SVO", SeatNumbers: []string{"4"}, NumberOfSeats: 1, Booked: true}
	mockService.On("GetByPNR", c.Request.Context(), "PNR-1").Return(view, nil)

	handler.getByPNR(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response domain.TicketView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, view.PNR, response.PNR)
	assert.Equal(t, view.Origin, response.Origin)
	mockService.AssertExpectations(t)
}

func TestTicketHandler_getByEmail(t *testing.T) {
	mockService := &MockLookupUseCase{}
	handler := NewTicketHandler(nil, nil, mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "email", Value: "anna@example.com"}}
	c.Request = httptest.NewRequest("GET", "/api/tickets/email/anna@example.com", nil)

	mockService.On("GetTicketsByEmail", c.Request.Context(), "anna@example.com").Return([]domain.TicketView{}, nil)

	handler.getByEmail(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestTicketHandler_getByEmail_Unknown(t *testing.T) {
	mockService := &MockLookupUseCase{}
	handler := NewTicketHandler(nil, nil, mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "email", Value: "ghost@example.com"}}
	c.Request = httptest.NewRequest("GET", "/api/tickets/email/ghost@example.com", nil)

	mockService.On("GetTicketsByEmail", c.Request.Context(), "ghost@example.com").Return(nil, domain.ErrNotFound)

	handler.getByEmail(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CorrelationID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lookupService := &MockLookupUseCase{}
	router := NewRouter(NewTicketHandler(nil, nil, lookupService), NewFlightHandler(lookupService))

	lookupService.On("GetByPNR", mock.MatchedBy(func(ctx context.Context) bool {
		return log.CorrelationIDFromContext(ctx) != ""
	}), "PNR-1").Return(domain.TicketView{PNR: "PNR-1"}, nil)

	t.Run("Echoed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/tickets/pnr/PNR-1", nil)
		req.Header.Set(CorrelationIDHeader, "abc-123")

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abc-123", w.Header().Get(CorrelationIDHeader))
	})

	t.Run("Generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/tickets/pnr/PNR-1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(CorrelationIDHeader))
	})
}
