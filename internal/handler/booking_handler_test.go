package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slotbook/service-booking/internal/adapter"
	"github.com/slotbook/service-booking/internal/application"
	"github.com/slotbook/service-booking/internal/domain/catalog"
	"github.com/slotbook/service-booking/internal/domain/schedule"
	"github.com/slotbook/service-booking/internal/events"
	"github.com/slotbook/service-booking/internal/repository"
)

// testServer wires the full handler stack over the in-memory store and the
// mock gateway.
type testServer struct {
	router  *gin.Engine
	booking *application.BookingService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	repo := repository.NewMemoryBookingRepository()
	stripe := adapter.NewMockStripeAdapter(logger)
	cat := catalog.Default()
	publisher := events.NewPublisher(nil, logger)

	bookingSvc := application.NewBookingService(repo, cat, stripe, schedule.DefaultBusinessHours(), publisher, nil, logger)
	paymentSvc := application.NewPaymentService(stripe, logger)
	connectSvc := application.NewConnectService(stripe, "", "http://localhost:8080", logger)

	router := gin.New()
	api := router.Group("/api")
	NewServiceHandler(cat, bookingSvc).RegisterRoutes(api)
	NewBookingHandler(bookingSvc).RegisterRoutes(api)
	NewPaymentHandler(paymentSvc, bookingSvc, stripe, logger).RegisterRoutes(api)
	NewAdminHandler(connectSvc).RegisterRoutes(api)

	return &testServer{router: router, booking: bookingSvc}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createBooking(t *testing.T) application.CreateBookingResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/bookings", gin.H{
		"serviceId": "consultation",
		"date":      "2026-09-07",
		"timeSlot":  "10:00",
		"guests": []gin.H{
			{"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result application.CreateBookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestListServices(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var services []catalog.Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &services))
	assert.Len(t, services, 4)
}

func TestGetService(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/services/consultation", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var svc catalog.Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &svc))
	assert.Equal(t, int64(15000), svc.PriceInCents)

	rec = s.do(t, http.MethodGet, "/api/services/no-such", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSlotsRequiresDate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/services/consultation/slots", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Date parameter required")
}

func TestGetSlots(t *testing.T) {
	s := newTestServer(t)
	s.createBooking(t)

	rec := s.do(t, http.MethodGet, "/api/services/consultation/slots?date=2026-09-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var slots []schedule.TimeSlot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	require.Len(t, slots, 16)

	taken := 0
	for _, slot := range slots {
		if !slot.Available {
			taken++
			assert.Equal(t, "10:00", slot.Time)
		}
	}
	assert.Equal(t, 1, taken)
}

func TestCreateBookingEndpoint(t *testing.T) {
	s := newTestServer(t)

	result := s.createBooking(t)
	assert.NotEmpty(t, result.ClientSecret)
	assert.Equal(t, "pending", result.Booking.Status)
	assert.Equal(t, int64(15000), result.Booking.Payment.AmountInCents)
}

func TestCreateBookingRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/bookings", gin.H{"date": "2026-09-07"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBookingsRequiresEmail(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/bookings", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email parameter required")
}

func TestGetBookingsByEmail(t *testing.T) {
	s := newTestServer(t)
	created := s.createBooking(t)

	rec := s.do(t, http.MethodGet, "/api/bookings?email=ada@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var bookings []application.BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookings))
	require.Len(t, bookings, 1)
	assert.Equal(t, created.Booking.ID, bookings[0].ID)
}

func TestGetBooking(t *testing.T) {
	s := newTestServer(t)
	created := s.createBooking(t)

	rec := s.do(t, http.MethodGet, "/api/bookings/"+created.Booking.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/bookings/bk_missing000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelBookingEndpoint(t *testing.T) {
	s := newTestServer(t)
	created := s.createBooking(t)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%s/cancel", created.Booking.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto application.BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "cancelled", dto.Status)

	// Cancelling again conflicts.
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%s/cancel", created.Booking.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminConnectFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/admin/connect/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_configured")

	rec = s.do(t, http.MethodPost, "/api/admin/connect/dashboard", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/connect/onboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var onboard application.OnboardingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &onboard))
	assert.NotEmpty(t, onboard.URL)
	assert.NotEmpty(t, onboard.AccountID)

	rec = s.do(t, http.MethodGet, "/api/admin/connect/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), onboard.AccountID)
}
