package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Review(ctx context.Context, input booking.ReviewInput) (*booking.Review, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Review), args.Error(1)
}

func (m *MockBookingUseCase) CreateBookings(ctx context.Context, accountID int64, form booking.Form) (*booking.Checkout, error) {
	args := m.Called(ctx, accountID, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Checkout), args.Error(1)
}

func (m *MockBookingUseCase) ListForAccount(ctx context.Context, accountID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) RequestCancellation(ctx context.Context, accountID, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, accountID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListPendingCancellations(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ApproveCancellation(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) RejectCancellation(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ExpireUnpaid(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Ticket(ctx context.Context, accountID, bookingID int64) (*booking.Ticket, error) {
	args := m.Called(ctx, accountID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) TicketByID(ctx context.Context, bookingID int64) (*booking.Ticket, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Ticket), args.Error(1)
}

func newBookingEngine(t *testing.T, service *MockBookingUseCase, store *MockRevocationStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewBookingHandler(service).Register(router.Group("/"), NewAuthenticator(testTokens, store))
	return router
}

func authorized(t *testing.T, store *MockRevocationStore, req *http.Request, id int64, role domain.AccountRole) *http.Request {
	t.Helper()
	token, claims := issueToken(t, id, role)
	store.On("IsTokenRevoked", mock.Anything, claims.ID).Return(false, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func sampleBooking(id int64, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:             id,
		AccountID:      7,
		SeatNumber:     "19,20",
		Status:         status,
		Flight:         domain.Flight{ID: 1, FlightNumber: "A333", DepartureTime: time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC)},
		TicketType:     "Economy",
		Price:          1200000,
		PassengerCount: 2,
	}
}

func TestBookingHandler_review(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/review?d_flight_id=1&flight_ticket_type=Economy&num_passengers=2", nil)

	input := booking.ReviewInput{DepartureFlightID: "1", TicketType: "Economy", NumPassengers: "2"}
	review := &booking.Review{
		Departure:  domain.FareOffer{Flight: domain.Flight{ID: 1, FlightNumber: "A333"}, Fare: domain.FlightTicketType{ID: 10, Price: 1200000}},
		Passengers: 2,
		Total:      2400000,
	}
	mockService.On("Review", c.Request.Context(), input).Return(review, nil)

	handler.review(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2400000), gjson.Get(w.Body.String(), "total").Int())
	assert.False(t, gjson.Get(w.Body.String(), "return").Exists())
	mockService.AssertExpectations(t)
}

func TestBookingHandler_reviewValidation(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/review", nil)

	mockService.On("Review", c.Request.Context(), booking.ReviewInput{}).Return(nil, booking.ErrTooFewInformation)

	handler.review(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Too few information.", gjson.Get(w.Body.String(), "error").String())
}

func TestBookingHandler_createFromURLEncodedForm(t *testing.T) {
	mockService := &MockBookingUseCase{}
	store := &MockRevocationStore{}
	router := newBookingEngine(t, mockService, store)

	values := url.Values{}
	values.Set("flight1", "1")
	values.Set("flight1Class", "Economy")
	values.Set("numPassengers", "1")
	values.Set("passenger0Fname", "Minh")
	req := httptest.NewRequest(http.MethodPost, "/payment", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	authorized(t, store, req, 7, domain.RoleUser)

	expected := booking.Form{"flight1": "1", "flight1Class": "Economy", "numPassengers": "1", "passenger0Fname": "Minh"}
	checkout := &booking.Checkout{Bookings: []domain.Booking{*sampleBooking(5, domain.BookingStatusPendingCancellation)}, Passengers: 1, Total: 1200000}
	mockService.On("CreateBookings", mock.Anything, int64(7), expected).Return(checkout, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(5), gjson.Get(w.Body.String(), "bookings.0.booking_id").Int())
	mockService.AssertExpectations(t)
}

func TestBookingHandler_createFromJSON(t *testing.T) {
	mockService := &MockBookingUseCase{}
	store := &MockRevocationStore{}
	router := newBookingEngine(t, mockService, store)

	req := httptest.NewRequest(http.MethodPost, "/payment",
		strings.NewReader(`{"flight1": 1, "flight1Class": "Economy", "numPassengers": 2, "flight2": null}`))
	req.Header.Set("Content-Type", "application/json")
	authorized(t, store, req, 7, domain.RoleUser)

	expected := booking.Form{"flight1": "1", "flight1Class": "Economy", "numPassengers": "2"}
	mockService.On("CreateBookings", mock.Anything, int64(7), expected).Return(nil, booking.ErrNotEnoughSeats)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "There are not enough seats left.", gjson.Get(w.Body.String(), "error").String())
}

func TestBookingHandler_createLocked(t *testing.T) {
	mockService := &MockBookingUseCase{}
	store := &MockRevocationStore{}
	router := newBookingEngine(t, mockService, store)

	req := httptest.NewRequest(http.MethodPost, "/payment", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	authorized(t, store, req, 7, domain.RoleUser)
	mockService.On("CreateBookings", mock.Anything, int64(7), booking.Form{}).Return(nil, domain.ErrLocked)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_requiresLogin(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingEngine(t, mockService, &MockRevocationStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/book/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "ListForAccount", mock.Anything, mock.Anything)
}

func TestBookingHandler_list(t *testing.T) {
	mockService := &MockBookingUseCase{}
	store := &MockRevocationStore{}
	router := newBookingEngine(t, mockService, store)

	req := authorized(t, store, httptest.NewRequest(http.MethodGet, "/book/", nil), 7, domain.RoleUser)
	mockService.On("ListForAccount", mock.Anything, int64(7)).
		Return([]domain.Booking{*sampleBooking(5, domain.BookingStatusConfirmed)}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Confirmed", gjson.Get(w.Body.String(), "0.status").String())
	assert.Equal(t, "19,20", gjson.Get(w.Body.String(), "0.seat_number").String())
}

func TestBookingHandler_requestCancellation(t *testing.T) {
	mockService := &MockBookingUseCase{}
	store := &MockRevocationStore{}
	router := newBookingEngine(t, mockService, store)

	req := authorized(t, store, httptest.NewRequest(http.MethodPost, "/cancelbooking/5/", nil), 7, domain.RoleUser)
	mockService.On("RequestCancellation", mock.Anything, int64(7), int64(5)).
		Return(sampleBooking(5, domain.BookingStatusPendingCancellation), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PendingCancellation", gjson.Get(w.Body.String(), "status").String())
}

func TestBookingHandler_requestCancellationInvalid(t *testing.T) {
	mockService := &MockBookingUseCase{}
	store := &MockRevocationStore{}
	router := newBookingEngine(t, mockService, store)

	req := authorized(t, store, httptest.NewRequest(http.MethodPost, "/cancelbooking/x/", nil), 7, domain.RoleUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This ticket is not valid.", gjson.Get(w.Body.String(), "error").String())
}

func TestBookingHandler_ticket(t *testing.T) {
	mockService := &MockBookingUseCase{}
	store := &MockRevocationStore{}
	router := newBookingEngine(t, mockService, store)

	req := authorized(t, store, httptest.NewRequest(http.MethodGet, "/flight/ticket/5", nil), 7, domain.RoleUser)
	mockService.On("Ticket", mock.Anything, int64(7), int64(5)).
		Return(&booking.Ticket{Filename: "ticket-A333-000005.pdf", Content: []byte("%PDF-1.3")}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ticket-A333-000005.pdf")
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

func TestBookingHandler_adminRoutes(t *testing.T) {
	mockService := &MockBookingUseCase{}
	store := &MockRevocationStore{}
	router := newBookingEngine(t, mockService, store)

	mockService.On("ListPendingCancellations", mock.Anything).
		Return([]domain.Booking{*sampleBooking(5, domain.BookingStatusPendingCancellation)}, nil)
	mockService.On("ApproveCancellation", mock.Anything, int64(5)).Return(sampleBooking(5, domain.BookingStatusCanceled), nil)
	mockService.On("RejectCancellation", mock.Anything, int64(6)).Return(nil, booking.ErrNotPending)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authorized(t, store, httptest.NewRequest(http.MethodGet, "/pending-cancellations/", nil), 1, domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), gjson.Get(w.Body.String(), "0.booking_id").Int())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authorized(t, store, httptest.NewRequest(http.MethodPost, "/approve-cancellation/5/", nil), 1, domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Canceled", gjson.Get(w.Body.String(), "status").String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authorized(t, store, httptest.NewRequest(http.MethodPost, "/reject-cancellation/6/", nil), 1, domain.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This booking is not pending cancellation.", gjson.Get(w.Body.String(), "error").String())

	mockService.AssertExpectations(t)
}

func TestBookingHandler_adminRouteForbidsUsers(t *testing.T) {
	mockService := &MockBookingUseCase{}
	store := &MockRevocationStore{}
	router := newBookingEngine(t, mockService, store)

	req := authorized(t, store, httptest.NewRequest(http.MethodPost, "/approve-cancellation/5/", nil), 7, domain.RoleUser)
	store.On("RevokeToken", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertNotCalled(t, "ApproveCancellation", mock.Anything, mock.Anything)
	store.AssertCalled(t, "RevokeToken", mock.Anything, mock.Anything, mock.Anything)
}
