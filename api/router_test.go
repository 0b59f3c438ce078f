package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewRouter_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := NewRouter(Services{
		Accounts: &MockAccountUseCase{},
		Flights:  &MockFlightUseCase{},
		Bookings: &MockBookingUseCase{},
		Payments: &MockPaymentUseCase{},
	}, NewAuthenticator(testTokens, &MockRevocationStore{}))
	require.NoError(t, err)

	registered := map[string]bool{}
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"GET /", "GET /airports", "POST /login", "POST /logout", "POST /register",
		"POST /verify-email", "POST /verify-email/resend", "POST /password-reset", "POST /password-reset/confirm",
		"GET /flight", "GET /flight/:id/", "GET /review", "POST /payment", "POST /process", "GET /book/",
		"POST /cancelbooking/:id/", "GET /flight/ticket/:id", "GET /account", "POST /update-account",
		"GET /pending-cancellations/", "POST /approve-cancellation/:id/", "POST /reject-cancellation/:id/",
	} {
		assert.True(t, registered[route], route)
	}
}

func TestNewRouter_PublicAirports(t *testing.T) {
	gin.SetMode(gin.TestMode)
	flightService := &MockFlightUseCase{}
	router, err := NewRouter(Services{Flights: flightService}, NewAuthenticator(testTokens, &MockRevocationStore{}))
	require.NoError(t, err)

	flightService.On("ListAirports", mock.Anything).Return(testAirports, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/airports", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	flightService.AssertExpectations(t)
}
