package api

import (
	"github.com/Domenick1991/flightbooking/internal/service/accounts"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/service/payment"
	"github.com/Domenick1991/flightbooking/internal/validation"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Accounts accounts.AccountUseCase
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Payments payment.PaymentUseCase
}

// NewRouter mounts every public route on a fresh gin engine.
func NewRouter(services Services, authn *Authenticator) (*gin.Engine, error) {
	if err := validation.RegisterGin(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	root := router.Group("/")
	NewFlightHandler(services.Flights).Register(root)
	NewAccountHandler(services.Accounts).Register(root, authn)
	NewBookingHandler(services.Bookings).Register(root, authn)
	NewPaymentHandler(services.Payments).Register(root, authn)

	return router, nil
}
