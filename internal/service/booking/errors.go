package booking

import "github.com/Domenick1991/flightbooking/internal/domain"

// Review.
var (
	ErrTooFewInformation = domain.NewValidationError("Too few information.")
	ErrInvalidFlightID   = domain.NewValidationError("Flight ID is not valid.")
	ErrInvalidPassengers = domain.NewValidationError("Invalid number of passengers.")
	ErrInvalidSeatType   = domain.NewValidationError("Seat type is not valid.")
	ErrTooManyPassengers = domain.NewValidationError("Number of passengers is too large.")
	ErrPastFlight        = domain.NewValidationError("You cannot book flight from the past.")
	ErrAirportsMismatch  = domain.NewValidationError("Airports are mismatch.")
	ErrReturnTooSoon     = domain.NewValidationError("Return flight is sooner than departure flight.")
)

// Checkout contact and flights.
var (
	ErrNoCountryCode      = domain.NewValidationError("Please select a country code.")
	ErrNoPhone            = domain.NewValidationError("Please input your phone number.")
	ErrInvalidPhone       = domain.NewValidationError("Your phone number is not valid.")
	ErrNoEmail            = domain.NewValidationError("Please input your email.")
	ErrInvalidEmail       = domain.NewValidationError("Your email is not valid.")
	ErrInvalidDeparture   = domain.NewValidationError("The departure flight is not valid.")
	ErrInvalidReturn      = domain.NewValidationError("The return flight is not valid.")
	ErrInvalidInformation = domain.NewValidationError("Your information is not valid. Please try again.")
	ErrNotEnoughSeats     = domain.NewValidationError("There are not enough seats left.")
)

// Checkout passengers.
var (
	ErrNoFirstNames       = domain.NewValidationError("Please input the first names.")
	ErrInvalidFirstNames  = domain.NewValidationError("Some of the first names are not valid.")
	ErrNoLastNames        = domain.NewValidationError("Please input the last names.")
	ErrInvalidLastNames   = domain.NewValidationError("Some of the last names are not valid.")
	ErrNoGenders          = domain.NewValidationError("Please select the genders.")
	ErrInvalidGenders     = domain.NewValidationError("Some of the genders are not valid.")
	ErrNoBirthDates       = domain.NewValidationError("Please input the dates of birth.")
	ErrInvalidBirthDates  = domain.NewValidationError("Some of the dates of birth are not valid.")
	ErrFutureBirthDates   = domain.NewValidationError("The dates of birth should be prior to today.")
	ErrNoNationalities    = domain.NewValidationError("Please input the nationalities.")
	ErrNoPassportNumbers  = domain.NewValidationError("Please input the passport numbers.")
	ErrInvalidPassports   = domain.NewValidationError("Some of the passport numbers are not valid.")
	ErrNoCountriesOfIssue = domain.NewValidationError("Please input the countries of issue.")
	ErrNoExpireDates      = domain.NewValidationError("Please input the passport expire dates.")
	ErrInvalidExpireDates = domain.NewValidationError("Some of the expire dates are not valid.")
	ErrPassportsExpired   = domain.NewValidationError("Some of the passports are not usable anymore.")
)

// Cancellation and tickets.
var (
	ErrTicketInvalid  = domain.NewValidationError("This ticket is not valid.")
	ErrNotCancellable = domain.NewValidationError("This booking cannot be cancelled.")
	ErrNotPending     = domain.NewValidationError("This booking is not pending cancellation.")
)
