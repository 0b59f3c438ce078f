package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/validation"
)

// Form is a flat set of submitted checkout fields. Passenger fields are
// indexed from zero: passenger0Fname, passenger1Fname, ...
type Form map[string]string

func (f Form) Get(key string) string {
	return strings.TrimSpace(f[key])
}

func (f Form) passenger(i int, field string) string {
	return f.Get("passenger" + strconv.Itoa(i) + field)
}

// Checkout is the result of one booking step: one booking per leg.
type Checkout struct {
	Bookings      []domain.Booking `json:"bookings"`
	Passengers    int              `json:"num_passengers"`
	International bool             `json:"international"`
	Total         int64            `json:"total"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
}

func (s *BookingService) CreateBookings(ctx context.Context, accountID int64, form Form) (*Checkout, error) {
	countryCode := form.Get("countryCode")
	mobile := form.Get("mobile")
	email := form.Get("email")

	if countryCode == "" {
		return nil, ErrNoCountryCode
	}
	if mobile == "" {
		return nil, ErrNoPhone
	}
	if !validation.IsDigits(countryCode) || !validation.IsPhone(mobile) {
		return nil, ErrInvalidPhone
	}
	if email == "" {
		return nil, ErrNoEmail
	}
	if !validation.IsEmail(email) {
		return nil, ErrInvalidEmail
	}

	now := s.now()
	departure, err := s.checkoutLeg(ctx, form.Get("flight1"), form.Get("flight1Class"), now)
	if err != nil {
		return nil, err
	}
	if departure == nil {
		return nil, ErrInvalidDeparture
	}
	legs := []domain.CheckoutLeg{*departure}

	if form.Get("flight2") != "" {
		ret, err := s.checkoutLeg(ctx, form.Get("flight2"), form.Get("flight2Class"), now)
		if err != nil {
			return nil, err
		}
		if ret == nil || !ret.Flight.Reverses(&departure.Flight) ||
			!ret.Flight.DepartureTime.After(departure.Flight.DepartureTime) {
			return nil, ErrInvalidReturn
		}
		legs = append(legs, *ret)
	}

	n, ok := validation.ParsePositiveInt(form.Get("numPassengers"))
	if !ok || (s.maxPassengers > 0 && n > int64(s.maxPassengers)) {
		return nil, ErrInvalidInformation
	}
	count := int(n)

	international := false
	for _, leg := range legs {
		international = international || leg.Flight.International()
	}
	lastDeparture := legs[len(legs)-1].Flight.DepartureTime
	passengers, err := parsePassengers(form, count, international, now, lastDeparture)
	if err != nil {
		return nil, err
	}

	for _, leg := range legs {
		if leg.Fare.AvailableSeats < count {
			return nil, ErrNotEnoughSeats
		}
	}

	release, err := s.lockFares(ctx, legs)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.CreateCheckout(ctx, accountID, legs, passengers)
	release()
	if errors.Is(err, domain.ErrNoSeats) {
		return nil, ErrNotEnoughSeats
	}
	if err != nil {
		return nil, fmt.Errorf("create bookings: %w", err)
	}

	checkout := &Checkout{
		Bookings:      bookings,
		Passengers:    count,
		International: international,
		Email:         email,
		Phone:         "+" + countryCode + " " + mobile,
	}
	refs := make([]string, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		b.AccountEmail = email
		checkout.Total += b.Amount()
		refs = append(refs, b.Reference())
		s.publish(ctx, kafka.EventBookingCreated, b)
	}
	s.notify(ctx, kafka.EventBookingCreated, email, "Booking received",
		fmt.Sprintf("Bookings %s are reserved. Please complete the payment of %d within %d minutes.",
			strings.Join(refs, ", "), checkout.Total, int(s.holdTTL.Minutes())))
	return checkout, nil
}

// checkoutLeg resolves a flight and fare class. A nil leg without error
// means the selection is not bookable.
func (s *BookingService) checkoutLeg(ctx context.Context, rawID, class string, now time.Time) (*domain.CheckoutLeg, error) {
	id, ok := validation.ParsePositiveInt(rawID)
	if !ok || class == "" {
		return nil, nil
	}
	flight, err := s.flights.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup flight: %w", err)
	}
	if flight.Departed(now) {
		return nil, nil
	}
	fare, err := s.flights.GetFare(ctx, id, class)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup fare: %w", err)
	}
	return &domain.CheckoutLeg{Flight: *flight, Fare: *fare}, nil
}

type passengerField struct {
	suffix  string
	missing error
	check   func(value string) error
}

func parsePassengers(form Form, count int, international bool, now, lastDeparture time.Time) ([]domain.Passenger, error) {
	today := validation.StartOfDay(now)
	valid := func(ok func(string) bool, bad error) func(string) error {
		return func(v string) error {
			if !ok(v) {
				return bad
			}
			return nil
		}
	}

	fields := []passengerField{
		{"Fname", ErrNoFirstNames, valid(validation.IsPersonName, ErrInvalidFirstNames)},
		{"Lname", ErrNoLastNames, valid(validation.IsPersonName, ErrInvalidLastNames)},
		{"Gender", ErrNoGenders, valid(validation.IsGender, ErrInvalidGenders)},
		{"DateOfBirth", ErrNoBirthDates, func(v string) error {
			dob, ok := validation.ParseDate(v)
			if !ok {
				return ErrInvalidBirthDates
			}
			if !dob.Before(today) {
				return ErrFutureBirthDates
			}
			return nil
		}},
		{"Nationality", ErrNoNationalities, nil},
	}
	if international {
		fields = append(fields,
			passengerField{"PassportNumber", ErrNoPassportNumbers, valid(validation.IsPassport, ErrInvalidPassports)},
			passengerField{"CountryOfIssue", ErrNoCountriesOfIssue, nil},
			passengerField{"PassportExpireDate", ErrNoExpireDates, func(v string) error {
				expiry, ok := validation.ParseDate(v)
				if !ok {
					return ErrInvalidExpireDates
				}
				if expiry.Before(today) || expiry.Before(validation.StartOfDay(lastDeparture)) {
					return ErrPassportsExpired
				}
				return nil
			}},
		)
	}

	for _, field := range fields {
		for i := 0; i < count; i++ {
			v := form.passenger(i, field.suffix)
			if v == "" {
				return nil, field.missing
			}
			if field.check != nil {
				if err := field.check(v); err != nil {
					return nil, err
				}
			}
		}
	}

	passengers := make([]domain.Passenger, count)
	for i := range passengers {
		dob, _ := validation.ParseDate(form.passenger(i, "DateOfBirth"))
		p := domain.Passenger{
			FirstName:   form.passenger(i, "Fname"),
			LastName:    form.passenger(i, "Lname"),
			Gender:      form.passenger(i, "Gender"),
			DateOfBirth: dob,
			Nationality: form.passenger(i, "Nationality"),
		}
		if international {
			expiry, _ := validation.ParseDate(form.passenger(i, "PassportExpireDate"))
			p.PassportNumber = strings.ToUpper(form.passenger(i, "PassportNumber"))
			p.PassportFromCountry = form.passenger(i, "CountryOfIssue")
			p.PassportExpiry = &expiry
		}
		passengers[i] = p
	}
	return passengers, nil
}

// lockFares takes the fare locks in ascending id order so that two
// checkouts over the same fares cannot wait on each other.
func (s *BookingService) lockFares(ctx context.Context, legs []domain.CheckoutLeg) (func(), error) {
	if s.cache == nil {
		return func() {}, nil
	}

	ids := make([]int64, 0, len(legs))
	for _, leg := range legs {
		ids = append(ids, leg.Fare.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	held := make([]int64, 0, len(ids))
	release := func() {
		for _, id := range held {
			if err := s.cache.ReleaseFareLock(context.WithoutCancel(ctx), id); err != nil {
				log.Printf("WARNING: Failed to release fare lock %d: %v", id, err)
			}
		}
	}

	for _, id := range ids {
		if err := s.acquire(ctx, id); err != nil {
			release()
			return nil, err
		}
		held = append(held, id)
	}
	return release, nil
}

func (s *BookingService) acquire(ctx context.Context, fareID int64) error {
	for attempt := 0; ; attempt++ {
		ok, err := s.cache.AcquireFareLock(ctx, fareID, s.lockTTL)
		if err != nil {
			return fmt.Errorf("acquire fare lock: %w", err)
		}
		if ok {
			return nil
		}
		if attempt >= s.lockRetries {
			return domain.ErrLocked
		}

		timer := time.NewTimer(s.lockBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
