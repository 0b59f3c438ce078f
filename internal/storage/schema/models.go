package schema

import "time"

// The models below describe the tables the pgx repositories query. They are
// only used for migrations and seeding.

type Account struct {
	ID            int64      `gorm:"primaryKey"`
	Username      string     `gorm:"size:150;not null;uniqueIndex"`
	Email         string     `gorm:"size:254;not null;uniqueIndex"`
	PhoneNumber   string     `gorm:"size:20;not null;default:''"`
	PasswordHash  string     `gorm:"not null"`
	FirstName     string     `gorm:"size:150;not null;default:''"`
	LastName      string     `gorm:"size:150;not null;default:''"`
	Gender        string     `gorm:"size:10;not null;default:''"`
	DateOfBirth   *time.Time `gorm:"type:date"`
	Role          string     `gorm:"size:10;not null;default:User"`
	Status        string     `gorm:"size:10;not null;default:Active"`
	EmailVerified bool       `gorm:"not null;default:false"`
	CreatedAt     time.Time  `gorm:"not null;default:now()"`
	UpdatedAt     time.Time  `gorm:"not null;default:now()"`
}

type Airport struct {
	Code    string `gorm:"primaryKey;size:3"`
	Name    string `gorm:"size:64;not null"`
	City    string `gorm:"size:64;not null"`
	Country string `gorm:"size:64;not null"`
}

type TicketType struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:32;not null;uniqueIndex"`
}

type Flight struct {
	ID               int64     `gorm:"primaryKey"`
	FlightNumber     string    `gorm:"size:10;not null"`
	Airline          string    `gorm:"size:64;not null"`
	DepartureAirport string    `gorm:"size:3;not null;index:idx_flights_route"`
	ArrivalAirport   string    `gorm:"size:3;not null;index:idx_flights_route"`
	DepartureTime    time.Time `gorm:"not null;index"`
	ArrivalTime      time.Time `gorm:"not null"`
	BasePrice        int64     `gorm:"not null"`

	Departure Airport `gorm:"foreignKey:DepartureAirport;references:Code"`
	Arrival   Airport `gorm:"foreignKey:ArrivalAirport;references:Code"`
}

type FlightTicketType struct {
	ID             int64 `gorm:"primaryKey"`
	FlightID       int64 `gorm:"not null;uniqueIndex:idx_flight_ticket_type"`
	TicketTypeID   int64 `gorm:"not null;uniqueIndex:idx_flight_ticket_type"`
	Price          int64 `gorm:"not null"`
	AvailableSeats int   `gorm:"not null;check:available_seats >= 0"`

	Flight     Flight
	TicketType TicketType
}

type Passenger struct {
	ID                  int64      `gorm:"primaryKey"`
	FirstName           string     `gorm:"size:150;not null"`
	LastName            string     `gorm:"size:150;not null"`
	Gender              string     `gorm:"size:10;not null"`
	DateOfBirth         time.Time  `gorm:"type:date;not null"`
	Nationality         string     `gorm:"size:64;not null"`
	PassportNumber      string     `gorm:"size:20;not null;default:''"`
	PassportFromCountry string     `gorm:"size:64;not null;default:''"`
	PassportExpiry      *time.Time `gorm:"type:date"`
}

type Booking struct {
	ID                 int64     `gorm:"primaryKey"`
	AccountID          int64     `gorm:"not null;index"`
	FlightTicketTypeID int64     `gorm:"not null"`
	SeatNumber         string    `gorm:"not null;default:''"`
	Status             string    `gorm:"size:32;not null;default:PendingCancellation;index"`
	BookedAt           time.Time `gorm:"not null;default:now()"`
	UpdatedAt          time.Time `gorm:"not null;default:now()"`

	Account          Account
	FlightTicketType FlightTicketType
	Passengers       []Passenger `gorm:"many2many:booking_passengers"`
}

type Card struct {
	ID             int64  `gorm:"primaryKey"`
	AccountID      int64  `gorm:"not null;uniqueIndex:idx_cards_account_number"`
	CardNumber     string `gorm:"size:20;not null;uniqueIndex:idx_cards_account_number"`
	CardholderName string `gorm:"size:150;not null"`
	ExpiryMonth    int    `gorm:"not null"`
	ExpiryYear     int    `gorm:"not null"`
	CardType       string `gorm:"size:32;not null"`

	Account Account
}

type Payment struct {
	ID            int64     `gorm:"primaryKey"`
	BookingID     int64     `gorm:"not null;index"`
	CardID        int64     `gorm:"not null"`
	Amount        int64     `gorm:"not null"`
	TransactionID string    `gorm:"size:36;not null;index"`
	PaidAt        time.Time `gorm:"not null"`

	Booking Booking
	Card    Card
}

type OtpToken struct {
	ID        int64     `gorm:"primaryKey"`
	AccountID int64     `gorm:"not null;index:idx_otp_account_purpose"`
	Code      string    `gorm:"size:6;not null"`
	Purpose   string    `gorm:"size:32;not null;index:idx_otp_account_purpose"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"not null;default:now()"`

	Account Account
}

// Models lists every table in creation order.
func Models() []any {
	return []any{
		&Account{},
		&Airport{},
		&TicketType{},
		&Flight{},
		&FlightTicketType{},
		&Passenger{},
		&Booking{},
		&Card{},
		&Payment{},
		&OtpToken{},
	}
}
