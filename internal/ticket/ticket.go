package ticket

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jung-kurt/gofpdf"
	"github.com/yeqown/go-qrcode"
)

const timeLayout = "2006-01-02 15:04 MST"

var errNoBooking = errors.New("ticket: booking is nil")

// Renderer draws an A5 e-ticket with a QR code of the booking reference.
type Renderer struct {
	issuer string
}

func NewRenderer(issuer string) *Renderer {
	if issuer == "" {
		issuer = "Flight Booking"
	}
	return &Renderer{issuer: issuer}
}

// Payload is the text encoded in the ticket's QR code.
func Payload(b *domain.Booking) string {
	return strings.Join([]string{
		"FB1",
		b.Reference(),
		b.Flight.DepartureAirport + "-" + b.Flight.ArrivalAirport,
		b.Flight.DepartureTime.UTC().Format("20060102T1504Z"),
		b.SeatNumber,
	}, "|")
}

func qrPNG(text string) ([]byte, error) {
	qrc, err := qrcode.New(text, qrcode.WithBuiltinImageEncoder(qrcode.PNG_FORMAT))
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, fmt.Errorf("write qr: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) Render(b *domain.Booking) ([]byte, error) {
	if b == nil {
		return nil, errNoBooking
	}
	qr, err := qrPNG(Payload(b))
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A5", "")
	pdf.SetTitle("E-ticket "+b.Reference(), false)
	pdf.SetCreator(r.issuer, false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, tr(r.issuer+" - E-ticket"), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr("Booking reference: "+b.Reference()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	rows := [][2]string{
		{"Flight", b.Flight.FlightNumber + " " + b.Flight.Airline},
		{"From", b.Flight.DepartureAirport},
		{"To", b.Flight.ArrivalAirport},
		{"Departure", b.Flight.DepartureTime.UTC().Format(timeLayout)},
		{"Arrival", b.Flight.ArrivalTime.UTC().Format(timeLayout)},
		{"Class", b.TicketType},
		{"Seats", b.SeatNumber},
		{"Status", string(b.Status)},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(35, 7, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(95, 7, tr(row[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "Passengers", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for i, p := range b.Passengers {
		line := fmt.Sprintf("%d. %s %s", i+1, p.FirstName, p.LastName)
		if p.PassportNumber != "" {
			line += " (passport " + p.PassportNumber + ")"
		}
		pdf.CellFormat(130, 6, tr(line), "", 1, "L", false, 0, "")
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 150, 30, 45, 45, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return out.Bytes(), nil
}
