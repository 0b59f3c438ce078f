package domain

import "time"

type Card struct {
	ID             int64  `json:"id"`
	AccountID      int64  `json:"account_id"`
	CardNumber     string `json:"-"`
	CardholderName string `json:"cardholder_name"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	CardType       string `json:"card_type"`
}

// Masked returns the card number with all but the last four digits hidden.
func (c *Card) Masked() string {
	n := len(c.CardNumber)
	if n <= 4 {
		return c.CardNumber
	}
	masked := make([]byte, n)
	for i := 0; i < n-4; i++ {
		masked[i] = '*'
	}
	copy(masked[n-4:], c.CardNumber[n-4:])
	return string(masked)
}

type Payment struct {
	ID            int64     `json:"id"`
	BookingID     int64     `json:"booking_id"`
	CardID        int64     `json:"card_id"`
	Amount        int64     `json:"amount"`
	TransactionID string    `json:"transaction_id"`
	PaidAt        time.Time `json:"paid_at"`
}
