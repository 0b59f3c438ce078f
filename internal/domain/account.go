package domain

import "time"

type AccountRole string

const (
	RoleUser  AccountRole = "User"
	RoleAdmin AccountRole = "Admin"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "Active"
	AccountStatusSuspended AccountStatus = "Suspended"
)

type Account struct {
	ID            int64         `json:"id"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	PhoneNumber   string        `json:"phone_number"`
	PasswordHash  string        `json:"-"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	Gender        string        `json:"gender"`
	DateOfBirth   *time.Time    `json:"date_of_birth,omitempty"`
	Role          AccountRole   `json:"role"`
	Status        AccountStatus `json:"status"`
	EmailVerified bool          `json:"email_verified"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

type OTPPurpose string

const (
	OTPPurposeVerifyEmail   OTPPurpose = "verify_email"
	OTPPurposeResetPassword OTPPurpose = "reset_password"
)

type OtpToken struct {
	ID        int64
	AccountID int64
	Code      string
	Purpose   OTPPurpose
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the code can still be redeemed at now.
func (o *OtpToken) Usable(now time.Time) bool {
	return o.UsedAt == nil && now.Before(o.ExpiresAt)
}
