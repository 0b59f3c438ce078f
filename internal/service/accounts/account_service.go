package accounts

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/validation"
)

var (
	ErrUsernameTooShort   = domain.NewValidationError("Ensure this value has at least 6 characters")
	ErrInvalidValue       = domain.NewValidationError("Enter a valid value.")
	ErrInvalidEmail       = domain.NewValidationError("Enter a valid email address.")
	ErrPasswordTooShort   = domain.NewValidationError("Ensure this value has at least 8 characters")
	ErrPasswordMismatch   = domain.NewValidationError("Password and confirm password are not the same.")
	ErrUsernameTaken      = domain.NewValidationError("User with this Username already exists.")
	ErrEmailTaken         = domain.NewValidationError("User with this Email already exists.")
	ErrMalformedUsername  = domain.NewValidationError("This username is not valid. Username should contain alphanumeric characters only and have length greater than 6.")
	ErrInvalidCredentials = domain.NewValidationError("Invalid username and/or password")
	ErrSuspended          = domain.NewValidationError("Your account has been suspended.")
	ErrFieldRequired      = domain.NewValidationError("This field is required.")
	ErrInvalidChoice      = domain.NewValidationError("Select a valid choice.")
	ErrInvalidDate        = domain.NewValidationError("Enter a valid date.")
	ErrFutureDate         = domain.NewValidationError("The date of birth should be prior to today.")
	ErrInvalidCode        = domain.NewValidationError("The code is not valid or has expired.")
	ErrAlreadyVerified    = domain.NewValidationError("Your email is already verified.")
)

const (
	minUsernameLength = 6
	maxUsernameLength = 150
	minPasswordLength = 8
)

type AccountUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	UpdateAccount(ctx context.Context, id int64, input UpdateAccountInput) (*domain.Account, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
	VerifyEmail(ctx context.Context, accountID int64, code string) error
	ResendVerification(ctx context.Context, accountID int64) error
	PurgeExpiredCodes(ctx context.Context) (int64, error)
}

type TokenIssuer interface {
	Issue(account *domain.Account) (string, *auth.Claims, error)
}

type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type RegisterInput struct {
	Username        string `json:"username" form:"username" binding:"min=6,max=150,alphanum"`
	Email           string `json:"email" form:"email" binding:"required,email"`
	PhoneNumber     string `json:"phone_number" form:"phone_number" binding:"omitempty,phone"`
	Password        string `json:"password" form:"password" binding:"min=8"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type UpdateAccountInput struct {
	Email       string `json:"email" form:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" form:"phone_number" binding:"omitempty,phone"`
	FirstName   string `json:"first_name" form:"first_name" binding:"required"`
	LastName    string `json:"last_name" form:"last_name"`
	Gender      string `json:"gender" form:"gender" binding:"omitempty,oneof=Male Female Other"`
	DateOfBirth string `json:"date_of_birth" form:"date_of_birth" binding:"omitempty,isodate"`
}

type ResetPasswordInput struct {
	Email           string `json:"email" form:"email"`
	Code            string `json:"code" form:"code"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   *domain.Account `json:"account"`
}

type AccountService struct {
	accounts           repository.AccountRepository
	otps               repository.OTPRepository
	tokens             TokenIssuer
	revoker            TokenRevoker
	producer           Producer
	notificationsTopic string
	otpTTL             time.Duration
	now                func() time.Time
	newCode            func() (string, error)
}

type AccountServiceOption func(*AccountService)

func WithNotificationsTopic(topic string) AccountServiceOption {
	return func(s *AccountService) {
		s.notificationsTopic = topic
	}
}

func WithOTPTTL(ttl time.Duration) AccountServiceOption {
	return func(s *AccountService) {
		s.otpTTL = ttl
	}
}

func WithClock(now func() time.Time) AccountServiceOption {
	return func(s *AccountService) {
		s.now = now
	}
}

func WithCodeGenerator(gen func() (string, error)) AccountServiceOption {
	return func(s *AccountService) {
		s.newCode = gen
	}
}

func NewAccountService(
	accounts repository.AccountRepository,
	otps repository.OTPRepository,
	tokens TokenIssuer,
	revoker TokenRevoker,
	producer Producer,
	opts ...AccountServiceOption,
) *AccountService {
	s := &AccountService{
		accounts: accounts,
		otps:     otps,
		tokens:   tokens,
		revoker:  revoker,
		producer: producer,
		otpTTL:   10 * time.Minute,
		now:      time.Now,
		newCode:  generateCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// generateCode returns six uniformly random decimal digits.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.PhoneNumber)

	if len(username) < minUsernameLength {
		return nil, ErrUsernameTooShort
	}
	if len(username) > maxUsernameLength || !validation.IsUsername(username) {
		return nil, ErrInvalidValue
	}
	if phone != "" && !validation.IsPhone(phone) {
		return nil, ErrInvalidValue
	}
	if !validation.IsEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if err := s.ensureUnique(ctx, username, email); err != nil {
		return nil, err
	}
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		Username:     username,
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Status:       domain.AccountStatusActive,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	if err := s.issueCode(ctx, account, domain.OTPPurposeVerifyEmail); err != nil {
		log.Printf("WARNING: verification code for account %d not issued: %v", account.ID, err)
	}
	return s.session(account)
}

func (s *AccountService) ensureUnique(ctx context.Context, username, email string) error {
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup username: %w", err)
	}
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup email: %w", err)
	}
	return nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength || !validation.IsUsername(username) {
		return nil, ErrMalformedUsername
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if !auth.CheckPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive() {
		return nil, ErrSuspended
	}
	return s.session(account)
}

func (s *AccountService) session(account *domain.Account) (*Session, error) {
	token, claims, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, Account: account}, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return domain.ErrUnauthorized
	}
	return s.revoker.RevokeToken(ctx, claims.ID, claims.TTL(s.now()))
}

func (s *AccountService) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *AccountService) UpdateAccount(ctx context.Context, id int64, input UpdateAccountInput) (*domain.Account, error) {
	email := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.PhoneNumber)
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	gender := strings.TrimSpace(input.Gender)

	if email == "" || firstName == "" {
		return nil, ErrFieldRequired
	}
	if !validation.IsEmail(email) {
		return nil, ErrInvalidEmail
	}
	if phone != "" && !validation.IsPhone(phone) {
		return nil, ErrInvalidValue
	}
	if gender != "" && !validation.IsGender(gender) {
		return nil, ErrInvalidChoice
	}

	var dob *time.Time
	if raw := strings.TrimSpace(input.DateOfBirth); raw != "" {
		parsed, ok := validation.ParseDate(raw)
		if !ok {
			return nil, ErrInvalidDate
		}
		if parsed.After(validation.StartOfDay(s.now())) {
			return nil, ErrFutureDate
		}
		dob = &parsed
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	emailChanged := !strings.EqualFold(account.Email, email)
	account.Email = email
	account.PhoneNumber = phone
	account.FirstName = firstName
	account.LastName = lastName
	account.Gender = gender
	account.DateOfBirth = dob
	if emailChanged {
		account.EmailVerified = false
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	if emailChanged {
		if err := s.issueCode(ctx, account, domain.OTPPurposeVerifyEmail); err != nil {
			log.Printf("WARNING: verification code for account %d not issued: %v", account.ID, err)
		}
	}
	return account, nil
}

// RequestPasswordReset succeeds for unknown addresses so that it cannot be
// used to probe for accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !validation.IsEmail(email) {
		return ErrInvalidEmail
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup account: %w", err)
	}
	return s.issueCode(ctx, account, domain.OTPPurposeResetPassword)
}

func (s *AccountService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	email := strings.TrimSpace(input.Email)
	if !validation.IsEmail(email) {
		return ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if input.Password != input.ConfirmPassword {
		return ErrPasswordMismatch
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("lookup account: %w", err)
	}
	if err := s.redeem(ctx, account.ID, domain.OTPPurposeResetPassword, input.Code); err != nil {
		return err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePassword(ctx, account.ID, hash)
}

func (s *AccountService) VerifyEmail(ctx context.Context, accountID int64, code string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.EmailVerified {
		return nil
	}
	if err := s.redeem(ctx, account.ID, domain.OTPPurposeVerifyEmail, code); err != nil {
		return err
	}
	return s.accounts.MarkEmailVerified(ctx, account.ID)
}

func (s *AccountService) ResendVerification(ctx context.Context, accountID int64) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.EmailVerified {
		return ErrAlreadyVerified
	}
	return s.issueCode(ctx, account, domain.OTPPurposeVerifyEmail)
}

func (s *AccountService) PurgeExpiredCodes(ctx context.Context) (int64, error) {
	return s.otps.PurgeExpired(ctx, s.now())
}

// redeem consumes the latest code of purpose if it matches.
func (s *AccountService) redeem(ctx context.Context, accountID int64, purpose domain.OTPPurpose, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidCode
	}

	token, err := s.otps.GetLatest(ctx, accountID, purpose)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("lookup code: %w", err)
	}

	now := s.now()
	if !token.Usable(now) || subtle.ConstantTimeCompare([]byte(token.Code), []byte(code)) != 1 {
		return ErrInvalidCode
	}
	if err := s.otps.MarkUsed(ctx, token.ID, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return ErrInvalidCode
		}
		return fmt.Errorf("redeem code: %w", err)
	}
	return nil
}

func (s *AccountService) issueCode(ctx context.Context, account *domain.Account, purpose domain.OTPPurpose) error {
	code, err := s.newCode()
	if err != nil {
		return err
	}
	now := s.now()
	token := &domain.OtpToken{
		AccountID: account.ID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.otpTTL),
		CreatedAt: now,
	}
	if err := s.otps.Create(ctx, token); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	if s.producer == nil || s.notificationsTopic == "" {
		return nil
	}
	event := otpNotification(account.Email, purpose, code, s.otpTTL)
	if err := s.producer.Publish(ctx, s.notificationsTopic, strconv.FormatInt(account.ID, 10), event); err != nil {
		log.Printf("WARNING: Failed to publish %s notification for account %d: %v", event.Type, account.ID, err)
	}
	return nil
}

func otpNotification(email string, purpose domain.OTPPurpose, code string, ttl time.Duration) kafka.NotificationEvent {
	subject := "Verify your email"
	action := "verify your email address"
	if purpose == domain.OTPPurposeResetPassword {
		subject = "Reset your password"
		action = "reset your password"
	}
	return kafka.NotificationEvent{
		Type:    kafka.EventOTPIssued,
		Email:   email,
		Subject: subject,
		Body:    fmt.Sprintf("Use the code %s to %s. It expires in %d minutes.", code, action, int(ttl.Minutes())),
	}
}

var _ AccountUseCase = (*AccountService)(nil)
