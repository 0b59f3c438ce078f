package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) get(args mock.Arguments) (*domain.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return m.get(m.Called(ctx, id))
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return m.get(m.Called(ctx, username))
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return m.get(m.Called(ctx, email))
}

func (m *MockAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) MarkEmailVerified(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockOTPRepository struct {
	mock.Mock
}

func (m *MockOTPRepository) Create(ctx context.Context, token *domain.OtpToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockOTPRepository) GetLatest(ctx context.Context, accountID int64, purpose domain.OTPPurpose) (*domain.OtpToken, error) {
	args := m.Called(ctx, accountID, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OtpToken), args.Error(1)
}

func (m *MockOTPRepository) MarkUsed(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockOTPRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockRevoker struct {
	mock.Mock
}

func (m *MockRevoker) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var fixedNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	accounts *MockAccountRepository
	otps     *MockOTPRepository
	revoker  *MockRevoker
	producer *MockProducer
	service  *AccountService
}

func newFixture() *fixture {
	f := &fixture{
		accounts: &MockAccountRepository{},
		otps:     &MockOTPRepository{},
		revoker:  &MockRevoker{},
		producer: &MockProducer{},
	}
	f.service = NewAccountService(f.accounts, f.otps, auth.NewManager("secret", time.Hour), f.revoker, f.producer,
		WithNotificationsTopic("notifications"),
		WithOTPTTL(10*time.Minute),
		WithClock(func() time.Time { return fixedNow }),
		WithCodeGenerator(func() (string, error) { return "123456", nil }),
	)
	return f
}

func validRegister() RegisterInput {
	return RegisterInput{
		Username:        "tester3",
		Email:           "tester3@example.com",
		PhoneNumber:     "0123456789",
		Password:        "12345678",
		ConfirmPassword: "12345678",
	}
}

func TestAccountService_Register_ValidationOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{"short username", func(in *RegisterInput) { in.Username = "test" }, ErrUsernameTooShort},
		{"non alphanumeric username", func(in *RegisterInput) { in.Username = "test%^$" }, ErrInvalidValue},
		{"phone with letters", func(in *RegisterInput) { in.PhoneNumber = "01234abc2" }, ErrInvalidValue},
		{"bad email", func(in *RegisterInput) { in.Email = "tester3" }, ErrInvalidEmail},
		{"short password", func(in *RegisterInput) { in.Password = "1234"; in.ConfirmPassword = "1234" }, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			in := validRegister()
			tt.mutate(&in)

			_, err := f.service.Register(context.Background(), in)
			assert.ErrorIs(t, err, tt.want)
			f.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAccountService_Register_DuplicateUsernameBeforeMismatch(t *testing.T) {
	f := newFixture()
	in := validRegister()
	in.Username = "tester2"
	in.ConfirmPassword = "12345678abc"

	f.accounts.On("GetByUsername", mock.Anything, "tester2").Return(&domain.Account{ID: 2}, nil).Once()

	_, err := f.service.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAccountService_Register_DuplicateEmail(t *testing.T) {
	f := newFixture()
	f.accounts.On("GetByUsername", mock.Anything, "tester3").Return(nil, domain.ErrNotFound).Once()
	f.accounts.On("GetByEmail", mock.Anything, "tester3@example.com").Return(&domain.Account{ID: 2}, nil).Once()

	_, err := f.service.Register(context.Background(), validRegister())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAccountService_Register_PasswordMismatch(t *testing.T) {
	f := newFixture()
	in := validRegister()
	in.ConfirmPassword = "12345678abc"
	f.accounts.On("GetByUsername", mock.Anything, "tester3").Return(nil, domain.ErrNotFound).Once()
	f.accounts.On("GetByEmail", mock.Anything, "tester3@example.com").Return(nil, domain.ErrNotFound).Once()

	_, err := f.service.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestAccountService_Register_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.accounts.On("GetByUsername", ctx, "tester3").Return(nil, domain.ErrNotFound).Once()
	f.accounts.On("GetByEmail", ctx, "tester3@example.com").Return(nil, domain.ErrNotFound).Once()
	f.accounts.On("Create", ctx, mock.MatchedBy(func(a *domain.Account) bool {
		return a.Username == "tester3" && a.Role == domain.RoleUser && a.Status == domain.AccountStatusActive &&
			auth.CheckPassword(a.PasswordHash, "12345678")
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Account).ID = 7
	}).Return(nil).Once()
	f.otps.On("Create", ctx, mock.MatchedBy(func(tok *domain.OtpToken) bool {
		return tok.AccountID == 7 && tok.Code == "123456" && tok.Purpose == domain.OTPPurposeVerifyEmail &&
			tok.ExpiresAt.Equal(fixedNow.Add(10*time.Minute))
	})).Return(nil).Once()
	f.producer.On("Publish", ctx, "notifications", "7", mock.MatchedBy(func(e kafka.NotificationEvent) bool {
		return e.Type == kafka.EventOTPIssued && e.Email == "tester3@example.com"
	})).Return(nil).Once()

	session, err := f.service.Register(ctx, validRegister())
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, int64(7), session.Account.ID)

	f.accounts.AssertExpectations(t)
	f.otps.AssertExpectations(t)
	f.producer.AssertExpectations(t)
}

func TestAccountService_Login(t *testing.T) {
	hash, err := auth.HashPassword("12345678")
	require.NoError(t, err)
	active := &domain.Account{ID: 1, Username: "tester", PasswordHash: hash, Role: domain.RoleUser, Status: domain.AccountStatusActive}
	suspended := &domain.Account{ID: 2, Username: "blocked", PasswordHash: hash, Status: domain.AccountStatusSuspended}

	t.Run("malformed username", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Login(context.Background(), "tester!", "12345678")
		assert.ErrorIs(t, err, ErrMalformedUsername)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByUsername", mock.Anything, "tester123").Return(nil, domain.ErrNotFound).Once()
		_, err := f.service.Login(context.Background(), "tester123", "12345678")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByUsername", mock.Anything, "tester").Return(active, nil).Once()
		_, err := f.service.Login(context.Background(), "tester", "12345678abc")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("suspended", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByUsername", mock.Anything, "blocked").Return(suspended, nil).Once()
		_, err := f.service.Login(context.Background(), "blocked", "12345678")
		assert.ErrorIs(t, err, ErrSuspended)
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByUsername", mock.Anything, "tester").Return(active, nil).Once()
		session, err := f.service.Login(context.Background(), "tester", "12345678")
		require.NoError(t, err)

		claims, err := auth.NewManager("secret", time.Hour).Parse(session.Token)
		require.NoError(t, err)
		assert.Equal(t, "tester", claims.Username)
		assert.Equal(t, "1", claims.Subject)
	})
}

func TestAccountService_Logout(t *testing.T) {
	f := newFixture()
	claims := &auth.Claims{}
	claims.ID = "jti-1"
	claims.ExpiresAt = nil

	f.revoker.On("RevokeToken", mock.Anything, "jti-1", time.Duration(0)).Return(nil).Once()
	require.NoError(t, f.service.Logout(context.Background(), claims))
	f.revoker.AssertExpectations(t)

	assert.ErrorIs(t, f.service.Logout(context.Background(), nil), domain.ErrUnauthorized)
}

func TestAccountService_UpdateAccount(t *testing.T) {
	valid := UpdateAccountInput{
		Email:       "newemail@example.com",
		PhoneNumber: "0987654321",
		FirstName:   "Jane",
		LastName:    "Doe",
		Gender:      "Female",
		DateOfBirth: "1991-01-01",
	}

	t.Run("invalid gender", func(t *testing.T) {
		f := newFixture()
		in := valid
		in.Gender = "Unknown"
		_, err := f.service.UpdateAccount(context.Background(), 1, in)
		assert.ErrorIs(t, err, ErrInvalidChoice)
	})

	t.Run("required fields", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.UpdateAccount(context.Background(), 1, UpdateAccountInput{})
		assert.ErrorIs(t, err, ErrFieldRequired)
	})

	t.Run("future birth date", func(t *testing.T) {
		f := newFixture()
		in := valid
		in.DateOfBirth = "2069-01-01"
		_, err := f.service.UpdateAccount(context.Background(), 1, in)
		assert.ErrorIs(t, err, ErrFutureDate)
	})

	t.Run("saves and reissues verification on email change", func(t *testing.T) {
		f := newFixture()
		existing := &domain.Account{ID: 1, Email: "old@example.com", EmailVerified: true}
		f.accounts.On("GetByID", mock.Anything, int64(1)).Return(existing, nil).Once()
		f.accounts.On("Update", mock.Anything, mock.MatchedBy(func(a *domain.Account) bool {
			return a.Email == "newemail@example.com" && !a.EmailVerified && a.Gender == "Female" &&
				a.DateOfBirth != nil && a.DateOfBirth.Format("2006-01-02") == "1991-01-01"
		})).Return(nil).Once()
		f.otps.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.producer.On("Publish", mock.Anything, "notifications", "1", mock.Anything).Return(nil).Once()

		account, err := f.service.UpdateAccount(context.Background(), 1, valid)
		require.NoError(t, err)
		assert.Equal(t, "Jane", account.FirstName)
		f.accounts.AssertExpectations(t)
		f.otps.AssertExpectations(t)
	})

	t.Run("email conflict", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByID", mock.Anything, int64(1)).Return(&domain.Account{ID: 1, Email: "old@example.com"}, nil).Once()
		f.accounts.On("Update", mock.Anything, mock.Anything).Return(domain.ErrConflict).Once()

		_, err := f.service.UpdateAccount(context.Background(), 1, valid)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestAccountService_RequestPasswordReset(t *testing.T) {
	t.Run("invalid email", func(t *testing.T) {
		f := newFixture()
		assert.ErrorIs(t, f.service.RequestPasswordReset(context.Background(), "invalidemail"), ErrInvalidEmail)
		assert.ErrorIs(t, f.service.RequestPasswordReset(context.Background(), ""), ErrInvalidEmail)
	})

	t.Run("unknown email is silent", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrNotFound).Once()
		assert.NoError(t, f.service.RequestPasswordReset(context.Background(), "nobody@example.com"))
		f.otps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("issues reset code", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByEmail", mock.Anything, "validemail@example.com").Return(&domain.Account{ID: 3, Email: "validemail@example.com"}, nil).Once()
		f.otps.On("Create", mock.Anything, mock.MatchedBy(func(tok *domain.OtpToken) bool {
			return tok.Purpose == domain.OTPPurposeResetPassword
		})).Return(nil).Once()
		f.producer.On("Publish", mock.Anything, "notifications", "3", mock.MatchedBy(func(e kafka.NotificationEvent) bool {
			return e.Subject == "Reset your password"
		})).Return(errors.New("broker down")).Once()

		assert.NoError(t, f.service.RequestPasswordReset(context.Background(), "validemail@example.com"))
		f.otps.AssertExpectations(t)
	})
}

func TestAccountService_ResetPassword(t *testing.T) {
	in := ResetPasswordInput{Email: "a@example.com", Code: "123456", Password: "newpassword", ConfirmPassword: "newpassword"}
	account := &domain.Account{ID: 4, Email: "a@example.com"}

	t.Run("expired code", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByEmail", mock.Anything, "a@example.com").Return(account, nil).Once()
		f.otps.On("GetLatest", mock.Anything, int64(4), domain.OTPPurposeResetPassword).
			Return(&domain.OtpToken{ID: 9, Code: "123456", ExpiresAt: fixedNow.Add(-time.Second)}, nil).Once()

		assert.ErrorIs(t, f.service.ResetPassword(context.Background(), in), ErrInvalidCode)
		f.accounts.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong code", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByEmail", mock.Anything, "a@example.com").Return(account, nil).Once()
		f.otps.On("GetLatest", mock.Anything, int64(4), domain.OTPPurposeResetPassword).
			Return(&domain.OtpToken{ID: 9, Code: "654321", ExpiresAt: fixedNow.Add(time.Minute)}, nil).Once()

		assert.ErrorIs(t, f.service.ResetPassword(context.Background(), in), ErrInvalidCode)
	})

	t.Run("mismatch", func(t *testing.T) {
		f := newFixture()
		bad := in
		bad.ConfirmPassword = "other-password"
		assert.ErrorIs(t, f.service.ResetPassword(context.Background(), bad), ErrPasswordMismatch)
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByEmail", mock.Anything, "a@example.com").Return(account, nil).Once()
		f.otps.On("GetLatest", mock.Anything, int64(4), domain.OTPPurposeResetPassword).
			Return(&domain.OtpToken{ID: 9, Code: "123456", ExpiresAt: fixedNow.Add(time.Minute)}, nil).Once()
		f.otps.On("MarkUsed", mock.Anything, int64(9), fixedNow).Return(nil).Once()
		f.accounts.On("UpdatePassword", mock.Anything, int64(4), mock.MatchedBy(func(hash string) bool {
			return auth.CheckPassword(hash, "newpassword")
		})).Return(nil).Once()

		require.NoError(t, f.service.ResetPassword(context.Background(), in))
		f.accounts.AssertExpectations(t)
		f.otps.AssertExpectations(t)
	})
}

func TestAccountService_VerifyEmail(t *testing.T) {
	t.Run("already verified is a no-op", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByID", mock.Anything, int64(5)).Return(&domain.Account{ID: 5, EmailVerified: true}, nil).Once()
		assert.NoError(t, f.service.VerifyEmail(context.Background(), 5, "000000"))
	})

	t.Run("verifies", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByID", mock.Anything, int64(5)).Return(&domain.Account{ID: 5}, nil).Once()
		f.otps.On("GetLatest", mock.Anything, int64(5), domain.OTPPurposeVerifyEmail).
			Return(&domain.OtpToken{ID: 1, Code: "123456", ExpiresAt: fixedNow.Add(time.Minute)}, nil).Once()
		f.otps.On("MarkUsed", mock.Anything, int64(1), fixedNow).Return(nil).Once()
		f.accounts.On("MarkEmailVerified", mock.Anything, int64(5)).Return(nil).Once()

		require.NoError(t, f.service.VerifyEmail(context.Background(), 5, " 123456 "))
		f.accounts.AssertExpectations(t)
	})

	t.Run("code used concurrently", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("GetByID", mock.Anything, int64(5)).Return(&domain.Account{ID: 5}, nil).Once()
		f.otps.On("GetLatest", mock.Anything, int64(5), domain.OTPPurposeVerifyEmail).
			Return(&domain.OtpToken{ID: 1, Code: "123456", ExpiresAt: fixedNow.Add(time.Minute)}, nil).Once()
		f.otps.On("MarkUsed", mock.Anything, int64(1), fixedNow).Return(domain.ErrConflict).Once()

		assert.ErrorIs(t, f.service.VerifyEmail(context.Background(), 5, "123456"), ErrInvalidCode)
	})
}

func TestAccountService_ResendVerification(t *testing.T) {
	f := newFixture()
	f.accounts.On("GetByID", mock.Anything, int64(6)).Return(&domain.Account{ID: 6, EmailVerified: true}, nil).Once()
	assert.ErrorIs(t, f.service.ResendVerification(context.Background(), 6), ErrAlreadyVerified)
}

func TestAccountService_PurgeExpiredCodes(t *testing.T) {
	f := newFixture()
	f.otps.On("PurgeExpired", mock.Anything, fixedNow).Return(int64(3), nil).Once()

	n, err := f.service.PurgeExpiredCodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}
}
