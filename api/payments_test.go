package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/payment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tidwall/gjson"
)

// MockPaymentUseCase is a mock implementation of payment.PaymentUseCase
type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) Process(ctx context.Context, accountID int64, input payment.ProcessInput) (*payment.Receipt, error) {
	args := m.Called(ctx, accountID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Receipt), args.Error(1)
}

func TestPaymentHandler_process(t *testing.T) {
	mockService := &MockPaymentUseCase{}
	handler := NewPaymentHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(
		"ticket1=5&ticket2=6&cardNumber=9876678998766789987&cardHolderName=NGUYEN+VAN+A&expMonth=12&expYear=2030&cardType=Visa"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Set(accountIDKey, int64(7))

	input := payment.ProcessInput{
		Ticket1:        "5",
		Ticket2:        "6",
		CardNumber:     "9876678998766789987",
		CardHolderName: "NGUYEN VAN A",
		ExpMonth:       "12",
		ExpYear:        "2030",
		CardType:       "Visa",
	}
	receipt := &payment.Receipt{
		TransactionID: "5f1c3c52-7d5e-4a8f-9d0e-1c2b3a4d5e6f",
		Card:          "***************9987",
		Total:         2400000,
		Payments: []domain.Payment{
			{ID: 1, BookingID: 5, Amount: 2400000},
			{ID: 2, BookingID: 6, Amount: 2400000},
		},
	}
	mockService.On("Process", c.Request.Context(), int64(7), input).Return(receipt, nil)

	handler.process(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "***************9987", gjson.Get(body, "card").String())
	assert.Equal(t, int64(2), gjson.Get(body, "payments.#").Int())
	mockService.AssertExpectations(t)
}

func TestPaymentHandler_processJSON(t *testing.T) {
	mockService := &MockPaymentUseCase{}
	handler := NewPaymentHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{"ticket1": "5"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(accountIDKey, int64(7))

	mockService.On("Process", c.Request.Context(), int64(7), payment.ProcessInput{Ticket1: "5"}).
		Return(nil, payment.ErrNoCardNumber)

	handler.process(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please input your card number.", gjson.Get(w.Body.String(), "error").String())
}

func TestPaymentHandler_processMalformedJSON(t *testing.T) {
	mockService := &MockPaymentUseCase{}
	handler := NewPaymentHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{"ticket1": `))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.process(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidForm, gjson.Get(w.Body.String(), "error").String())
	mockService.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentHandler_processTicketBinding(t *testing.T) {
	for _, body := range []string{`{"ticket2": "6"}`, `{"ticket1": "abc"}`, `{"ticket1": "5", "ticket2": "x"}`} {
		mockService := &MockPaymentUseCase{}
		handler := NewPaymentHandler(mockService)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set(accountIDKey, int64(7))

		handler.process(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "This ticket is not exist.", gjson.Get(w.Body.String(), "error").String(), body)
		mockService.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
	}
}
