package api

import (
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
}

var processRules = []fieldRule{
	{field: "Ticket1", tag: "required", err: payment.ErrTicketNotExist},
	{field: "Ticket1", tag: "number", err: payment.ErrTicketNotExist},
	{field: "Ticket2", tag: "number", err: payment.ErrTicketNotExist},
}

func NewPaymentHandler(service payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup, authn *Authenticator) {
	router.POST("/process", authn.RequireUser(), h.process)
}

func (h *PaymentHandler) process(c *gin.Context) {
	var input payment.ProcessInput
	if !bind(c, &input, processRules) {
		return
	}

	receipt, err := h.service.Process(c.Request.Context(), accountID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}
