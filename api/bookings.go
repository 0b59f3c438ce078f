package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, authn *Authenticator) {
	user := router.Group("", authn.RequireUser())
	user.GET("/review", h.review)
	user.POST("/payment", h.create)
	user.GET("/book/", h.list)
	user.POST("/cancelbooking/:id/", h.requestCancellation)
	user.GET("/flight/ticket/:id", h.ticket)

	admin := router.Group("", authn.RequireUser(), authn.RequireAdmin())
	admin.GET("/pending-cancellations/", h.pendingCancellations)
	admin.POST("/approve-cancellation/:id/", h.approveCancellation)
	admin.POST("/reject-cancellation/:id/", h.rejectCancellation)
}

func (h *BookingHandler) review(c *gin.Context) {
	var input booking.ReviewInput
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidForm})
		return
	}

	review, err := h.service.Review(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *BookingHandler) create(c *gin.Context) {
	form, err := bindForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidForm})
		return
	}

	checkout, err := h.service.CreateBookings(c.Request.Context(), accountID(c), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, checkout)
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListForAccount(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) requestCancellation(c *gin.Context) {
	id, ok := validation.ParsePositiveInt(c.Param("id"))
	if !ok {
		respondError(c, booking.ErrTicketInvalid)
		return
	}

	b, err := h.service.RequestCancellation(c.Request.Context(), accountID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) ticket(c *gin.Context) {
	id, ok := validation.ParsePositiveInt(c.Param("id"))
	if !ok {
		respondError(c, booking.ErrTicketInvalid)
		return
	}

	ticket, err := h.service.Ticket(c.Request.Context(), accountID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ticket.Filename))
	c.Data(http.StatusOK, "application/pdf", ticket.Content)
}

func (h *BookingHandler) pendingCancellations(c *gin.Context) {
	bookings, err := h.service.ListPendingCancellations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) approveCancellation(c *gin.Context) {
	h.decide(c, h.service.ApproveCancellation)
}

func (h *BookingHandler) rejectCancellation(c *gin.Context) {
	h.decide(c, h.service.RejectCancellation)
}

func (h *BookingHandler) decide(c *gin.Context, action func(ctx context.Context, id int64) (*domain.Booking, error)) {
	id, ok := validation.ParsePositiveInt(c.Param("id"))
	if !ok {
		respondError(c, domain.ErrNotFound)
		return
	}

	b, err := action(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// bindForm reads a flat form from either a JSON object or an url-encoded body.
func bindForm(c *gin.Context) (booking.Form, error) {
	form := booking.Form{}
	if c.ContentType() == binding.MIMEJSON {
		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			return nil, err
		}
		for key, value := range raw {
			switch v := value.(type) {
			case nil:
			case string:
				form[key] = v
			default:
				form[key] = fmt.Sprint(v)
			}
		}
		return form, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	for key := range c.Request.PostForm {
		form[key] = c.Request.PostForm.Get(key)
	}
	return form, nil
}
