package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgInternal     = "internal error"
	msgUnauthorized = "authentication required"
	msgForbidden    = "you do not have permission to perform this action"
	msgInvalidForm  = "Your information is not valid. Please try again."
)

// respondError writes err as {"error": message} with the matching status.
// Messages of unexpected errors never reach the client.
func respondError(c *gin.Context, err error) {
	respondErrorAs(c, err, "")
}

// respondErrorAs is respondError with a custom message for domain.ErrNotFound.
func respondErrorAs(c *gin.Context, err error, notFound string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, domain.ErrNotFound):
		if notFound == "" {
			notFound = "not found"
		}
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": msgForbidden})
	case errors.Is(err, domain.ErrLocked):
		c.JSON(http.StatusConflict, gin.H{"error": "This flight is being booked by someone else. Please try again."})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	default:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

// fieldRule maps a failed binding tag on a struct field to the message the
// service layer gives for the same input.
type fieldRule struct {
	field string
	tag   string
	err   error
}

// bind decodes the request into obj. When a binding tag fails, the first
// matching rule decides the message, so rules keep the service's check order
// regardless of struct field order. It reports whether the handler may go on.
func bind(c *gin.Context, obj any, rules []fieldRule) bool {
	err := c.ShouldBind(obj)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, rule := range rules {
			for _, fe := range fieldErrs {
				if fe.Field() == rule.field && fe.Tag() == rule.tag {
					respondError(c, rule.err)
					return false
				}
			}
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidForm})
	return false
}
