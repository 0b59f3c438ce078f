package api

import (
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/validation"
	"github.com/gin-gonic/gin"
)

const msgFlightNotFound = "Flight not found."

type FlightHandler struct {
	service flights.FlightUseCase
}

// homeResponse is the landing page: the airport list, plus search results
// when the request carried a query.
type homeResponse struct {
	Airports []domain.Airport      `json:"airports"`
	Search   *flights.SearchResult `json:"search,omitempty"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.home)
	router.GET("/airports", h.airports)
	router.GET("/flight", h.list)
	router.GET("/flight/:id/", h.get)
}

func (h *FlightHandler) home(c *gin.Context) {
	airports, err := h.service.ListAirports(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := homeResponse{Airports: airports}
	if c.Request.URL.RawQuery == "" {
		c.JSON(http.StatusOK, resp)
		return
	}

	var input flights.SearchInput
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidForm})
		return
	}
	result, err := h.service.Search(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Search = result
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) airports(c *gin.Context) {
	airports, err := h.service.ListAirports(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, airports)
}

func (h *FlightHandler) list(c *gin.Context) {
	all, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := validation.ParsePositiveInt(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgFlightNotFound})
		return
	}
	flight, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondErrorAs(c, err, msgFlightNotFound)
		return
	}
	c.JSON(http.StatusOK, flight)
}
