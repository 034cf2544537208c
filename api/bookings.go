package api

import (
	"net/http"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/service/booking"
	"github.com/Domenick1991/eventbooking/internal/service/payment"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service booking.BookingUseCase
	log     *zap.Logger
}

type submitResponse struct {
	Toast               *Toast            `json:"toast,omitempty"`
	CloseModal          bool              `json:"close_modal"`
	BookingsInvalidated bool              `json:"bookings_invalidated"`
	Checkout            *payment.Checkout `json:"checkout,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase, log *zap.Logger) *BookingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{service: service, log: log}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/self", h.self)
	router.POST("/guest", h.guest)
}

func (h *BookingHandler) self(c *gin.Context) {
	var req domain.SelfBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.log, domain.ErrMissingFields)
		return
	}

	outcome, err := h.service.SubmitSelf(c.Request.Context(), req)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toSubmitResponse(outcome))
}

func (h *BookingHandler) guest(c *gin.Context) {
	var req domain.GuestBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.log, domain.ErrMissingFields)
		return
	}

	outcome, err := h.service.SubmitGuest(c.Request.Context(), req)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toSubmitResponse(outcome))
}

func toSubmitResponse(o *booking.Outcome) submitResponse {
	resp := submitResponse{
		CloseModal:          o.CloseModal,
		BookingsInvalidated: o.BookingsInvalidated,
		Checkout:            o.Checkout,
	}
	if o.Checkout == nil {
		toast := toastBooked
		resp.Toast = &toast
	}
	return resp
}
