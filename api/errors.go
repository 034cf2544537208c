package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/middleware"
	"github.com/Domenick1991/eventbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const variantDestructive = "destructive"

// Toast is the notification the page shows after an action.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant,omitempty"`
}

// errorResponse carries the error text only for client errors. Server
// errors expose the request id instead.
type errorResponse struct {
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Toast     Toast  `json:"toast"`
}

var (
	toastMissingFields  = Toast{Title: "Please fill all the required fields", Variant: variantDestructive}
	toastInvalidMobile  = Toast{Title: "Invalid Mobile Number", Description: "Please enter a valid mobile number", Variant: variantDestructive}
	toastAlreadyBooked  = Toast{Title: "Already booked", Variant: variantDestructive}
	toastInProgress     = Toast{Title: "Please wait", Description: "Your previous submission is still being processed", Variant: variantDestructive}
	toastGenericFailure = Toast{Title: "An Error Occurred", Variant: variantDestructive}
	toastBooked         = Toast{Title: "Booking Successful"}
	toastPaid           = Toast{Title: "Payment Successful!"}
)

func errorStatus(err error) (int, Toast) {
	switch {
	case booking.IsValidation(err):
		return http.StatusBadRequest, toastMissingFields
	case errors.Is(err, domain.ErrInvalidMobile):
		return http.StatusBadRequest, toastInvalidMobile
	case errors.Is(err, domain.ErrAlreadyBooked):
		return http.StatusConflict, toastAlreadyBooked
	case errors.Is(err, domain.ErrSubmissionInProgress):
		return http.StatusConflict, toastInProgress
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusBadRequest, toastGenericFailure
	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound, toastGenericFailure
	case errors.Is(err, domain.ErrBackend):
		return http.StatusBadGateway, toastGenericFailure
	default:
		return http.StatusInternalServerError, toastGenericFailure
	}
}

func handleError(c *gin.Context, log *zap.Logger, err error) {
	status, toast := errorStatus(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		rid := middleware.GetRequestID(c)
		log.Error("request failed",
			zap.String("request_id", rid),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, errorResponse{RequestID: rid, Toast: toast})
		return
	}
	c.JSON(status, errorResponse{Error: err.Error(), Toast: toast})
}
