package api

import (
	"net/http"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/service/payment"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
	log     *zap.Logger
}

type dismissRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

type paymentResponse struct {
	Status   domain.PaymentStatus `json:"status"`
	Toast    *Toast               `json:"toast,omitempty"`
	Redirect string               `json:"redirect,omitempty"`
}

func NewPaymentHandler(service payment.PaymentUseCase, log *zap.Logger) *PaymentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentHandler{service: service, log: log}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/complete", h.complete)
	router.POST("/dismiss", h.dismiss)
}

func (h *PaymentHandler) complete(c *gin.Context) {
	var req payment.Completion
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.log, domain.ErrInvalidSignature)
		return
	}

	p, err := h.service.Complete(c.Request.Context(), req)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	toast := toastPaid
	c.JSON(http.StatusOK, paymentResponse{Status: p.Status, Toast: &toast, Redirect: "/confirmation"})
}

func (h *PaymentHandler) dismiss(c *gin.Context) {
	var req dismissRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	p, err := h.service.Dismiss(c.Request.Context(), req.OrderID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paymentResponse{Status: p.Status})
}
