package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/service/registrations"
	"github.com/Domenick1991/eventbooking/internal/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RegistrationsHandler struct {
	service registrations.RegistrationsUseCase
	log     *zap.Logger
}

func NewRegistrationsHandler(service registrations.RegistrationsUseCase, log *zap.Logger) *RegistrationsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationsHandler{service: service, log: log}
}

func (h *RegistrationsHandler) Register(router *gin.RouterGroup) {
	router.GET("/api/bookings", h.list)
	router.GET("/api/greeting", h.greeting)
	router.GET("/bookings/table", h.table)
}

func (h *RegistrationsHandler) list(c *gin.Context) {
	mobno, ok := h.mobno(c)
	if !ok {
		return
	}
	bookings, err := h.service.Bookings(c.Request.Context(), mobno)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"data": bookings})
}

func (h *RegistrationsHandler) greeting(c *gin.Context) {
	mobno, ok := h.mobno(c)
	if !ok {
		return
	}
	greeting, err := h.service.Greeting(c.Request.Context(), mobno)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": greeting})
}

// table renders the registration table fragment. An empty list renders
// nothing.
func (h *RegistrationsHandler) table(c *gin.Context) {
	mobno, ok := h.mobno(c)
	if !ok {
		return
	}
	bookings, err := h.service.Bookings(c.Request.Context(), mobno)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.HTML(http.StatusOK, "table.html", tableData{Columns: view.Columns, Rows: view.Rows(bookings)})
}

func (h *RegistrationsHandler) mobno(c *gin.Context) (string, bool) {
	n, err := domain.ParseMobile(c.Query("mobno"))
	if err != nil {
		handleError(c, h.log, err)
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

type tableData struct {
	Columns []string
	Rows    []view.Row
}
