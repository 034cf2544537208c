package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Domenick1991/eventbooking/internal/countdown"
	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/service/registrations"
	"github.com/Domenick1991/eventbooking/internal/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	mobnoCookie    = "mobno"
	mobnoCookieAge = 30 * 24 * 60 * 60
)

// Event is the static information printed on the pages.
type Event struct {
	Name         string
	StartsAt     time.Time
	Dates        string
	CheckIn      string
	Venue        string
	SupportEmail string
}

type PageHandler struct {
	event         Event
	registrations registrations.RegistrationsUseCase
	countdown     *CountdownHandler
	log           *zap.Logger
}

type gateData struct {
	Event Event
	Mobno string
	Toast *Toast
}

type indexData struct {
	Event      Event
	Mobno      string
	Greeting   *domain.Greeting
	Countdown  countdown.Remaining
	Packages   []domain.Package
	TravelMode []domain.TravelMode
	OwnCar     domain.TravelMode
	Table      tableData
}

type resultData struct {
	Event Event
	Mobno string
}

func NewPageHandler(event Event, registrations registrations.RegistrationsUseCase, countdown *CountdownHandler, log *zap.Logger) *PageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PageHandler{event: event, registrations: registrations, countdown: countdown, log: log}
}

func (h *PageHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.index)
	router.POST("/enter", h.enter)
	router.GET("/confirmation", h.confirmation)
	router.GET("/error", h.failure)
}

// index renders the event page for a known mobile number, or the mobile
// number gate otherwise.
func (h *PageHandler) index(c *gin.Context) {
	raw := c.Query("mobno")
	if raw == "" {
		c.HTML(http.StatusOK, "enter.html", gateData{Event: h.event, Mobno: h.rememberedMobno(c)})
		return
	}

	n, err := domain.ParseMobile(raw)
	if err != nil {
		toast := toastInvalidMobile
		c.HTML(http.StatusBadRequest, "enter.html", gateData{Event: h.event, Mobno: raw, Toast: &toast})
		return
	}
	mobno := strconv.FormatInt(n, 10)
	h.remember(c, mobno)

	ctx := c.Request.Context()
	data := indexData{
		Event:      h.event,
		Mobno:      mobno,
		Countdown:  h.countdown.Initial(),
		Packages:   domain.Packages,
		TravelMode: domain.TravelModes,
		OwnCar:     domain.TravelModeOwnCar,
		Table:      tableData{Columns: view.Columns},
	}

	if greeting, err := h.registrations.Greeting(ctx, mobno); err != nil {
		h.log.Warn("greeting lookup failed", zap.String("mobno", mobno), zap.Error(err))
	} else {
		data.Greeting = greeting
	}

	if bookings, err := h.registrations.Bookings(ctx, mobno); err != nil {
		h.log.Warn("bookings lookup failed", zap.String("mobno", mobno), zap.Error(err))
	} else {
		data.Table.Rows = view.Rows(bookings)
	}

	c.HTML(http.StatusOK, "index.html", data)
}

func (h *PageHandler) enter(c *gin.Context) {
	raw := c.PostForm("mobno")
	n, err := domain.ParseMobile(raw)
	if err != nil {
		toast := toastInvalidMobile
		c.HTML(http.StatusBadRequest, "enter.html", gateData{Event: h.event, Mobno: raw, Toast: &toast})
		return
	}

	mobno := strconv.FormatInt(n, 10)
	h.remember(c, mobno)
	c.Redirect(http.StatusSeeOther, "/?"+url.Values{"mobno": {mobno}}.Encode())
}

func (h *PageHandler) confirmation(c *gin.Context) {
	c.HTML(http.StatusOK, "confirmation.html", resultData{Event: h.event, Mobno: h.rememberedMobno(c)})
}

func (h *PageHandler) failure(c *gin.Context) {
	c.HTML(http.StatusOK, "error.html", resultData{Event: h.event, Mobno: h.rememberedMobno(c)})
}

func (h *PageHandler) remember(c *gin.Context, mobno string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(mobnoCookie, mobno, mobnoCookieAge, "/", "", false, true)
}

func (h *PageHandler) rememberedMobno(c *gin.Context) string {
	v, err := c.Cookie(mobnoCookie)
	if err != nil {
		return ""
	}
	if _, err := domain.ParseMobile(v); err != nil {
		return ""
	}
	return v
}
