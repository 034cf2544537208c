package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/eventbooking/internal/countdown"
	"github.com/gin-gonic/gin"
)

type CountdownHandler struct {
	eventAt  time.Time
	now      func() time.Time
	interval time.Duration
}

type CountdownOption func(*CountdownHandler)

func WithCountdownClock(now func() time.Time) CountdownOption {
	return func(h *CountdownHandler) {
		h.now = now
	}
}

func WithCountdownInterval(d time.Duration) CountdownOption {
	return func(h *CountdownHandler) {
		h.interval = d
	}
}

func NewCountdownHandler(eventAt time.Time, opts ...CountdownOption) *CountdownHandler {
	h := &CountdownHandler{
		eventAt:  eventAt,
		now:      time.Now,
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *CountdownHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.current)
	router.GET("/stream", h.stream)
}

func (h *CountdownHandler) timer() *countdown.Timer {
	return countdown.NewTimer(h.eventAt, countdown.WithClock(h.now), countdown.WithInterval(h.interval))
}

// Initial renders the value the page shows before the first tick.
func (h *CountdownHandler) Initial() countdown.Remaining {
	return h.timer().Tick()
}

func (h *CountdownHandler) current(c *gin.Context) {
	c.JSON(http.StatusOK, h.timer().Tick())
}

// stream pushes one event per tick until the client goes away.
func (h *CountdownHandler) stream(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	t := h.timer()
	send := func(r countdown.Remaining) {
		c.SSEvent("countdown", r)
		c.Writer.Flush()
	}

	send(t.Tick())
	t.Run(c.Request.Context(), send)
}
