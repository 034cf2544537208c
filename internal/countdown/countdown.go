// Package countdown tracks the time left until the event starts.
package countdown

import (
	"context"
	"sync"
	"time"
)

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

type Remaining struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// Milliseconds is the whole-second duration the units add up to.
func (r Remaining) Milliseconds() int64 {
	return r.Days*msPerDay + r.Hours*msPerHour + r.Minutes*msPerMinute + r.Seconds*msPerSecond
}

// Decompose splits a positive millisecond span into days, hours, minutes and
// seconds. Sub-second remainders are dropped.
func Decompose(ms int64) Remaining {
	if ms <= 0 {
		return Remaining{}
	}
	return Remaining{
		Days:    ms / msPerDay,
		Hours:   (ms % msPerDay) / msPerHour,
		Minutes: (ms % msPerHour) / msPerMinute,
		Seconds: (ms % msPerMinute) / msPerSecond,
	}
}

// Timer recomputes the remaining time against a fixed event instant. Once the
// event is reached the last computed value is kept.
type Timer struct {
	eventAt  time.Time
	now      func() time.Time
	interval time.Duration

	mu   sync.Mutex
	last Remaining
}

type Option func(*Timer)

func WithClock(now func() time.Time) Option {
	return func(t *Timer) {
		t.now = now
	}
}

func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

func NewTimer(eventAt time.Time, opts ...Option) *Timer {
	t := &Timer{
		eventAt:  eventAt,
		now:      time.Now,
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tick recomputes the remaining time and returns the displayed value.
func (t *Timer) Tick() Remaining {
	left := t.eventAt.Sub(t.now()).Milliseconds()

	t.mu.Lock()
	defer t.mu.Unlock()
	if left > 0 {
		t.last = Decompose(left)
	}
	return t.last
}

// Current returns the last computed value without recomputing.
func (t *Timer) Current() Remaining {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Run calls fn with a fresh value every interval until ctx is done.
func (t *Timer) Run(ctx context.Context, fn func(Remaining)) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(t.Tick())
		}
	}
}
