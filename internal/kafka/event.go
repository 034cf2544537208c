package kafka

import (
	"time"

	"github.com/google/uuid"
)

func NewEvent(eventType string, mobno int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Mobno:      mobno,
		OccurredAt: time.Now().UTC(),
	}
}
