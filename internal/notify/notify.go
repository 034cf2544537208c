package notify

import (
	"context"

	"github.com/Domenick1991/eventbooking/internal/kafka"
	"go.uber.org/zap"
)

// Sender turns booking and payment events into registrant notices. Delivery
// is a structured log line; the backend owns outbound messaging.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.Event) error {
	msg, ok := Message(event)
	if !ok {
		s.log.Debug("no notice for event", zap.String("type", event.Type), zap.String("event_id", event.ID))
		return nil
	}
	s.log.Info("notify registrant",
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.Int64("mobno", event.Mobno),
		zap.String("order_id", event.OrderID),
		zap.String("message", msg),
	)
	return nil
}

// Message returns the notice text for an event, if it warrants one.
func Message(event kafka.Event) (string, bool) {
	switch event.Type {
	case kafka.EventBookingCreated:
		if event.GuestName != "" {
			return "Booking Successful for " + event.GuestName, true
		}
		return "Booking Successful", true
	case kafka.EventPaymentCompleted:
		return "Payment Successful! Your registration has been successfully completed.", true
	case kafka.EventPaymentDismissed:
		return "Your payment was not completed. Please try again.", true
	default:
		return "", false
	}
}
