package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/kafka"
	"github.com/Domenick1991/eventbooking/internal/repository"
	"go.uber.org/zap"
)

type PaymentUseCase interface {
	Initiate(ctx context.Context, mobno int64, packageID int, lockToken string) (*Checkout, error)
	Complete(ctx context.Context, completion Completion) (*domain.Payment, error)
	Dismiss(ctx context.Context, orderID string) (*domain.Payment, error)
	AbandonStale(ctx context.Context, olderThan time.Duration) ([]domain.Payment, error)
}

type OrderSource interface {
	GetOrder(ctx context.Context, packageID int) (*domain.Order, error)
}

type GreetingSource interface {
	Greeting(ctx context.Context, mobno string) (*domain.Greeting, error)
}

type Cache interface {
	ReleaseSubmissionLock(ctx context.Context, mobno int64, token string) error
	InvalidateBookings(ctx context.Context, mobno string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Merchant describes the payee shown in the checkout overlay.
type Merchant struct {
	KeyID       string
	KeySecret   string
	Name        string
	Description string
	ImageURL    string
	ThemeColor  string
}

type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type Theme struct {
	Color string `json:"color,omitempty"`
}

// Checkout is the configuration the browser passes to the hosted checkout.
type Checkout struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// Completion is what the checkout overlay reports after a successful payment.
type Completion struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type PaymentService struct {
	orders             OrderSource
	greetings          GreetingSource
	payments           repository.PaymentRepository
	cache              Cache
	producer           Producer
	merchant           Merchant
	eventsTopic        string
	notificationsTopic string
	log                *zap.Logger
	now                func() time.Time
}

type PaymentServiceOption func(*PaymentService)

func WithNotificationsTopic(topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(log *zap.Logger) PaymentServiceOption {
	return func(s *PaymentService) {
		s.log = log
	}
}

func NewPaymentService(
	orders OrderSource,
	greetings GreetingSource,
	payments repository.PaymentRepository,
	cache Cache,
	producer Producer,
	merchant Merchant,
	eventsTopic string,
	opts ...PaymentServiceOption,
) *PaymentService {
	s := &PaymentService{
		orders:      orders,
		greetings:   greetings,
		payments:    payments,
		cache:       cache,
		producer:    producer,
		merchant:    merchant,
		eventsTopic: eventsTopic,
		log:         zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initiate requests an order for the package and builds the checkout
// configuration, pre-filled with the registrant's contact details. The
// checkout takes over the submission lock identified by lockToken.
func (s *PaymentService) Initiate(ctx context.Context, mobno int64, packageID int, lockToken string) (*Checkout, error) {
	order, err := s.orders.GetOrder(ctx, packageID)
	if err != nil {
		return nil, err
	}

	contact := strconv.FormatInt(mobno, 10)
	prefill := Prefill{Contact: contact}
	if s.greetings != nil {
		if greeting, err := s.greetings.Greeting(ctx, contact); err != nil {
			s.log.Warn("greeting lookup failed, checkout without name prefill", zap.Int64("mobno", mobno), zap.Error(err))
		} else if greeting != nil {
			prefill.Name = greeting.IssuedTo
			prefill.Email = greeting.Email
		}
	}

	payment := &domain.Payment{
		OrderID:   order.ID,
		Mobno:     mobno,
		PackageID: packageID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Status:    domain.PaymentStatusCreated,
		LockToken: lockToken,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.publish(ctx, kafka.EventPaymentInitiated, payment)
	s.log.Info("checkout prepared",
		zap.Int64("mobno", mobno),
		zap.Int("package_id", packageID),
		zap.String("order_id", order.ID),
	)

	return &Checkout{
		Key:         s.merchant.KeyID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Name:        s.merchant.Name,
		Description: s.merchant.Description,
		Image:       s.merchant.ImageURL,
		OrderID:     order.ID,
		Prefill:     prefill,
		Theme:       Theme{Color: s.merchant.ThemeColor},
	}, nil
}

// Complete records a successful checkout. The booking itself is not created
// here; the backend owns that record.
func (s *PaymentService) Complete(ctx context.Context, completion Completion) (*domain.Payment, error) {
	if completion.OrderID == "" || completion.PaymentID == "" {
		return nil, fmt.Errorf("%w: order and payment ids are required", domain.ErrInvalidSignature)
	}
	if !s.verify(completion) {
		return nil, domain.ErrInvalidSignature
	}

	payment, err := s.payments.UpdateStatus(ctx, completion.OrderID, completion.PaymentID, domain.PaymentStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("complete payment: %w", err)
	}

	s.release(ctx, payment)
	s.invalidate(ctx, payment.Mobno)
	s.publish(ctx, kafka.EventPaymentCompleted, payment)
	s.log.Info("payment completed",
		zap.Int64("mobno", payment.Mobno),
		zap.String("order_id", payment.OrderID),
		zap.String("payment_id", payment.PaymentID),
	)
	return payment, nil
}

// Dismiss closes an open checkout. Attempts that already left the created
// state are returned unchanged and their lock is left alone.
func (s *PaymentService) Dismiss(ctx context.Context, orderID string) (*domain.Payment, error) {
	payment, err := s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("dismiss payment: %w", err)
	}
	if payment.Status != domain.PaymentStatusCreated {
		return payment, nil
	}

	payment, err = s.payments.UpdateStatus(ctx, orderID, "", domain.PaymentStatusDismissed)
	if err != nil {
		return nil, fmt.Errorf("dismiss payment: %w", err)
	}

	s.release(ctx, payment)
	s.publish(ctx, kafka.EventPaymentDismissed, payment)
	return payment, nil
}

// AbandonStale marks checkouts that were never completed or dismissed and
// frees their submission locks.
func (s *PaymentService) AbandonStale(ctx context.Context, olderThan time.Duration) ([]domain.Payment, error) {
	abandoned, err := s.payments.AbandonCreatedBefore(ctx, s.now().Add(-olderThan))
	if err != nil {
		return nil, fmt.Errorf("abandon stale payments: %w", err)
	}
	for i := range abandoned {
		s.release(ctx, &abandoned[i])
	}
	return abandoned, nil
}

func (s *PaymentService) verify(c Completion) bool {
	if s.merchant.KeySecret == "" {
		return true
	}
	return hmac.Equal([]byte(Sign(s.merchant.KeySecret, c.OrderID, c.PaymentID)), []byte(c.Signature))
}

// Sign computes the checkout signature for an order/payment pair.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// release frees the submission lock only if this checkout still owns it.
func (s *PaymentService) release(ctx context.Context, p *domain.Payment) {
	if s.cache == nil || p.LockToken == "" {
		return
	}
	if err := s.cache.ReleaseSubmissionLock(ctx, p.Mobno, p.LockToken); err != nil {
		s.log.Warn("release submission lock", zap.Int64("mobno", p.Mobno), zap.String("order_id", p.OrderID), zap.Error(err))
	}
}

func (s *PaymentService) invalidate(ctx context.Context, mobno int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateBookings(ctx, strconv.FormatInt(mobno, 10)); err != nil {
		s.log.Warn("invalidate bookings cache", zap.Int64("mobno", mobno), zap.Error(err))
	}
}

func (s *PaymentService) publish(ctx context.Context, eventType string, p *domain.Payment) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.NewEvent(eventType, p.Mobno)
	event.PackageID = p.PackageID
	event.OrderID = p.OrderID
	event.PaymentID = p.PaymentID
	event.Amount = p.Amount
	event.Currency = p.Currency

	err := s.producer.Publish(ctx, s.eventsTopic, p.OrderID, event)
	if err == nil && s.notificationsTopic != "" {
		err = s.producer.Publish(ctx, s.notificationsTopic, p.OrderID, event)
	}
	if err != nil {
		s.log.Warn("publish payment event",
			zap.String("type", eventType),
			zap.String("order_id", p.OrderID),
			zap.Error(err),
		)
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
