package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/kafka"
	"github.com/Domenick1991/eventbooking/internal/service/payment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Flow string

const (
	FlowPayment Flow = "payment"
	FlowDirect  Flow = "direct"
)

type BookingUseCase interface {
	SubmitSelf(ctx context.Context, req domain.SelfBookingRequest) (*Outcome, error)
	SubmitGuest(ctx context.Context, req domain.GuestBookingRequest) (*Outcome, error)
}

type Backend interface {
	CreateSelf(ctx context.Context, req domain.SelfBookingRequest) (int, error)
	CreateGuest(ctx context.Context, req domain.GuestBookingRequest) (int, error)
}

type Cache interface {
	AcquireSubmissionLock(ctx context.Context, mobno int64, token string, ttl time.Duration) (bool, error)
	ReleaseSubmissionLock(ctx context.Context, mobno int64, token string) error
	InvalidateBookings(ctx context.Context, mobno string) error
}

type PaymentInitiator interface {
	Initiate(ctx context.Context, mobno int64, packageID int, lockToken string) (*payment.Checkout, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Outcome describes a submission that went through.
type Outcome struct {
	// Checkout is set when the booking continues in the payment overlay.
	Checkout            *payment.Checkout
	CloseModal          bool
	BookingsInvalidated bool
}

type BookingService struct {
	backend            Backend
	payments           PaymentInitiator
	cache              Cache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	lockTTL            time.Duration
	flow               Flow
	log                *zap.Logger
	newToken           func() string
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithFlow(flow Flow) BookingServiceOption {
	return func(s *BookingService) {
		s.flow = flow
	}
}

func WithLogger(log *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(
	backend Backend,
	payments PaymentInitiator,
	cache Cache,
	producer Producer,
	eventsTopic string,
	lockTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		backend:     backend,
		payments:    payments,
		cache:       cache,
		producer:    producer,
		eventsTopic: eventsTopic,
		lockTTL:     lockTTL,
		flow:        FlowPayment,
		log:         zap.NewNop(),
		newToken:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) SubmitSelf(ctx context.Context, req domain.SelfBookingRequest) (*Outcome, error) {
	if err := ValidateSelf(req); err != nil {
		return nil, err
	}
	return s.submit(ctx, req, "", func(ctx context.Context) (int, error) {
		return s.backend.CreateSelf(ctx, req)
	})
}

func (s *BookingService) SubmitGuest(ctx context.Context, req domain.GuestBookingRequest) (*Outcome, error) {
	if err := ValidateGuest(req); err != nil {
		return nil, err
	}
	return s.submit(ctx, req.SelfBookingRequest, req.GuestName, func(ctx context.Context) (int, error) {
		return s.backend.CreateGuest(ctx, req)
	})
}

func (s *BookingService) submit(ctx context.Context, req domain.SelfBookingRequest, guestName string, post func(context.Context) (int, error)) (*Outcome, error) {
	token := s.newToken()
	if err := s.lock(ctx, req.Mobno, token); err != nil {
		return nil, err
	}

	if s.flow == FlowPayment {
		checkout, err := s.payments.Initiate(ctx, req.Mobno, req.PackageID, token)
		if err != nil {
			s.unlock(ctx, req.Mobno, token)
			return nil, fmt.Errorf("initiate payment: %w", err)
		}
		// The lock stays held until the checkout is completed or dismissed.
		return &Outcome{Checkout: checkout}, nil
	}

	defer s.unlock(ctx, req.Mobno, token)

	status, err := post(ctx)
	if err != nil {
		s.log.Error("booking submission failed", zap.Int64("mobno", req.Mobno), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}

	switch status {
	case http.StatusOK:
		invalidated := s.invalidate(ctx, req.Mobno)
		s.publish(ctx, kafka.EventBookingCreated, req, guestName)
		s.log.Info("booking created",
			zap.Int64("mobno", req.Mobno),
			zap.Int("package_id", req.PackageID),
			zap.Bool("guest", guestName != ""),
		)
		return &Outcome{CloseModal: true, BookingsInvalidated: invalidated}, nil
	case http.StatusBadRequest:
		s.publish(ctx, kafka.EventBookingDuplicate, req, guestName)
		return nil, domain.ErrAlreadyBooked
	default:
		return nil, fmt.Errorf("%w: backend returned %d", domain.ErrBackend, status)
	}
}

// ValidateSelf checks required fields first and the travel mode plate rule
// second.
func ValidateSelf(req domain.SelfBookingRequest) error {
	if req.Mobno == 0 || req.PackageID == 0 || req.TravelMode == "" {
		return domain.ErrMissingFields
	}
	return validateDetails(req)
}

func ValidateGuest(req domain.GuestBookingRequest) error {
	if req.Mobno == 0 || strings.TrimSpace(req.GuestName) == "" || strings.TrimSpace(req.GuestMobno) == "" ||
		req.PackageID == 0 || req.TravelMode == "" {
		return domain.ErrMissingFields
	}
	return validateDetails(req.SelfBookingRequest)
}

func validateDetails(req domain.SelfBookingRequest) error {
	if req.TravelMode.RequiresPlate() && strings.TrimSpace(req.CarNumberPlate) == "" {
		return domain.ErrPlateRequired
	}
	if _, ok := domain.PackageByID(req.PackageID); !ok {
		return domain.ErrUnknownPackage
	}
	if !req.TravelMode.Valid() {
		return domain.ErrUnknownTravelMode
	}
	return nil
}

func (s *BookingService) lock(ctx context.Context, mobno int64, token string) error {
	if s.cache == nil {
		return nil
	}
	ok, err := s.cache.AcquireSubmissionLock(ctx, mobno, token, s.lockTTL)
	if err != nil {
		return fmt.Errorf("acquire submission lock: %w", err)
	}
	if !ok {
		return domain.ErrSubmissionInProgress
	}
	return nil
}

func (s *BookingService) unlock(ctx context.Context, mobno int64, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.ReleaseSubmissionLock(context.WithoutCancel(ctx), mobno, token); err != nil {
		s.log.Warn("release submission lock", zap.Int64("mobno", mobno), zap.Error(err))
	}
}

func (s *BookingService) invalidate(ctx context.Context, mobno int64) bool {
	if s.cache == nil {
		return false
	}
	if err := s.cache.InvalidateBookings(ctx, strconv.FormatInt(mobno, 10)); err != nil {
		s.log.Warn("invalidate bookings cache", zap.Int64("mobno", mobno), zap.Error(err))
		return false
	}
	return true
}

func (s *BookingService) publish(ctx context.Context, eventType string, req domain.SelfBookingRequest, guestName string) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.NewEvent(eventType, req.Mobno)
	event.PackageID = req.PackageID
	event.GuestName = guestName

	key := strconv.FormatInt(req.Mobno, 10)
	err := s.producer.Publish(ctx, s.eventsTopic, key, event)
	if err == nil && s.notificationsTopic != "" {
		err = s.producer.Publish(ctx, s.notificationsTopic, key, event)
	}
	if err != nil {
		s.log.Warn("publish booking event", zap.String("type", eventType), zap.Error(err))
	}
}

// IsValidation reports whether err is a client-side form error.
func IsValidation(err error) bool {
	return errors.Is(err, domain.ErrMissingFields) ||
		errors.Is(err, domain.ErrPlateRequired) ||
		errors.Is(err, domain.ErrUnknownPackage) ||
		errors.Is(err, domain.ErrUnknownTravelMode)
}

var _ BookingUseCase = (*BookingService)(nil)
