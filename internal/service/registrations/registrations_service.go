package registrations

import (
	"context"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"go.uber.org/zap"
)

type RegistrationsUseCase interface {
	Bookings(ctx context.Context, mobno string) ([]domain.Booking, error)
	Greeting(ctx context.Context, mobno string) (*domain.Greeting, error)
}

type Backend interface {
	ViewBookings(ctx context.Context, mobno string) ([]domain.Booking, error)
	Greetings(ctx context.Context, mobno string) (*domain.Greeting, error)
}

type Cache interface {
	GetBookings(ctx context.Context, mobno string) ([]domain.Booking, error)
	SetBookings(ctx context.Context, mobno string, bookings []domain.Booking) error
	GetGreeting(ctx context.Context, mobno string) (*domain.Greeting, error)
	SetGreeting(ctx context.Context, mobno string, greeting *domain.Greeting) error
}

// RegistrationsService reads bookings and greetings for a phone number,
// caching backend responses.
type RegistrationsService struct {
	backend Backend
	cache   Cache
	log     *zap.Logger
}

func NewRegistrationsService(backend Backend, cache Cache, log *zap.Logger) *RegistrationsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationsService{backend: backend, cache: cache, log: log}
}

func (s *RegistrationsService) Bookings(ctx context.Context, mobno string) ([]domain.Booking, error) {
	if s.cache != nil {
		cached, err := s.cache.GetBookings(ctx, mobno)
		if err != nil {
			s.log.Warn("bookings cache read", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	bookings, err := s.backend.ViewBookings(ctx, mobno)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetBookings(ctx, mobno, bookings); err != nil {
			s.log.Warn("bookings cache write", zap.Error(err))
		}
	}
	return bookings, nil
}

func (s *RegistrationsService) Greeting(ctx context.Context, mobno string) (*domain.Greeting, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetGreeting(ctx, mobno); err == nil && cached != nil {
			return cached, nil
		}
	}

	greeting, err := s.backend.Greetings(ctx, mobno)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetGreeting(ctx, mobno, greeting)
	}
	return greeting, nil
}

var _ RegistrationsUseCase = (*RegistrationsService)(nil)
