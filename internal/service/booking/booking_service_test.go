package booking

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/kafka"
	"github.com/Domenick1991/eventbooking/internal/service/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreateSelf(ctx context.Context, req domain.SelfBookingRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func (m *MockBackend) CreateGuest(ctx context.Context, req domain.GuestBookingRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) AcquireSubmissionLock(ctx context.Context, mobno int64, token string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, mobno, token, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) ReleaseSubmissionLock(ctx context.Context, mobno int64, token string) error {
	args := m.Called(ctx, mobno, token)
	return args.Error(0)
}

func (m *MockCache) InvalidateBookings(ctx context.Context, mobno string) error {
	args := m.Called(ctx, mobno)
	return args.Error(0)
}

type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) Initiate(ctx context.Context, mobno int64, packageID int, lockToken string) (*payment.Checkout, error) {
	args := m.Called(ctx, mobno, packageID, lockToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Checkout), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func validSelf() domain.SelfBookingRequest {
	return domain.SelfBookingRequest{
		Mobno:      9876543210,
		PackageID:  1,
		TravelMode: domain.TravelModeOrganized,
	}
}

func validGuest() domain.GuestBookingRequest {
	return domain.GuestBookingRequest{
		SelfBookingRequest: validSelf(),
		GuestName:          "Meera",
		GuestMobno:         "9123456780",
	}
}

func fixedToken() string { return "tok-1" }

func newDirectService(backend *MockBackend, cache *MockCache, producer Producer) *BookingService {
	s := NewBookingService(backend, nil, cache, producer, "booking-events", time.Minute, WithFlow(FlowDirect))
	s.newToken = fixedToken
	return s
}

func newPaymentService(backend *MockBackend, payments *MockPayments, cache *MockCache) *BookingService {
	s := NewBookingService(backend, payments, cache, nil, "", time.Minute)
	s.newToken = fixedToken
	return s
}

func TestValidateSelf_MissingFields(t *testing.T) {
	testCases := []struct {
		name string
		edit func(*domain.SelfBookingRequest)
	}{
		{name: "no mobile", edit: func(r *domain.SelfBookingRequest) { r.Mobno = 0 }},
		{name: "no package", edit: func(r *domain.SelfBookingRequest) { r.PackageID = 0 }},
		{name: "no travel mode", edit: func(r *domain.SelfBookingRequest) { r.TravelMode = "" }},
		{name: "nothing", edit: func(r *domain.SelfBookingRequest) { *r = domain.SelfBookingRequest{} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSelf()
			tc.edit(&req)
			assert.ErrorIs(t, ValidateSelf(req), domain.ErrMissingFields)
		})
	}
}

func TestValidateGuest_MissingFields(t *testing.T) {
	testCases := []struct {
		name string
		edit func(*domain.GuestBookingRequest)
	}{
		{name: "no mobile", edit: func(r *domain.GuestBookingRequest) { r.Mobno = 0 }},
		{name: "no package", edit: func(r *domain.GuestBookingRequest) { r.PackageID = 0 }},
		{name: "no travel mode", edit: func(r *domain.GuestBookingRequest) { r.TravelMode = "" }},
		{name: "no guest name", edit: func(r *domain.GuestBookingRequest) { r.GuestName = "" }},
		{name: "blank guest name", edit: func(r *domain.GuestBookingRequest) { r.GuestName = "   " }},
		{name: "no guest mobile", edit: func(r *domain.GuestBookingRequest) { r.GuestMobno = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := validGuest()
			tc.edit(&req)
			assert.ErrorIs(t, ValidateGuest(req), domain.ErrMissingFields)
		})
	}
}

func TestValidate_PlateRequiredForOwnCar(t *testing.T) {
	self := validSelf()
	self.TravelMode = domain.TravelModeOwnCar
	assert.ErrorIs(t, ValidateSelf(self), domain.ErrPlateRequired)

	guest := validGuest()
	guest.TravelMode = domain.TravelModeOwnCar
	assert.ErrorIs(t, ValidateGuest(guest), domain.ErrPlateRequired)

	self.CarNumberPlate = "MH 06 AB 1234"
	assert.NoError(t, ValidateSelf(self))
}

func TestValidate_PresenceCheckedBeforePlate(t *testing.T) {
	req := validSelf()
	req.TravelMode = domain.TravelModeOwnCar
	req.PackageID = 0

	assert.ErrorIs(t, ValidateSelf(req), domain.ErrMissingFields)
}

func TestValidate_UnknownValues(t *testing.T) {
	req := validSelf()
	req.PackageID = 7
	assert.ErrorIs(t, ValidateSelf(req), domain.ErrUnknownPackage)

	req = validSelf()
	req.TravelMode = "bus"
	assert.ErrorIs(t, ValidateSelf(req), domain.ErrUnknownTravelMode)
	assert.True(t, IsValidation(ValidateSelf(req)))
}

func TestBookingService_SubmitSelf_ValidationSkipsNetwork(t *testing.T) {
	backend := &MockBackend{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newDirectService(backend, cache, producer)

	req := validSelf()
	req.TravelMode = domain.TravelModeOwnCar

	outcome, err := service.SubmitSelf(context.Background(), req)

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, domain.ErrPlateRequired)
	backend.AssertNotCalled(t, "CreateSelf", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "AcquireSubmissionLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_SubmitSelf_Success(t *testing.T) {
	backend := &MockBackend{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newDirectService(backend, cache, producer)

	ctx := context.Background()
	req := validSelf()

	cache.On("AcquireSubmissionLock", ctx, req.Mobno, "tok-1", time.Minute).Return(true, nil).Once()
	backend.On("CreateSelf", ctx, req).Return(http.StatusOK, nil).Once()
	cache.On("InvalidateBookings", ctx, "9876543210").Return(nil).Once()
	producer.On("Publish", ctx, "booking-events", "9876543210", mock.MatchedBy(func(e kafka.Event) bool {
		return e.Type == kafka.EventBookingCreated && e.Mobno == req.Mobno && e.PackageID == 1
	})).Return(nil).Once()
	cache.On("ReleaseSubmissionLock", mock.Anything, req.Mobno, "tok-1").Return(nil).Once()

	outcome, err := service.SubmitSelf(ctx, req)

	require.NoError(t, err)
	assert.True(t, outcome.CloseModal)
	assert.True(t, outcome.BookingsInvalidated)
	assert.Nil(t, outcome.Checkout)

	backend.AssertExpectations(t)
	cache.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestBookingService_SubmitGuest_AlreadyBooked(t *testing.T) {
	backend := &MockBackend{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newDirectService(backend, cache, producer)

	ctx := context.Background()
	req := validGuest()

	cache.On("AcquireSubmissionLock", ctx, req.Mobno, "tok-1", time.Minute).Return(true, nil).Once()
	backend.On("CreateGuest", ctx, req).Return(http.StatusBadRequest, nil).Once()
	producer.On("Publish", ctx, "booking-events", "9876543210", mock.Anything).Return(nil).Once()
	cache.On("ReleaseSubmissionLock", mock.Anything, req.Mobno, "tok-1").Return(nil).Once()

	outcome, err := service.SubmitGuest(ctx, req)

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, domain.ErrAlreadyBooked)
	cache.AssertNotCalled(t, "InvalidateBookings", mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestBookingService_SubmitSelf_OtherStatus(t *testing.T) {
	backend := &MockBackend{}
	cache := &MockCache{}
	service := newDirectService(backend, cache, nil)

	ctx := context.Background()
	req := validSelf()

	cache.On("AcquireSubmissionLock", ctx, req.Mobno, "tok-1", time.Minute).Return(true, nil).Once()
	backend.On("CreateSelf", ctx, req).Return(http.StatusInternalServerError, nil).Once()
	cache.On("ReleaseSubmissionLock", mock.Anything, req.Mobno, "tok-1").Return(nil).Once()

	_, err := service.SubmitSelf(ctx, req)

	assert.ErrorIs(t, err, domain.ErrBackend)
	assert.NotErrorIs(t, err, domain.ErrAlreadyBooked)
	cache.AssertExpectations(t)
}

func TestBookingService_SubmitSelf_NetworkErrorReleasesLock(t *testing.T) {
	backend := &MockBackend{}
	cache := &MockCache{}
	service := newDirectService(backend, cache, nil)

	ctx := context.Background()
	req := validSelf()

	cache.On("AcquireSubmissionLock", ctx, req.Mobno, "tok-1", time.Minute).Return(true, nil).Once()
	backend.On("CreateSelf", ctx, req).Return(0, errors.New("connection reset")).Once()
	cache.On("ReleaseSubmissionLock", mock.Anything, req.Mobno, "tok-1").Return(nil).Once()

	_, err := service.SubmitSelf(ctx, req)

	assert.ErrorIs(t, err, domain.ErrBackend)
	cache.AssertExpectations(t)
}

func TestBookingService_SubmitSelf_InProgress(t *testing.T) {
	backend := &MockBackend{}
	cache := &MockCache{}
	service := newDirectService(backend, cache, nil)

	ctx := context.Background()
	req := validSelf()

	cache.On("AcquireSubmissionLock", ctx, req.Mobno, "tok-1", time.Minute).Return(false, nil).Once()

	_, err := service.SubmitSelf(ctx, req)

	assert.ErrorIs(t, err, domain.ErrSubmissionInProgress)
	backend.AssertNotCalled(t, "CreateSelf", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "ReleaseSubmissionLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_PaymentFlow_KeepsLock(t *testing.T) {
	backend := &MockBackend{}
	cache := &MockCache{}
	payments := &MockPayments{}
	service := newPaymentService(backend, payments, cache)

	ctx := context.Background()
	req := validGuest()
	checkout := &payment.Checkout{OrderID: "order_1", Amount: 50000, Currency: "INR"}

	cache.On("AcquireSubmissionLock", ctx, req.Mobno, "tok-1", time.Minute).Return(true, nil).Once()
	payments.On("Initiate", ctx, req.Mobno, 1, "tok-1").Return(checkout, nil).Once()

	outcome, err := service.SubmitGuest(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, checkout, outcome.Checkout)
	assert.False(t, outcome.CloseModal)
	cache.AssertNotCalled(t, "ReleaseSubmissionLock", mock.Anything, mock.Anything, mock.Anything)
	backend.AssertNotCalled(t, "CreateGuest", mock.Anything, mock.Anything)
	payments.AssertExpectations(t)
}

func TestBookingService_PaymentFlow_OrderFailureReleasesLock(t *testing.T) {
	cache := &MockCache{}
	payments := &MockPayments{}
	service := newPaymentService(&MockBackend{}, payments, cache)

	ctx := context.Background()
	req := validSelf()

	cache.On("AcquireSubmissionLock", ctx, req.Mobno, "tok-1", time.Minute).Return(true, nil).Once()
	payments.On("Initiate", ctx, req.Mobno, 1, "tok-1").Return(nil, domain.ErrBackend).Once()
	cache.On("ReleaseSubmissionLock", mock.Anything, req.Mobno, "tok-1").Return(nil).Once()

	_, err := service.SubmitSelf(ctx, req)

	assert.ErrorIs(t, err, domain.ErrBackend)
	cache.AssertExpectations(t)
}
