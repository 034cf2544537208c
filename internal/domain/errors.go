package domain

import "errors"

var (
	ErrMissingFields     = errors.New("required fields are missing")
	ErrPlateRequired     = errors.New("car number plate is required for own car travel")
	ErrUnknownPackage    = errors.New("unknown package")
	ErrUnknownTravelMode = errors.New("unknown travel mode")
	ErrInvalidMobile     = errors.New("invalid mobile number")
)

var (
	ErrAlreadyBooked        = errors.New("already booked")
	ErrBackend              = errors.New("booking backend error")
	ErrSubmissionInProgress = errors.New("submission already in progress")
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrInvalidSignature = errors.New("invalid payment signature")
)
