package domain

import (
	"encoding/json"
	"strings"
)

type TravelMode string

const (
	TravelModeOwnCar    TravelMode = "self car"
	TravelModeOrganized TravelMode = "raj pravas"
	TravelModeOther     TravelMode = "other"
)

// TravelModes lists the selectable modes in display order.
var TravelModes = []TravelMode{TravelModeOwnCar, TravelModeOrganized, TravelModeOther}

func (m TravelMode) Valid() bool {
	switch m {
	case TravelModeOwnCar, TravelModeOrganized, TravelModeOther:
		return true
	default:
		return false
	}
}

// RequiresPlate reports whether a car number plate must accompany the booking.
func (m TravelMode) RequiresPlate() bool {
	return m == TravelModeOwnCar
}

func (m TravelMode) Label() string {
	switch m {
	case TravelModeOwnCar:
		return "Own Car"
	case TravelModeOrganized:
		return "Raj Pravas"
	case TravelModeOther:
		return "Other"
	default:
		return strings.Replace(string(m), "_", " ", 1)
	}
}

type Package struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

var Packages = []Package{
	{ID: 1, Name: "All days"},
	{ID: 2, Name: "Last day"},
}

func PackageByID(id int) (Package, bool) {
	for _, p := range Packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

type SelfBookingRequest struct {
	Mobno          int64      `json:"mobno"`
	PackageID      int        `json:"packageid"`
	TravelMode     TravelMode `json:"travel_mode"`
	CarNumberPlate string     `json:"car_number_plate,omitempty"`
}

type GuestBookingRequest struct {
	SelfBookingRequest
	GuestName  string `json:"guest_name"`
	GuestMobno string `json:"guest_mobno"`
}

// Booking is a record as returned by the booking backend.
type Booking struct {
	BookingID         string      `json:"bookingid"`
	GuestName         string      `json:"guest_name"`
	Mobno             json.Number `json:"mobno"`
	Package           string      `json:"package"`
	TravelMode        TravelMode  `json:"travel_mode"`
	BookingStatus     string      `json:"booking_status"`
	TransactionStatus string      `json:"transaction_status"`
}
