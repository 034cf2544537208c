// Package view maps backend records onto what the registration page shows.
package view

import (
	"strings"

	"github.com/Domenick1991/eventbooking/internal/domain"
)

// Row is one line of the registration table.
type Row struct {
	Name              string `json:"name"`
	Mobile            string `json:"mobile"`
	Package           string `json:"package"`
	TravelMode        string `json:"travel_mode"`
	BookingStatus     string `json:"booking_status"`
	TransactionStatus string `json:"transaction_status"`
}

var Columns = []string{"Name", "Mobile", "Package", "Travel Mode", "Booking Status", "Transaction Status"}

// Rows returns nil for an empty or absent list so the table is not rendered.
func Rows(bookings []domain.Booking) []Row {
	if len(bookings) == 0 {
		return nil
	}
	rows := make([]Row, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, Row{
			Name:              b.GuestName,
			Mobile:            b.Mobno.String(),
			Package:           b.Package,
			TravelMode:        TravelModeLabel(string(b.TravelMode)),
			BookingStatus:     b.BookingStatus,
			TransactionStatus: b.TransactionStatus,
		})
	}
	return rows
}

// TravelModeLabel replaces only the first underscore with a space.
func TravelModeLabel(mode string) string {
	return strings.Replace(mode, "_", " ", 1)
}
