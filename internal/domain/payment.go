package domain

import "time"

// Order is a payment order issued by the backend for a package.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Greeting carries the display name and email used to pre-fill checkout.
type Greeting struct {
	IssuedTo string `json:"issuedto"`
	Email    string `json:"email"`
}

type PaymentStatus string

const (
	PaymentStatusCreated   PaymentStatus = "created"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusDismissed PaymentStatus = "dismissed"
	PaymentStatusAbandoned PaymentStatus = "abandoned"
)

// Payment is a locally recorded checkout attempt.
type Payment struct {
	ID        int64
	OrderID   string
	PaymentID string
	Mobno     int64
	PackageID int
	Amount    int64
	Currency  string
	Status    PaymentStatus
	// LockToken identifies the submission lock this checkout holds.
	LockToken string
	CreatedAt time.Time
	UpdatedAt time.Time
}
