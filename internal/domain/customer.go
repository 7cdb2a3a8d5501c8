package domain

import "time"

// Customer is an end customer managed by a seller. Only the fields the
// notification engine needs are modeled here.
type Customer struct {
	ID          string
	SellerID    string
	Name        string
	Phone       string
	Category    string
	Plan        string
	Amount      string
	DueDate     time.Time
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
