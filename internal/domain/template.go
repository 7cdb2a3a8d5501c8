package domain

import "time"

// MessageTemplate is a seller-owned message body with {placeholder}
// variables, keyed by notification kind and optionally narrowed to a
// customer category. An empty category matches any category.
type MessageTemplate struct {
	ID        string
	SellerID  string
	Kind      NotificationKind
	Category  string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
