package domain

import "time"

// Seller is a tenant account. GatewayInstance and GatewayAPIKey identify the
// seller's messaging gateway session; CountryCode is the default calling
// code prefixed to national phone numbers.
type Seller struct {
	ID              string
	Name            string
	Locale          string
	CountryCode     string
	GatewayInstance string
	GatewayAPIKey   string
	PaceSeconds     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
