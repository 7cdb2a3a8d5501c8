package credentials

import (
	"context"
	"strings"

	"notifier/internal/domain"
)

// Credentials identify a seller's session on the messaging gateway.
type Credentials struct {
	Instance    string
	APIKey      string
	CountryCode string
	Locale      string
}

// Store resolves per-seller gateway credentials from the tenant record.
type Store struct {
	sellers domain.SellerRepository
}

func NewStore(sellers domain.SellerRepository) *Store {
	return &Store{sellers: sellers}
}

// ForSeller returns the seller's gateway credentials, or
// domain.ErrNoCredentials when the instance or key is missing.
func (s *Store) ForSeller(ctx context.Context, sellerID string) (Credentials, error) {
	seller, err := s.sellers.GetByID(ctx, sellerID)
	if err != nil {
		return Credentials{}, err
	}
	creds := Credentials{
		Instance:    strings.TrimSpace(seller.GatewayInstance),
		APIKey:      strings.TrimSpace(seller.GatewayAPIKey),
		CountryCode: strings.TrimSpace(seller.CountryCode),
		Locale:      strings.TrimSpace(seller.Locale),
	}
	if creds.Instance == "" || creds.APIKey == "" {
		return Credentials{}, domain.ErrNoCredentials
	}
	return creds, nil
}
