package credentials

import (
	"context"
	"errors"
	"testing"

	"notifier/internal/domain"
)

type fakeSellers struct {
	seller *domain.Seller
	err    error
}

func (f fakeSellers) GetByID(ctx context.Context, id string) (*domain.Seller, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.seller, nil
}

func TestForSellerReturnsTrimmedCredentials(t *testing.T) {
	store := NewStore(fakeSellers{seller: &domain.Seller{
		ID:              "s-1",
		GatewayInstance: " painel01 ",
		GatewayAPIKey:   " key-123 ",
		CountryCode:     "55",
	}})

	creds, err := store.ForSeller(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("ForSeller: %v", err)
	}
	if creds.Instance != "painel01" || creds.APIKey != "key-123" || creds.CountryCode != "55" {
		t.Fatalf("unexpected credentials: %#v", creds)
	}
}

func TestForSellerMissingKey(t *testing.T) {
	store := NewStore(fakeSellers{seller: &domain.Seller{ID: "s-1", GatewayInstance: "painel01"}})

	_, err := store.ForSeller(context.Background(), "s-1")
	if !errors.Is(err, domain.ErrNoCredentials) {
		t.Fatalf("err = %v, want ErrNoCredentials", err)
	}
}

func TestForSellerPropagatesRepoError(t *testing.T) {
	store := NewStore(fakeSellers{err: domain.ErrNotFound})

	_, err := store.ForSeller(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
