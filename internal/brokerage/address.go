package brokerage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mwhitfield/brokerage/internal/models"
)

// AddressService enforces the one-address-per-account rule. All mutations
// go through the owning account's id.
type AddressService struct {
	store Store
}

// NewAddressService creates a new address service
func NewAddressService(store Store) *AddressService {
	return &AddressService{store: store}
}

// CreateStandalone persists an address without linking it to an account.
// Only the account-creation flow uses this; the address becomes consistent
// once the caller links it.
func (s *AddressService) CreateStandalone(ctx context.Context, address *models.Address) (uuid.UUID, error) {
	saved, err := s.store.SaveAddress(ctx, address)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save address: %w", err)
	}
	return saved.ID, nil
}

// CreateForAccount persists an address and links it to the account. The
// account must exist and must not already have an address.
func (s *AddressService) CreateForAccount(ctx context.Context, accountID uuid.UUID, address *models.Address) (uuid.UUID, error) {
	account, err := s.requireAccount(ctx, accountID)
	if err != nil {
		return uuid.Nil, err
	}

	existing, err := s.store.FindAddressByAccount(ctx, accountID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up address: %w", err)
	}
	if existing != nil {
		return uuid.Nil, fmt.Errorf("%w: address already exists for account %s", ErrInvalidOperation, accountID)
	}

	saved, err := s.store.SaveAddress(ctx, address)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save address: %w", err)
	}

	account.AddressID = &saved.ID
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return uuid.Nil, fmt.Errorf("failed to link address to account: %w", err)
	}
	return saved.ID, nil
}

// UpdateForAccount overwrites the account's linked address in place. The
// linked address's id is carried onto the input; callers never change it.
func (s *AddressService) UpdateForAccount(ctx context.Context, accountID uuid.UUID, address *models.Address) error {
	if _, err := s.requireAccount(ctx, accountID); err != nil {
		return err
	}

	current, err := s.store.FindAddressByAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to look up address: %w", err)
	}
	if current == nil {
		return fmt.Errorf("%w: account %s has no address to update", ErrInvalidOperation, accountID)
	}

	address.ID = current.ID
	if err := s.store.UpdateAddress(ctx, address); err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}
	return nil
}

// FindForAccount returns the account's linked address, or nil when the
// account has none. The account itself must exist.
func (s *AddressService) FindForAccount(ctx context.Context, accountID uuid.UUID) (*models.Address, error) {
	if _, err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	address, err := s.store.FindAddressByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up address: %w", err)
	}
	return address, nil
}

// DeleteForAccount detaches and deletes the account's linked address. The
// account is de-linked and persisted before the address row is removed, so
// no reader ever sees a reference to a deleted address.
func (s *AddressService) DeleteForAccount(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.requireAccount(ctx, accountID)
	if err != nil {
		return err
	}

	address, err := s.store.FindAddressByAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to look up address: %w", err)
	}
	if address == nil {
		return fmt.Errorf("%w: account %s has no address to delete", ErrInvalidOperation, accountID)
	}

	account.AddressID = nil
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to detach address from account: %w", err)
	}
	if err := s.store.DeleteAddress(ctx, address.ID); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}

func (s *AddressService) requireAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	account, err := s.store.FindAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s", ErrNotFound, accountID)
	}
	return account, nil
}
