package brokerage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mwhitfield/brokerage/internal/models"
)

// AccountService orchestrates account creation and update together with the
// account's optional embedded address.
type AccountService struct {
	store     Store
	addresses *AddressService
}

// NewAccountService creates a new account service
func NewAccountService(store Store, addresses *AddressService) *AccountService {
	return &AccountService{store: store, addresses: addresses}
}

// Create persists a new account. An embedded address is persisted first and
// its id captured onto the account before the account row is written.
func (s *AccountService) Create(ctx context.Context, account *models.Account) (uuid.UUID, error) {
	if account.Address != nil {
		addressID, err := s.addresses.CreateStandalone(ctx, account.Address)
		if err != nil {
			return uuid.Nil, err
		}
		account.AddressID = &addressID
	}

	saved, err := s.store.SaveAccount(ctx, account)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save account: %w", err)
	}
	return saved.ID, nil
}

// Update replaces the account's username and email. An embedded address
// overwrites the account's existing linked address; updating never creates
// one. With no embedded address, any linked address is detached and deleted.
func (s *AccountService) Update(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		return fmt.Errorf("%w: account id is required for update", ErrInvalidOperation)
	}

	if account.Address != nil {
		current, err := s.addresses.FindForAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: account %s has no address to update", ErrInvalidOperation, account.ID)
		}
		account.Address.ID = current.ID
		if err := s.store.UpdateAddress(ctx, account.Address); err != nil {
			return fmt.Errorf("failed to update address: %w", err)
		}
		account.AddressID = &current.ID
	} else {
		if err := s.addresses.DeleteForAccount(ctx, account.ID); err != nil {
			return err
		}
		account.AddressID = nil
	}

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// FindByID returns the account, or nil when it does not exist
func (s *AccountService) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.store.FindAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return account, nil
}

// ListAll returns every account
func (s *AccountService) ListAll(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
