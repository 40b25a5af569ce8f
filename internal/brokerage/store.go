package brokerage

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwhitfield/brokerage/internal/models"
)

// AccountStore persists accounts. Find methods return (nil, nil) when no
// row exists; errors are reserved for storage failures.
type AccountStore interface {
	SaveAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	FindAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
}

// AddressStore persists addresses
type AddressStore interface {
	SaveAddress(ctx context.Context, address *models.Address) (*models.Address, error)
	UpdateAddress(ctx context.Context, address *models.Address) error
	FindAddressByAccount(ctx context.Context, accountID uuid.UUID) (*models.Address, error)
	DeleteAddress(ctx context.Context, id uuid.UUID) error
}

// TradeStore persists trades. SaveTrade assigns the id and the initial
// SUBMITTED status; reads carry the derived total amount.
type TradeStore interface {
	SaveTrade(ctx context.Context, trade *models.Trade) (*models.Trade, error)
	UpdateTrade(ctx context.Context, trade *models.Trade) error
	FindTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	FindTradeByAccount(ctx context.Context, tradeID, accountID uuid.UUID) (*models.Trade, error)
	ListTradesByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Trade, error)
}

// Store is the full storage gateway the services orchestrate over
type Store interface {
	AccountStore
	AddressStore
	TradeStore
}
