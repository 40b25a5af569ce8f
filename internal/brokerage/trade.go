package brokerage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mwhitfield/brokerage/internal/models"
)

// TradeService enforces the trade state machine (SUBMITTED -> CANCELLED)
// and account-ownership checks.
type TradeService struct {
	store Store
}

// NewTradeService creates a new trade service
func NewTradeService(store Store) *TradeService {
	return &TradeService{store: store}
}

// Create persists a new trade for its owning account. Storage assigns the
// id and the initial SUBMITTED status; the persisted trade is returned.
func (s *TradeService) Create(ctx context.Context, trade *models.Trade) (*models.Trade, error) {
	if _, err := s.requireAccount(ctx, trade.AccountID); err != nil {
		return nil, err
	}
	saved, err := s.store.SaveTrade(ctx, trade)
	if err != nil {
		return nil, fmt.Errorf("failed to save trade: %w", err)
	}
	return saved, nil
}

// List returns all trades on the account
func (s *TradeService) List(ctx context.Context, accountID uuid.UUID) ([]models.Trade, error) {
	if _, err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	trades, err := s.store.ListTradesByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// FindByIDAndAccount returns the trade only if it exists and is owned by
// the given account; otherwise nil. Absence is a valid outcome here, not an
// error.
func (s *TradeService) FindByIDAndAccount(ctx context.Context, tradeID, accountID uuid.UUID) (*models.Trade, error) {
	trade, err := s.store.FindTradeByAccount(ctx, tradeID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up trade: %w", err)
	}
	return trade, nil
}

// Cancel transitions a SUBMITTED trade to CANCELLED. The trade must exist
// and belong to the account it was addressed through; ownership is compared
// by identifier value. No other transition is permitted.
func (s *TradeService) Cancel(ctx context.Context, accountID, tradeID uuid.UUID) error {
	if _, err := s.requireAccount(ctx, accountID); err != nil {
		return err
	}

	trade, err := s.store.FindTrade(ctx, tradeID)
	if err != nil {
		return fmt.Errorf("failed to look up trade: %w", err)
	}
	if trade == nil {
		return fmt.Errorf("%w: trade %s", ErrNotFound, tradeID)
	}
	if trade.AccountID != accountID {
		return fmt.Errorf("%w: trade %s does not belong to account %s", ErrInvalidOperation, tradeID, accountID)
	}
	if trade.Status != models.TradeStatusSubmitted {
		return fmt.Errorf("%w: cannot cancel a trade in %s status", ErrInvalidTradeStatus, trade.Status)
	}

	trade.Status = models.TradeStatusCancelled
	if err := s.store.UpdateTrade(ctx, trade); err != nil {
		return fmt.Errorf("failed to cancel trade: %w", err)
	}
	return nil
}

func (s *TradeService) requireAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	account, err := s.store.FindAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s", ErrNotFound, accountID)
	}
	return account, nil
}
