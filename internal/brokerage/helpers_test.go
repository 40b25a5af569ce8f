package brokerage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/brokerage/internal/db"
	"github.com/mwhitfield/brokerage/internal/models"
)

type testServices struct {
	store     *db.MemStore
	addresses *AddressService
	accounts  *AccountService
	trades    *TradeService
}

func newTestServices() *testServices {
	store := db.NewMemStore()
	addresses := NewAddressService(store)
	return &testServices{
		store:     store,
		addresses: addresses,
		accounts:  NewAccountService(store, addresses),
		trades:    NewTradeService(store),
	}
}

func (s *testServices) mustCreateAccount(t *testing.T, account models.Account) uuid.UUID {
	t.Helper()
	id, err := s.accounts.Create(context.Background(), &account)
	require.NoError(t, err)
	return id
}

func (s *testServices) mustCreateTrade(t *testing.T, accountID uuid.UUID, symbol string, quantity int, price string) *models.Trade {
	t.Helper()
	trade, err := s.trades.Create(context.Background(), &models.Trade{
		AccountID: accountID,
		Symbol:    symbol,
		Quantity:  quantity,
		Side:      models.TradeSideBuy,
		Price:     decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return trade
}

func testAddress() models.Address {
	return models.Address{
		Name:    "Alice Johnson",
		Street:  "350 Fifth Avenue",
		City:    "New York",
		State:   "NY",
		Zipcode: 10001,
	}
}
