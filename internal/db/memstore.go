package db

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitfield/brokerage/internal/models"
)

// MemStore is an in-memory storage gateway with the same observable
// semantics as DB: generated ids, SUBMITTED on trade insert, total amount
// derived on read. Used by tests and local development.
type MemStore struct {
	mu        sync.RWMutex
	accounts  map[uuid.UUID]models.Account
	addresses map[uuid.UUID]models.Address
	trades    map[uuid.UUID]models.Trade
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		accounts:  make(map[uuid.UUID]models.Account),
		addresses: make(map[uuid.UUID]models.Address),
		trades:    make(map[uuid.UUID]models.Trade),
	}
}

// SaveAccount inserts a new account and returns it with its generated id
func (m *MemStore) SaveAccount(_ context.Context, account *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *account
	saved.ID = uuid.New()
	saved.Address = nil
	saved.CreatedAt = time.Now()
	m.accounts[saved.ID] = saved
	return &saved, nil
}

// UpdateAccount overwrites the stored account keyed by id
func (m *MemStore) UpdateAccount(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.accounts[account.ID]
	if !ok {
		return errNoRow("account", account.ID)
	}
	updated := *account
	updated.Address = nil
	updated.CreatedAt = stored.CreatedAt
	m.accounts[account.ID] = updated
	return nil
}

// FindAccount returns the account, or nil if none exists
func (m *MemStore) FindAccount(_ context.Context, id uuid.UUID) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

// ListAccounts returns every account
func (m *MemStore) ListAccounts(_ context.Context) ([]models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var accounts []models.Account
	for _, account := range m.accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// SaveAddress inserts a new address and returns it with its generated id
func (m *MemStore) SaveAddress(_ context.Context, address *models.Address) (*models.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *address
	saved.ID = uuid.New()
	saved.CreatedAt = time.Now()
	m.addresses[saved.ID] = saved
	return &saved, nil
}

// UpdateAddress overwrites the stored address keyed by id
func (m *MemStore) UpdateAddress(_ context.Context, address *models.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.addresses[address.ID]
	if !ok {
		return errNoRow("address", address.ID)
	}
	updated := *address
	updated.CreatedAt = stored.CreatedAt
	m.addresses[address.ID] = updated
	return nil
}

// FindAddressByAccount resolves the address through the account's link, as
// the SQL join does
func (m *MemStore) FindAddressByAccount(_ context.Context, accountID uuid.UUID) (*models.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[accountID]
	if !ok || account.AddressID == nil {
		return nil, nil
	}
	address, ok := m.addresses[*account.AddressID]
	if !ok {
		return nil, nil
	}
	return &address, nil
}

// DeleteAddress removes the address
func (m *MemStore) DeleteAddress(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.addresses, id)
	return nil
}

// SaveTrade inserts a new trade, assigning its id and the initial SUBMITTED
// status
func (m *MemStore) SaveTrade(_ context.Context, trade *models.Trade) (*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *trade
	saved.ID = uuid.New()
	saved.Status = models.TradeStatusSubmitted
	saved.CreatedAt = time.Now()
	m.trades[saved.ID] = saved

	out := saved
	out.TotalAmount = out.ComputeTotalAmount()
	return &out, nil
}

// UpdateTrade overwrites the stored trade keyed by id
func (m *MemStore) UpdateTrade(_ context.Context, trade *models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.trades[trade.ID]
	if !ok {
		return errNoRow("trade", trade.ID)
	}
	updated := *trade
	updated.AccountID = stored.AccountID
	updated.CreatedAt = stored.CreatedAt
	m.trades[trade.ID] = updated
	return nil
}

// FindTrade returns the trade, or nil if none exists
func (m *MemStore) FindTrade(_ context.Context, id uuid.UUID) (*models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trade, ok := m.trades[id]
	if !ok {
		return nil, nil
	}
	trade.TotalAmount = trade.ComputeTotalAmount()
	return &trade, nil
}

// FindTradeByAccount returns the trade only when owned by the account
func (m *MemStore) FindTradeByAccount(_ context.Context, tradeID, accountID uuid.UUID) (*models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trade, ok := m.trades[tradeID]
	if !ok || trade.AccountID != accountID {
		return nil, nil
	}
	trade.TotalAmount = trade.ComputeTotalAmount()
	return &trade, nil
}

// ListTradesByAccount returns all trades on the account
func (m *MemStore) ListTradesByAccount(_ context.Context, accountID uuid.UUID) ([]models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var trades []models.Trade
	for _, trade := range m.trades {
		if trade.AccountID == accountID {
			trade.TotalAmount = trade.ComputeTotalAmount()
			trades = append(trades, trade)
		}
	}
	return trades, nil
}

type noRowError struct {
	kind string
	id   uuid.UUID
}

func (e noRowError) Error() string {
	return "update matched no " + e.kind + " row for " + e.id.String()
}

func errNoRow(kind string, id uuid.UUID) error {
	return noRowError{kind: kind, id: id}
}
