package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mwhitfield/brokerage/internal/models"
)

// DB is the PostgreSQL storage gateway. Trade reads compute the total
// amount as quantity * price in SQL so the arithmetic stays in exact
// numeric precision.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB initializes a new database connection pool
func NewDB(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}

// SaveAccount inserts a new account and returns it with its generated id
func (db *DB) SaveAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	saved := &models.Account{}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO accounts (username, email, address_uuid)
		 VALUES ($1, $2, $3)
		 RETURNING account_uuid, address_uuid, username, email, created_at`,
		account.Username, account.Email, account.AddressID).Scan(
		&saved.ID, &saved.AddressID, &saved.Username, &saved.Email, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	return saved, nil
}

// UpdateAccount overwrites the account row keyed by id
func (db *DB) UpdateAccount(ctx context.Context, account *models.Account) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE accounts SET username = $1, email = $2, address_uuid = $3
		 WHERE account_uuid = $4`,
		account.Username, account.Email, account.AddressID, account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update matched no account row for %s", account.ID)
	}
	return nil
}

// FindAccount returns the account, or nil if no row exists
func (db *DB) FindAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account := &models.Account{}
	err := db.Pool.QueryRow(ctx,
		`SELECT account_uuid, address_uuid, username, email, created_at
		 FROM accounts WHERE account_uuid = $1`,
		id).Scan(&account.ID, &account.AddressID, &account.Username, &account.Email, &account.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// ListAccounts returns every account
func (db *DB) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT account_uuid, address_uuid, username, email, created_at
		 FROM accounts ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.AddressID, &account.Username, &account.Email, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}

// SaveAddress inserts a new address and returns it with its generated id
func (db *DB) SaveAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	saved := &models.Address{}
	var state string
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO addresses (name, street, city, state, zipcode)
		 VALUES ($1, $2, $3, $4::us_state, $5)
		 RETURNING address_uuid, name, street, city, state, zipcode, created_at`,
		address.Name, address.Street, address.City, string(address.State), address.Zipcode).Scan(
		&saved.ID, &saved.Name, &saved.Street, &saved.City, &state, &saved.Zipcode, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save address: %w", err)
	}
	saved.State = models.State(state)
	return saved, nil
}

// UpdateAddress overwrites the address row keyed by id
func (db *DB) UpdateAddress(ctx context.Context, address *models.Address) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE addresses SET name = $1, street = $2, city = $3, state = $4::us_state, zipcode = $5
		 WHERE address_uuid = $6`,
		address.Name, address.Street, address.City, string(address.State), address.Zipcode, address.ID)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update matched no address row for %s", address.ID)
	}
	return nil
}

// FindAddressByAccount returns the account's linked address, or nil if the
// account has none
func (db *DB) FindAddressByAccount(ctx context.Context, accountID uuid.UUID) (*models.Address, error) {
	address := &models.Address{}
	var state string
	err := db.Pool.QueryRow(ctx,
		`SELECT a.address_uuid, a.name, a.street, a.city, a.state, a.zipcode, a.created_at
		 FROM accounts acc
		 JOIN addresses a ON acc.address_uuid = a.address_uuid
		 WHERE acc.account_uuid = $1`,
		accountID).Scan(&address.ID, &address.Name, &address.Street, &address.City, &state, &address.Zipcode, &address.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find address: %w", err)
	}
	address.State = models.State(state)
	return address, nil
}

// DeleteAddress removes the address row
func (db *DB) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM addresses WHERE address_uuid = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}

const tradeColumns = `trade_uuid, account_uuid, symbol, quantity, side, price, status,
	 quantity * price AS total_amount, created_at`

// SaveTrade inserts a new trade; the database assigns the id and the
// initial SUBMITTED status
func (db *DB) SaveTrade(ctx context.Context, trade *models.Trade) (*models.Trade, error) {
	saved := &models.Trade{}
	var side, status string
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO trades (account_uuid, symbol, quantity, side, price)
		 VALUES ($1, $2, $3, $4::trade_side, $5)
		 RETURNING `+tradeColumns,
		trade.AccountID, trade.Symbol, trade.Quantity, string(trade.Side), trade.Price).Scan(
		&saved.ID, &saved.AccountID, &saved.Symbol, &saved.Quantity, &side,
		&saved.Price, &status, &saved.TotalAmount, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save trade: %w", err)
	}
	saved.Side = models.TradeSide(side)
	saved.Status = models.TradeStatus(status)
	return saved, nil
}

// UpdateTrade overwrites the trade row keyed by id
func (db *DB) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE trades SET symbol = $1, quantity = $2, side = $3::trade_side, price = $4, status = $5::trade_status
		 WHERE trade_uuid = $6`,
		trade.Symbol, trade.Quantity, string(trade.Side), trade.Price, string(trade.Status), trade.ID)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update matched no trade row for %s", trade.ID)
	}
	return nil
}

// FindTrade returns the trade, or nil if no row exists
func (db *DB) FindTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE trade_uuid = $1`, id)
	return scanTrade(row)
}

// FindTradeByAccount returns the trade only when it exists under the given
// account; otherwise nil
func (db *DB) FindTradeByAccount(ctx context.Context, tradeID, accountID uuid.UUID) (*models.Trade, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE trade_uuid = $1 AND account_uuid = $2`,
		tradeID, accountID)
	return scanTrade(row)
}

// ListTradesByAccount returns all trades on the account
func (db *DB) ListTradesByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Trade, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE account_uuid = $1`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var trade models.Trade
		var side, status string
		if err := rows.Scan(&trade.ID, &trade.AccountID, &trade.Symbol, &trade.Quantity, &side,
			&trade.Price, &status, &trade.TotalAmount, &trade.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trade.Side = models.TradeSide(side)
		trade.Status = models.TradeStatus(status)
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}
	return trades, nil
}

func scanTrade(row pgx.Row) (*models.Trade, error) {
	trade := &models.Trade{}
	var side, status string
	err := row.Scan(&trade.ID, &trade.AccountID, &trade.Symbol, &trade.Quantity, &side,
		&trade.Price, &status, &trade.TotalAmount, &trade.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trade: %w", err)
	}
	trade.Side = models.TradeSide(side)
	trade.Status = models.TradeStatus(status)
	return trade, nil
}
