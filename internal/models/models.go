package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeSide is the direction of a trade
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// TradeStatus is the lifecycle state of a trade. The API only ever moves
// trades from SUBMITTED to CANCELLED; FILLED and REJECTED are set by
// downstream settlement.
type TradeStatus string

const (
	TradeStatusSubmitted TradeStatus = "SUBMITTED"
	TradeStatusCancelled TradeStatus = "CANCELLED"
	TradeStatusFilled    TradeStatus = "FILLED"
	TradeStatusRejected  TradeStatus = "REJECTED"
)

// State is a two-letter US state code
type State string

var validStates = map[State]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "DC": true, "FL": true, "GA": true, "HI": true,
	"ID": true, "IL": true, "IN": true, "IA": true, "KS": true, "KY": true,
	"LA": true, "ME": true, "MD": true, "MA": true, "MI": true, "MN": true,
	"MS": true, "MO": true, "MT": true, "NE": true, "NV": true, "NH": true,
	"NJ": true, "NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true, "SD": true,
	"TN": true, "TX": true, "UT": true, "VT": true, "VA": true, "WA": true,
	"WV": true, "WI": true, "WY": true,
}

// Valid reports whether s is a known state code
func (s State) Valid() bool {
	return validStates[s]
}

// Account is a trading account. An account has at most one address at any
// time; Address carries an embedded address on create/update requests.
// AddressID is the server-managed link and is never read from or written
// to JSON.
type Account struct {
	ID        uuid.UUID  `json:"id"`
	AddressID *uuid.UUID `json:"-"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Address   *Address   `json:"address,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Validate checks the account's own fields and any embedded address
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return fmt.Errorf("username must not be blank")
	}
	if strings.TrimSpace(a.Email) == "" {
		return fmt.Errorf("email must not be blank")
	}
	if a.Address != nil {
		return a.Address.Validate()
	}
	return nil
}

// Address is the mailing address linked to an account. It has no meaning
// outside its owning account and is deleted when detached.
type Address struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     State     `json:"state"`
	Zipcode   int       `json:"zipcode"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the address fields
func (a *Address) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("name must not be blank")
	}
	if strings.TrimSpace(a.Street) == "" {
		return fmt.Errorf("street must not be blank")
	}
	if strings.TrimSpace(a.City) == "" {
		return fmt.Errorf("city must not be blank")
	}
	if !a.State.Valid() {
		return fmt.Errorf("state %q is not a valid state code", a.State)
	}
	if a.Zipcode <= 0 {
		return fmt.Errorf("zipcode must be positive")
	}
	return nil
}

var minPrice = decimal.NewFromFloat(0.01)

// Trade is a stock trade on an account. ID, Status and TotalAmount are
// server-assigned; the owning account never changes after creation.
type Trade struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Symbol      string          `json:"symbol"`
	Quantity    int             `json:"quantity"`
	Side        TradeSide       `json:"side"`
	Price       decimal.Decimal `json:"price"`
	Status      TradeStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate checks the client-supplied trade fields
func (t *Trade) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("symbol must not be blank")
	}
	if t.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if t.Side != TradeSideBuy && t.Side != TradeSideSell {
		return fmt.Errorf("side must be %s or %s", TradeSideBuy, TradeSideSell)
	}
	if t.Price.LessThan(minPrice) {
		return fmt.Errorf("price must be at least %s", minPrice)
	}
	return nil
}

// ComputeTotalAmount derives quantity x price with exact decimal arithmetic
func (t *Trade) ComputeTotalAmount() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(int64(t.Quantity)))
}
