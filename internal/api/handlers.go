package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mwhitfield/brokerage/internal/brokerage"
	"github.com/mwhitfield/brokerage/internal/models"
)

// TradeEvent is pushed to websocket subscribers when a trade changes state
type TradeEvent struct {
	Type      string             `json:"type"`
	AccountID uuid.UUID          `json:"account_id"`
	TradeID   uuid.UUID          `json:"trade_id"`
	Symbol    string             `json:"symbol"`
	Status    models.TradeStatus `json:"status"`
}

const (
	EventTradeSubmitted = "TRADE_SUBMITTED"
	EventTradeCancelled = "TRADE_CANCELLED"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Accounts  *brokerage.AccountService
	Addresses *brokerage.AddressService
	Trades    *brokerage.TradeService

	// OnTradeEvent, when set, receives trade lifecycle notifications
	OnTradeEvent func(TradeEvent)
}

// NewHandler creates a new handler
func NewHandler(accounts *brokerage.AccountService, addresses *brokerage.AddressService, trades *brokerage.TradeService) *Handler {
	return &Handler{Accounts: accounts, Addresses: addresses, Trades: trades}
}

// Routes returns the full route table
func (h *Handler) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.CreateAccount)
		r.Get("/", h.ListAccounts)
		r.Route("/{accountID}", func(r chi.Router) {
			r.Get("/", h.GetAccount)
			r.Put("/", h.UpdateAccount)
			r.Post("/address", h.CreateAddress)
			r.Put("/address", h.UpdateAddress)
			r.Get("/address", h.GetAddress)
			r.Delete("/address", h.DeleteAddress)
			r.Post("/trades", h.CreateTrade)
			r.Get("/trades", h.ListTrades)
			r.Get("/trades/{tradeID}", h.GetTrade)
			r.Delete("/trades/{tradeID}", h.CancelTrade)
		})
	})
	return r
}

// CreateAccount handles account creation, with an optional embedded address
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if err := account.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// The id and address link are server-managed
	account.ID = uuid.Nil
	account.AddressID = nil
	id, err := h.Accounts.Create(r.Context(), &account)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{"account_id": id, "username": account.Username}).Info("account created")
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// ListAccounts returns all accounts, or 204 when there are none
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Accounts.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(accounts) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// GetAccount returns a single account by id
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseID(w, r, "accountID")
	if !ok {
		return
	}

	account, err := h.Accounts.FindByID(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if account == nil {
		http.Error(w, `{"error": "Account not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// UpdateAccount replaces the account's fields. An embedded address updates
// the existing linked address; omitting the address detaches and deletes it.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseID(w, r, "accountID")
	if !ok {
		return
	}

	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if err := account.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	account.ID = accountID
	if err := h.Accounts.Update(r.Context(), &account); err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithField("account_id", accountID).Info("account updated")
	w.WriteHeader(http.StatusAccepted)
}

// CreateAddress attaches an address to an account that has none
func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseID(w, r, "accountID")
	if !ok {
		return
	}

	var address models.Address
	if err := json.NewDecoder(r.Body).Decode(&address); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if err := address.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := h.Addresses.CreateForAccount(r.Context(), accountID, &address)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{"account_id": accountID, "address_id": id}).Info("address created")
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// UpdateAddress overwrites the account's linked address in place
func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseID(w, r, "accountID")
	if !ok {
		return
	}

	var address models.Address
	if err := json.NewDecoder(r.Body).Decode(&address); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if err := address.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Addresses.UpdateForAccount(r.Context(), accountID, &address); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// GetAddress returns the account's address, or 204 when it has none
func (h *Handler) GetAddress(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseID(w, r, "accountID")
	if !ok {
		return
	}

	address, err := h.Addresses.FindForAccount(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if address == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, address)
}

// DeleteAddress detaches and deletes the account's address
func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseID(w, r, "accountID")
	if !ok {
		return
	}

	if err := h.Addresses.DeleteForAccount(r.Context(), accountID); err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithField("account_id", accountID).Info("address deleted")
	w.WriteHeader(http.StatusAccepted)
}

// CreateTrade submits a trade on the account. Status and total amount are
// server-assigned.
func (h *Handler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseID(w, r, "accountID")
	if !ok {
		return
	}

	var trade models.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if err := trade.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	trade.ID = uuid.Nil
	trade.AccountID = accountID
	saved, err := h.Trades.Create(r.Context(), &trade)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"trade_id":   saved.ID,
		"symbol":     saved.Symbol,
	}).Info("trade submitted")
	h.notify(TradeEvent{
		Type:      EventTradeSubmitted,
		AccountID: accountID,
		TradeID:   saved.ID,
		Symbol:    saved.Symbol,
		Status:    saved.Status,
	})
	writeJSON(w, http.StatusCreated, map[string]any{"id": saved.ID})
}

// ListTrades returns all trades on the account, or 204 when there are none
func (h *Handler) ListTrades(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseID(w, r, "accountID")
	if !ok {
		return
	}

	trades, err := h.Trades.List(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(trades) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

// GetTrade returns a trade only when it exists under the given account
func (h *Handler) GetTrade(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseID(w, r, "accountID")
	if !ok {
		return
	}
	tradeID, ok := parseID(w, r, "tradeID")
	if !ok {
		return
	}

	trade, err := h.Trades.FindByIDAndAccount(r.Context(), tradeID, accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if trade == nil {
		http.Error(w, `{"error": "Trade not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

// CancelTrade cancels a SUBMITTED trade on the account
func (h *Handler) CancelTrade(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseID(w, r, "accountID")
	if !ok {
		return
	}
	tradeID, ok := parseID(w, r, "tradeID")
	if !ok {
		return
	}

	if err := h.Trades.Cancel(r.Context(), accountID, tradeID); err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{"account_id": accountID, "trade_id": tradeID}).Info("trade cancelled")
	event := TradeEvent{
		Type:      EventTradeCancelled,
		AccountID: accountID,
		TradeID:   tradeID,
		Status:    models.TradeStatusCancelled,
	}
	if trade, err := h.Trades.FindByIDAndAccount(r.Context(), tradeID, accountID); err == nil && trade != nil {
		event.Symbol = trade.Symbol
	}
	h.notify(event)
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Trade cancelled"})
}

func (h *Handler) notify(event TradeEvent) {
	if h.OnTradeEvent != nil {
		h.OnTradeEvent(event)
	}
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		http.Error(w, `{"error": "Invalid `+param+`"}`, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeServiceError maps the core error taxonomy to status codes:
// NotFound -> 404, InvalidTradeStatus -> 451, InvalidOperation -> 409,
// anything else -> 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, brokerage.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, brokerage.ErrInvalidTradeStatus):
		writeError(w, http.StatusUnavailableForLegalReasons, err)
	case errors.Is(err, brokerage.ErrInvalidOperation):
		writeError(w, http.StatusConflict, err)
	default:
		logrus.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
