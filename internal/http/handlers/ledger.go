package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rupayana/backend/internal/http/respond"
	"github.com/rupayana/backend/internal/ledger"
	"github.com/rupayana/backend/internal/models"
	"github.com/rupayana/backend/internal/models/dto"
)

// LedgerHandler owns the money-movement endpoints.
type LedgerHandler struct {
	ledger *ledger.Ledger
}

// NewLedgerHandler constructs the handler.
func NewLedgerHandler(l *ledger.Ledger) *LedgerHandler {
	return &LedgerHandler{ledger: l}
}

// Register attaches ledger routes to the mux.
func (h *LedgerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/transfer", h.handleTransfer)
	mux.HandleFunc("/api/billpay", h.handleBillPay)
	mux.HandleFunc("/api/deposit", h.handleDeposit)
	mux.HandleFunc("/api/transactions", h.handleTransactions)
}

func (h *LedgerHandler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	txn, err := h.ledger.Transfer(r.Context(), req.FromEmail, req.ToEmail, req.Amount)
	if err != nil {
		writeDomainError(w, "transfer", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Transfer completed", txn)
}

func (h *LedgerHandler) handleBillPay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.BillPayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Biller) == "" {
		respond.Error(w, http.StatusBadRequest, "biller is required")
		return
	}
	txn, err := h.ledger.BillPay(r.Context(), req.Email, req.Biller, req.Amount)
	if err != nil {
		writeDomainError(w, "billpay", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Bill paid", txn)
}

func (h *LedgerHandler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	txn, err := h.ledger.Deposit(r.Context(), req.Email, req.Amount, req.Source)
	if err != nil {
		writeDomainError(w, "deposit", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Deposit completed", txn)
}

func (h *LedgerHandler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		respond.Error(w, http.StatusBadRequest, "email is required")
		return
	}
	txns, err := h.ledger.History(r.Context(), email)
	if err != nil {
		writeDomainError(w, "list transactions", err)
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	respond.JSON(w, http.StatusOK, "OK", txns)
}
