package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	SaveTransaction(ctx context.Context, userID string, input usecase.SaveTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID, walletID string) error
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
	ListWalletTransactions(ctx context.Context, userID, walletID string, limit, offset int) ([]*domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactions TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactions TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// Create records a new transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.transactions.SaveTransaction(r.Context(), userID(r), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusCreated, dto.TransactionFromDomain(t))
}

// Update patches a transaction. Omitted wallet, type and amount keep their
// stored values.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	existing, err := h.transactions.GetTransaction(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	input, err := req.MergeInto(existing)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.transactions.SaveTransaction(r.Context(), userID(r), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.TransactionFromDomain(t))
}

// Get returns one transaction.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.transactions.GetTransaction(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.TransactionFromDomain(t))
}

// Delete removes a transaction. The wallet_id query parameter, when given,
// must match the transaction's wallet.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	walletID := r.URL.Query().Get("wallet_id")
	if walletID == "" {
		t, err := h.transactions.GetTransaction(r.Context(), userID(r), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		walletID = t.WalletID
	}

	if err := h.transactions.DeleteTransaction(r.Context(), userID(r), id, walletID); err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, map[string]string{"id": id, "wallet_id": walletID})
}

// List returns one page of the caller's transactions, most recent first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	transactions, err := h.transactions.ListTransactions(r.Context(), userID(r), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(transactions),
		Limit:        limit,
		Offset:       offset,
	})
}

// ListByWallet returns one page of a wallet's transactions.
func (h *TransactionHandler) ListByWallet(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	transactions, err := h.transactions.ListWalletTransactions(r.Context(), userID(r), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(transactions),
		Limit:        limit,
		Offset:       offset,
	})
}

func pageParams(r *http.Request) (int, int) {
	return domain.ValidatePagination(
		parseIntQuery(r, "limit", 0),
		parseIntQuery(r, "offset", 0),
		usecase.DefaultTransactionPageSize,
		usecase.MaxTransactionPageSize,
	)
}
