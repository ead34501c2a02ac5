package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	SaveWallet(ctx context.Context, userID string, input usecase.SaveWalletInput) (*domain.Wallet, error)
	GetWallet(ctx context.Context, userID, id string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, userID string) ([]*domain.Wallet, error)
	Summary(ctx context.Context, userID string) (*domain.WalletSummary, error)
	DeleteWallet(ctx context.Context, userID, walletID string) (*usecase.DeleteWalletResult, error)
}

// WalletHandler handles wallet-related HTTP requests.
type WalletHandler struct {
	wallets WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallets WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// Create creates a wallet.
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveWalletRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	wallet, err := h.wallets.SaveWallet(r.Context(), userID(r), req.ToUseCaseInput(""))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusCreated, dto.WalletFromDomain(wallet))
}

// Update patches a wallet's name or image.
func (h *WalletHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveWalletRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	wallet, err := h.wallets.SaveWallet(r.Context(), userID(r), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Get returns one wallet.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.wallets.GetWallet(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// List returns the caller's wallets, newest first.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.wallets.ListWallets(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.WalletsFromDomain(wallets))
}

// Summary returns totals across the caller's wallets.
func (h *WalletHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.wallets.Summary(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.SummaryFromDomain(summary))
}

// Delete removes a wallet and all of its transactions.
func (h *WalletHandler) Delete(w http.ResponseWriter, r *http.Request) {
	result, err := h.wallets.DeleteWallet(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.DeleteWalletFromResult(result))
}
