package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	ReconcileWallet(ctx context.Context, userID, walletID string) (*usecase.ReconciliationResult, error)
	GenerateReport(ctx context.Context, userID string) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler exposes wallet consistency checks.
type ReconciliationHandler struct {
	reconciler ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciler ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciler: reconciler}
}

// Wallet reconciles one wallet against its transactions.
func (h *ReconciliationHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciler.ReconcileWallet(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.ReconciliationFromResult(result))
}

// Report reconciles every wallet of the caller.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.GenerateReport(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.ReportFromDomain(report))
}
