package dto

import (
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// Result is the envelope of every API response.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Msg     string `json:"msg,omitempty"`
}

// OK wraps data in a successful result.
func OK(data any) Result {
	return Result{Success: true, Data: data}
}

// Fail builds a failed result carrying msg.
func Fail(msg string) Result {
	return Result{Success: false, Msg: msg}
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Image         string    `json:"image,omitempty"`
	Amount        string    `json:"amount"`
	TotalIncome   string    `json:"total_income"`
	TotalExpenses string    `json:"total_expenses"`
	Version       int64     `json:"version"`
	Created       time.Time `json:"created"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WalletFromDomain converts domain wallet to response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:            w.ID,
		Name:          w.Name,
		Image:         w.Image,
		Amount:        w.Amount.String(),
		TotalIncome:   w.TotalIncome.String(),
		TotalExpenses: w.TotalExpenses.String(),
		Version:       w.Version,
		Created:       w.Created,
		UpdatedAt:     w.UpdatedAt,
	}
}

// WalletsFromDomain converts domain wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []*WalletResponse {
	result := make([]*WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// SummaryResponse totals a user's wallets.
type SummaryResponse struct {
	Wallets       []*WalletResponse `json:"wallets"`
	TotalBalance  string            `json:"total_balance"`
	TotalIncome   string            `json:"total_income"`
	TotalExpenses string            `json:"total_expenses"`
}

// SummaryFromDomain converts a wallet summary to response.
func SummaryFromDomain(s *domain.WalletSummary) *SummaryResponse {
	return &SummaryResponse{
		Wallets:       WalletsFromDomain(s.Wallets),
		TotalBalance:  s.TotalBalance.String(),
		TotalIncome:   s.TotalIncome.String(),
		TotalExpenses: s.TotalExpenses.String(),
	}
}

// DeleteWalletResponse reports a wallet deletion.
type DeleteWalletResponse struct {
	WalletID            string `json:"wallet_id"`
	TransactionsDeleted int64  `json:"transactions_deleted"`
}

// DeleteWalletFromResult converts a deletion result to response.
func DeleteWalletFromResult(r *usecase.DeleteWalletResult) *DeleteWalletResponse {
	return &DeleteWalletResponse{
		WalletID:            r.WalletID,
		TransactionsDeleted: r.TransactionsDeleted,
	}
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string    `json:"id"`
	WalletID    string    `json:"wallet_id"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		WalletID:    t.WalletID,
		Type:        string(t.Type),
		Amount:      t.Amount.String(),
		Category:    t.Category,
		Description: t.Description,
		Image:       t.Image,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse is one page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// ReconciliationResponse is the result of reconciling one wallet.
type ReconciliationResponse struct {
	WalletID           string    `json:"wallet_id"`
	RecordedAmount     string    `json:"recorded_amount"`
	RecordedIncome     string    `json:"recorded_income"`
	RecordedExpenses   string    `json:"recorded_expenses"`
	CalculatedAmount   string    `json:"calculated_amount"`
	CalculatedIncome   string    `json:"calculated_income"`
	CalculatedExpenses string    `json:"calculated_expenses"`
	Difference         string    `json:"difference"`
	IsReconciled       bool      `json:"is_reconciled"`
	LastChecked        time.Time `json:"last_checked"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		WalletID:           r.WalletID,
		RecordedAmount:     r.RecordedAmount.String(),
		RecordedIncome:     r.RecordedIncome.String(),
		RecordedExpenses:   r.RecordedExpenses.String(),
		CalculatedAmount:   r.CalculatedAmount.String(),
		CalculatedIncome:   r.CalculatedIncome.String(),
		CalculatedExpenses: r.CalculatedExpenses.String(),
		Difference:         r.Difference.String(),
		IsReconciled:       r.IsReconciled,
		LastChecked:        r.LastChecked,
	}
}

// ReportResponse summarizes reconciliation across a user's wallets.
type ReportResponse struct {
	CheckedAt         time.Time                 `json:"checked_at"`
	TotalWallets      int                       `json:"total_wallets"`
	ReconciledWallets int                       `json:"reconciled_wallets"`
	Consistent        bool                      `json:"consistent"`
	Discrepancies     []*ReconciliationResponse `json:"discrepancies"`
}

// ReportFromDomain converts a reconciliation report to response.
func ReportFromDomain(r *usecase.ReconciliationReport) *ReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromResult(d)
	}
	return &ReportResponse{
		CheckedAt:         r.CheckedAt,
		TotalWallets:      r.TotalWallets,
		ReconciledWallets: r.ReconciledWallets,
		Consistent:        r.Consistent(),
		Discrepancies:     discrepancies,
	}
}

// ProfileResponse represents the caller's profile.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileFromDomain converts a user to response.
func ProfileFromDomain(u *domain.User) *ProfileResponse {
	return &ProfileResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
