package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// ReconciliationUseCase checks cached wallet aggregates against the
// transactions recorded for each wallet. It never writes.
type ReconciliationUseCase struct {
	walletRepo      WalletRepository
	transactionRepo TransactionRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(walletRepo WalletRepository, transactionRepo TransactionRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	LastChecked        time.Time
	WalletID           string
	RecordedAmount     decimal.Decimal
	RecordedIncome     decimal.Decimal
	RecordedExpenses   decimal.Decimal
	CalculatedAmount   decimal.Decimal
	CalculatedIncome   decimal.Decimal
	CalculatedExpenses decimal.Decimal
	Difference         decimal.Decimal
	IsReconciled       bool
}

// ReconcileWallet recomputes a wallet's aggregates from its transactions.
func (uc *ReconciliationUseCase) ReconcileWallet(ctx context.Context, userID, walletID string) (*ReconciliationResult, error) {
	if walletID == "" {
		return nil, domain.ErrWalletIDRequired
	}

	wallet, err := uc.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, domain.Upstream(err)
	}
	if wallet.UserID != userID {
		return nil, domain.ErrWalletNotFound
	}

	return uc.reconcile(ctx, wallet)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, wallet *domain.Wallet) (*ReconciliationResult, error) {
	income, expenses, err := uc.transactionRepo.SumByWallet(ctx, wallet.ID)
	if err != nil {
		return nil, domain.Upstream(err)
	}

	calculated := income.Sub(expenses)

	return &ReconciliationResult{
		WalletID:           wallet.ID,
		RecordedAmount:     wallet.Amount,
		RecordedIncome:     wallet.TotalIncome,
		RecordedExpenses:   wallet.TotalExpenses,
		CalculatedAmount:   calculated,
		CalculatedIncome:   income,
		CalculatedExpenses: expenses,
		Difference:         wallet.Amount.Sub(calculated),
		IsReconciled: wallet.IsBalanced() &&
			wallet.TotalIncome.Equal(income) &&
			wallet.TotalExpenses.Equal(expenses),
		LastChecked: time.Now().UTC(),
	}, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	CheckedAt         time.Time
	UserID            string
	Discrepancies     []*ReconciliationResult
	TotalWallets      int
	ReconciledWallets int
}

// Consistent reports whether every wallet reconciled.
func (r *ReconciliationReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// GenerateReport reconciles every wallet owned by userID.
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context, userID string) (*ReconciliationReport, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}

	wallets, err := uc.walletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.Upstream(err)
	}

	report := &ReconciliationReport{
		UserID:        userID,
		TotalWallets:  len(wallets),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, wallet := range wallets {
		result, err := uc.reconcile(ctx, wallet)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile wallet %s: %w", wallet.ID, err)
		}
		if result.IsReconciled {
			report.ReconciledWallets++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
