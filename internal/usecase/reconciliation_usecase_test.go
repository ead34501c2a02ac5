package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

func TestReconciliationUseCase_ReconcileWallet(t *testing.T) {
	f := newLedgerFixture()
	f.seedWallet("w1", "0", "0", "0")
	f.record(t, "w1", domain.TransactionTypeIncome, "80")
	f.record(t, "w1", domain.TransactionTypeExpense, "30")

	uc := usecase.NewReconciliationUseCase(f.wallets, f.transactions)

	result, err := uc.ReconcileWallet(context.Background(), testUser, "w1")

	require.NoError(t, err)
	assert.True(t, result.IsReconciled)
	assert.True(t, result.CalculatedAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.Difference.IsZero())
}

func TestReconciliationUseCase_DetectsDrift(t *testing.T) {
	f := newLedgerFixture()
	f.seedWallet("w1", "0", "0", "0")
	f.record(t, "w1", domain.TransactionTypeIncome, "80")

	// Aggregates edited outside the ledger.
	w := f.wallet(t, "w1")
	w.Amount = decimal.NewFromInt(95)
	f.wallets.Put(w)

	uc := usecase.NewReconciliationUseCase(f.wallets, f.transactions)

	result, err := uc.ReconcileWallet(context.Background(), testUser, "w1")

	require.NoError(t, err)
	assert.False(t, result.IsReconciled)
	assert.True(t, result.Difference.Equal(decimal.NewFromInt(15)))
	assertWallet(t, f.wallet(t, "w1"), "95", "80", "0")
}

func TestReconciliationUseCase_ReconcileWalletErrors(t *testing.T) {
	f := newLedgerFixture()
	f.seedWallet("w1", "0", "0", "0")
	uc := usecase.NewReconciliationUseCase(f.wallets, f.transactions)

	_, err := uc.ReconcileWallet(context.Background(), testUser, "")
	require.ErrorIs(t, err, domain.ErrWalletIDRequired)

	_, err = uc.ReconcileWallet(context.Background(), "intruder", "w1")
	require.ErrorIs(t, err, domain.ErrWalletNotFound)

	f.transactions.SumByWalletFunc = func(ctx context.Context, walletID string) (decimal.Decimal, decimal.Decimal, error) {
		return decimal.Zero, decimal.Zero, errors.New("statement timeout")
	}
	_, err = uc.ReconcileWallet(context.Background(), testUser, "w1")
	require.ErrorIs(t, err, domain.ErrUpstream)
}

func TestReconciliationUseCase_GenerateReport(t *testing.T) {
	f := newLedgerFixture()
	f.seedWallet("w1", "0", "0", "0")
	f.seedWallet("w2", "0", "0", "0")
	f.record(t, "w1", domain.TransactionTypeIncome, "10")
	f.record(t, "w2", domain.TransactionTypeIncome, "10")

	w := f.wallet(t, "w2")
	w.TotalIncome = decimal.NewFromInt(12)
	f.wallets.Put(w)

	uc := usecase.NewReconciliationUseCase(f.wallets, f.transactions)

	report, err := uc.GenerateReport(context.Background(), testUser)

	require.NoError(t, err)
	assert.Equal(t, testUser, report.UserID)
	assert.Equal(t, 2, report.TotalWallets)
	assert.Equal(t, 1, report.ReconciledWallets)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, "w2", report.Discrepancies[0].WalletID)
	assert.False(t, report.Consistent())

	_, err = uc.GenerateReport(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrUserIDRequired)
}
