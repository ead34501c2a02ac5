package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
	"github.com/iho/walletledger/internal/usecase/mocks"
)

const (
	testUser     = "user-1"
	testImageURI = "data:image/png;base64,iVBORw0KGgo="
)

type ledgerFixture struct {
	wallets      *mocks.MockWalletRepository
	transactions *mocks.MockTransactionRepository
	txMgr        *mocks.MockTransactionManager
	idGen        *mocks.MockIDGenerator
	observer     *mocks.MockObserver
	ledger       *usecase.WalletUseCase
	recorder     *usecase.TransactionUseCase
}

type fixtureOption func(*usecase.WalletUseCaseConfig)

func withUploader(u usecase.AssetUploader) fixtureOption {
	return func(cfg *usecase.WalletUseCaseConfig) { cfg.Uploader = u }
}

func withCache(c usecase.SummaryCache) fixtureOption {
	return func(cfg *usecase.WalletUseCaseConfig) { cfg.Cache = c }
}

func withBatchSize(n int) fixtureOption {
	return func(cfg *usecase.WalletUseCaseConfig) { cfg.CascadeBatchSize = n }
}

func newLedgerFixture(opts ...fixtureOption) *ledgerFixture {
	f := &ledgerFixture{
		wallets:      mocks.NewMockWalletRepository(),
		transactions: mocks.NewMockTransactionRepository(),
		idGen:        mocks.NewMockIDGenerator(),
		observer:     &mocks.MockObserver{},
	}
	f.txMgr = mocks.NewMockTransactionManager(f.wallets, f.transactions)

	cfg := usecase.WalletUseCaseConfig{
		TxManager:       f.txMgr,
		WalletRepo:      f.wallets,
		TransactionRepo: f.transactions,
		IDGen:           f.idGen,
		Observer:        f.observer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	f.ledger = usecase.NewWalletUseCase(cfg)
	f.recorder = usecase.NewTransactionUseCase(f.ledger, f.transactions, f.idGen, cfg.Uploader)
	return f
}

// seedWallet stores a wallet with the given aggregates.
func (f *ledgerFixture) seedWallet(id, amount, income, expenses string) {
	f.wallets.Put(&domain.Wallet{
		ID:            id,
		UserID:        testUser,
		Name:          "wallet " + id,
		Amount:        decimal.RequireFromString(amount),
		TotalIncome:   decimal.RequireFromString(income),
		TotalExpenses: decimal.RequireFromString(expenses),
		Created:       time.Now().UTC(),
	})
}

func (f *ledgerFixture) wallet(t *testing.T, id string) *domain.Wallet {
	t.Helper()
	w, err := f.wallets.GetByID(context.Background(), id)
	require.NoError(t, err)
	return w
}

func (f *ledgerFixture) record(t *testing.T, walletID string, txType domain.TransactionType, amount string) *domain.Transaction {
	t.Helper()
	category := "general"
	saved, err := f.recorder.SaveTransaction(context.Background(), testUser, usecase.SaveTransactionInput{
		WalletID: walletID,
		Type:     txType,
		Amount:   decimal.RequireFromString(amount),
		Category: &category,
	})
	require.NoError(t, err)
	return saved
}

// assertWallet checks amount, total income and total expenses.
func assertWallet(t *testing.T, w *domain.Wallet, amount, income, expenses string) {
	t.Helper()
	require.Truef(t, w.Amount.Equal(decimal.RequireFromString(amount)), "amount: want %s, got %s", amount, w.Amount)
	require.Truef(t, w.TotalIncome.Equal(decimal.RequireFromString(income)), "totalIncome: want %s, got %s", income, w.TotalIncome)
	require.Truef(t, w.TotalExpenses.Equal(decimal.RequireFromString(expenses)), "totalExpenses: want %s, got %s", expenses, w.TotalExpenses)
}

// assertAggregatesMatch checks that each wallet's totals equal the sums of
// its stored transactions.
func (f *ledgerFixture) assertAggregatesMatch(t *testing.T, walletIDs ...string) {
	t.Helper()
	for _, id := range walletIDs {
		w := f.wallet(t, id)
		income, expenses, err := f.transactions.SumByWallet(context.Background(), id)
		require.NoError(t, err)
		require.Truef(t, w.TotalIncome.Equal(income), "wallet %s income %s, transactions sum %s", id, w.TotalIncome, income)
		require.Truef(t, w.TotalExpenses.Equal(expenses), "wallet %s expenses %s, transactions sum %s", id, w.TotalExpenses, expenses)
	}
}

func strPtr(s string) *string { return &s }
