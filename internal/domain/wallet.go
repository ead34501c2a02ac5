package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is a named balance bucket with cached lifetime income and expense
// aggregates. Amount, TotalIncome and TotalExpenses are only changed through
// Apply and Revert.
type Wallet struct {
	Created       time.Time
	UpdatedAt     time.Time
	ID            string
	UserID        string
	Name          string
	Image         string
	Amount        decimal.Decimal
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Version       int64
}

// NewWallet returns an empty wallet owned by userID.
func NewWallet(id, userID, name string, now time.Time) *Wallet {
	return &Wallet{
		ID:            id,
		UserID:        userID,
		Name:          name,
		Amount:        decimal.Zero,
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		Created:       now,
		UpdatedAt:     now,
	}
}

// CanSpend checks that an expense of amount leaves the balance non-negative.
func (w *Wallet) CanSpend(amount decimal.Decimal) error {
	if amount.GreaterThan(w.Amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// Apply adds the effect of a new transaction to the wallet. Expenses that
// exceed the current balance are rejected without mutating anything.
func (w *Wallet) Apply(t TransactionType, amount decimal.Decimal) error {
	switch t {
	case TransactionTypeIncome:
		w.Amount = w.Amount.Add(amount)
		w.TotalIncome = w.TotalIncome.Add(amount)
	case TransactionTypeExpense:
		if err := w.CanSpend(amount); err != nil {
			return err
		}
		w.Amount = w.Amount.Sub(amount)
		w.TotalExpenses = w.TotalExpenses.Add(amount)
	default:
		return ErrInvalidTransactionType
	}
	w.Version++
	return nil
}

// Revert removes the effect of a previously applied transaction.
func (w *Wallet) Revert(t TransactionType, amount decimal.Decimal) error {
	switch t {
	case TransactionTypeIncome:
		w.Amount = w.Amount.Sub(amount)
		w.TotalIncome = w.TotalIncome.Sub(amount)
	case TransactionTypeExpense:
		w.Amount = w.Amount.Add(amount)
		w.TotalExpenses = w.TotalExpenses.Sub(amount)
	default:
		return ErrInvalidTransactionType
	}
	w.Version++
	return nil
}

// IsBalanced reports whether Amount equals TotalIncome minus TotalExpenses.
func (w *Wallet) IsBalanced() bool {
	return w.Amount.Equal(w.TotalIncome.Sub(w.TotalExpenses))
}

// WalletSummary aggregates a user's wallets for overview screens.
type WalletSummary struct {
	Wallets       []*Wallet
	TotalBalance  decimal.Decimal
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
}

// Summarize totals the given wallets.
func Summarize(wallets []*Wallet) *WalletSummary {
	s := &WalletSummary{
		Wallets:       wallets,
		TotalBalance:  decimal.Zero,
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, w := range wallets {
		s.TotalBalance = s.TotalBalance.Add(w.Amount)
		s.TotalIncome = s.TotalIncome.Add(w.TotalIncome)
		s.TotalExpenses = s.TotalExpenses.Add(w.TotalExpenses)
	}
	return s
}
