package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction relative to its wallet.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid reports whether t is one of the two known types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense:
		return true
	default:
		return false
	}
}

// ParseTransactionType parses a type name, case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidTransactionType
	}
	return t, nil
}

// Transaction is a single income or expense event recorded against one wallet.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string
	UserID      string
	WalletID    string
	Type        TransactionType
	Category    string
	Description string
	Image       string
	Amount      decimal.Decimal
}

// Validate checks the fields the ledger depends on.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.WalletID) == "" {
		return ErrWalletIDRequired
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	if t.Type == TransactionTypeExpense && strings.TrimSpace(t.Category) == "" {
		return ErrCategoryRequired
	}
	return nil
}

// Reclassifies reports whether replacing t with next changes the wallet
// aggregates, i.e. the type, amount or owning wallet differ.
func (t *Transaction) Reclassifies(next *Transaction) bool {
	return t.Type != next.Type ||
		!t.Amount.Equal(next.Amount) ||
		t.WalletID != next.WalletID
}
