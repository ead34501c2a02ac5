package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by a use case wraps exactly one of them.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientBalance = errors.New("selected wallet doesn't have enough balance")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrUpstream            = errors.New("upstream failure")
)

var (
	// Wallet errors
	ErrWalletNotFound   = fmt.Errorf("wallet %w", ErrNotFound)
	ErrWalletIDRequired = fmt.Errorf("%w: wallet id is required", ErrValidation)

	// Transaction errors
	ErrTransactionNotFound     = fmt.Errorf("transaction %w", ErrNotFound)
	ErrTransactionIDRequired   = fmt.Errorf("%w: transaction id is required", ErrValidation)
	ErrInvalidAmount           = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidTransactionType  = fmt.Errorf("%w: type must be income or expense", ErrValidation)
	ErrCategoryRequired        = fmt.Errorf("%w: category is required for expenses", ErrValidation)
	ErrWalletMismatch          = fmt.Errorf("%w: transaction does not belong to wallet", ErrInvalidOperation)
	ErrCannotDeleteTransaction = fmt.Errorf("%w: cannot delete: would leave wallet unbalanced", ErrInvalidOperation)
	ErrConcurrentModification  = fmt.Errorf("%w: transaction was modified concurrently", ErrInvalidOperation)

	// User errors
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrUserIDRequired = fmt.Errorf("%w: user id is required", ErrValidation)
)

// ErrorKind names an error category for transport mapping and metrics.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindValidation          ErrorKind = "validation"
	KindNotFound            ErrorKind = "not_found"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindInvalidOperation    ErrorKind = "invalid_operation"
	KindUpstream            ErrorKind = "upstream"
)

// KindOf classifies err. Unclassified errors are reported as upstream failures.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientBalance):
		return KindInsufficientBalance
	case errors.Is(err, ErrInvalidOperation):
		return KindInvalidOperation
	default:
		return KindUpstream
	}
}

// Upstream marks err as a store or asset-upload failure, keeping the
// underlying message. Errors that already carry a category are returned as is.
func Upstream(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUpstream) || KindOf(err) != KindUpstream {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}
