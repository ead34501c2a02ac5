package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// SaveWalletRequest creates or patches a wallet.
type SaveWalletRequest struct {
	Name  *string `json:"name,omitempty"`
	Image *string `json:"image,omitempty"`
}

// ToUseCaseInput converts to use case input. An empty id creates a wallet.
func (r *SaveWalletRequest) ToUseCaseInput(id string) usecase.SaveWalletInput {
	return usecase.SaveWalletInput{
		ID:    id,
		Name:  r.Name,
		Image: r.Image,
	}
}

// SaveTransactionRequest creates or patches a transaction. Amounts are
// decimal strings.
type SaveTransactionRequest struct {
	WalletID    *string    `json:"wallet_id,omitempty"`
	Type        *string    `json:"type,omitempty"`
	Amount      *string    `json:"amount,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Description *string    `json:"description,omitempty"`
	Image       *string    `json:"image,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

// ToUseCaseInput builds the input for a new transaction.
func (r *SaveTransactionRequest) ToUseCaseInput() (usecase.SaveTransactionInput, error) {
	return r.MergeInto(nil)
}

// MergeInto builds the input for saving existing, with the request's fields
// taking precedence. A nil existing means a new transaction.
func (r *SaveTransactionRequest) MergeInto(existing *domain.Transaction) (usecase.SaveTransactionInput, error) {
	input := usecase.SaveTransactionInput{
		Category:    r.Category,
		Description: r.Description,
		Image:       r.Image,
		Date:        r.Date,
	}
	if existing != nil {
		input.ID = existing.ID
		input.WalletID = existing.WalletID
		input.Type = existing.Type
		input.Amount = existing.Amount
	}

	if r.WalletID != nil {
		input.WalletID = *r.WalletID
	}

	if r.Type != nil {
		txType, err := domain.ParseTransactionType(*r.Type)
		if err != nil {
			return usecase.SaveTransactionInput{}, err
		}
		input.Type = txType
	}

	if r.Amount != nil {
		amount, err := decimal.NewFromString(strings.TrimSpace(*r.Amount))
		if err != nil {
			return usecase.SaveTransactionInput{}, fmt.Errorf("%w: invalid amount %q", domain.ErrValidation, *r.Amount)
		}
		input.Amount = amount
	}

	return input, nil
}

// UpdateProfileRequest patches the caller's profile.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Image *string `json:"image,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateProfileRequest) ToUseCaseInput() usecase.UpdateProfileInput {
	return usecase.UpdateProfileInput{
		Name:  r.Name,
		Email: r.Email,
		Image: r.Image,
	}
}
