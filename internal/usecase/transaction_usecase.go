package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// TransactionUseCase records transactions and keeps wallet aggregates in step
// with them. Every aggregate change goes through the wallet ledger.
type TransactionUseCase struct {
	ledger          *WalletUseCase
	transactionRepo TransactionRepository
	idGen           IDGenerator
	uploader        AssetUploader
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	ledger *WalletUseCase,
	transactionRepo TransactionRepository,
	idGen IDGenerator,
	uploader AssetUploader,
) *TransactionUseCase {
	return &TransactionUseCase{
		ledger:          ledger,
		transactionRepo: transactionRepo,
		idGen:           idGen,
		uploader:        uploader,
	}
}

// SaveTransactionInput is a transaction patch. WalletID, Type and Amount are
// always required; nil optional fields keep their stored values on update.
type SaveTransactionInput struct {
	Date        *time.Time
	Category    *string
	Description *string
	Image       *string
	ID          string
	WalletID    string
	Type        domain.TransactionType
	Amount      decimal.Decimal
}

// SaveTransaction creates a transaction, or updates one when input.ID is set.
// An update that changes type, amount or wallet reverts the stored
// transaction and applies the new one in the same unit of work.
func (uc *TransactionUseCase) SaveTransaction(ctx context.Context, userID string, input SaveTransactionInput) (*domain.Transaction, error) {
	operation := "create"
	if input.ID != "" {
		operation = "update"
	}

	t, err := uc.save(ctx, userID, input)
	if err != nil {
		uc.ledger.observer.OperationFailed(operation+"_transaction", err)
		return nil, err
	}

	uc.ledger.observer.TransactionRecorded(operation, t.Type)
	uc.ledger.invalidate(ctx, userID)

	return t, nil
}

func (uc *TransactionUseCase) save(ctx context.Context, userID string, input SaveTransactionInput) (*domain.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUserIDRequired
	}

	input.WalletID = strings.TrimSpace(input.WalletID)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var stored *domain.Transaction
	if input.ID != "" {
		var err error
		stored, err = uc.getOwned(ctx, userID, input.ID)
		if err != nil {
			return nil, err
		}
		merged := *stored
		mergeInput(&merged, input)
		if err := merged.Validate(); err != nil {
			return nil, err
		}
	}

	if input.Image != nil {
		resolved, err := resolveImage(ctx, uc.uploader, *input.Image, TransactionImageFolder)
		if err != nil {
			return nil, err
		}
		input.Image = &resolved
	}

	if stored == nil {
		return uc.create(ctx, userID, input)
	}

	return uc.update(ctx, userID, stored, input)
}

func (uc *TransactionUseCase) create(ctx context.Context, userID string, input SaveTransactionInput) (*domain.Transaction, error) {
	now := time.Now().UTC()

	t := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		Date:      now,
	}
	mergeInput(t, input)

	err := uc.ledger.WithWalletLock(ctx, userID, []string{t.WalletID}, func(ctx context.Context, tx Transaction, wallets map[string]*domain.Wallet) error {
		if err := uc.ledger.apply(ctx, tx, wallets[t.WalletID], t.Type, t.Amount); err != nil {
			return err
		}
		return domain.Upstream(uc.transactionRepo.Create(ctx, tx, t))
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("transaction_id", t.ID).
		Str("wallet_id", t.WalletID).
		Str("type", string(t.Type)).
		Msg("transaction created")

	return t, nil
}

func (uc *TransactionUseCase) update(ctx context.Context, userID string, stored *domain.Transaction, input SaveTransactionInput) (*domain.Transaction, error) {
	var saved *domain.Transaction
	lockIDs := []string{stored.WalletID, input.WalletID}

	err := uc.ledger.WithWalletLock(ctx, userID, lockIDs, func(ctx context.Context, tx Transaction, wallets map[string]*domain.Wallet) error {
		old, err := uc.transactionRepo.GetByIDForUpdate(ctx, tx, input.ID)
		if err != nil {
			return domain.Upstream(err)
		}
		if _, ok := wallets[old.WalletID]; !ok {
			return domain.ErrConcurrentModification
		}

		next := *old
		next.UpdatedAt = time.Now().UTC()
		mergeInput(&next, input)
		if err := next.Validate(); err != nil {
			return err
		}

		if old.Reclassifies(&next) {
			// Same-wallet edits see the reverted balance because both sides share
			// the locked wallet value.
			if err := uc.ledger.revert(ctx, tx, wallets[old.WalletID], old); err != nil {
				return err
			}
			if err := uc.ledger.apply(ctx, tx, wallets[next.WalletID], next.Type, next.Amount); err != nil {
				return err
			}
		}

		if err := uc.transactionRepo.Update(ctx, tx, &next); err != nil {
			return domain.Upstream(err)
		}

		saved = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("transaction_id", saved.ID).
		Str("wallet_id", saved.WalletID).
		Msg("transaction updated")

	return saved, nil
}

// DeleteTransaction deletes a transaction and removes its effect from the
// wallet in one unit of work. walletID is optional; when given it must match
// the stored wallet. Deleting an expense whose reversal would leave the
// wallet negative fails with domain.ErrCannotDeleteTransaction.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, userID, transactionID, walletID string) error {
	t, err := uc.delete(ctx, userID, transactionID, walletID)
	if err != nil {
		uc.ledger.observer.OperationFailed("delete_transaction", err)
		return err
	}

	uc.ledger.observer.TransactionRecorded("delete", t.Type)
	uc.ledger.invalidate(ctx, userID)

	return nil
}

func (uc *TransactionUseCase) delete(ctx context.Context, userID, transactionID, walletID string) (*domain.Transaction, error) {
	stored, err := uc.getOwned(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	walletID = strings.TrimSpace(walletID)
	if walletID != "" && walletID != stored.WalletID {
		return nil, domain.ErrWalletMismatch
	}

	var deleted *domain.Transaction
	err = uc.ledger.WithWalletLock(ctx, userID, []string{stored.WalletID}, func(ctx context.Context, tx Transaction, wallets map[string]*domain.Wallet) error {
		t, err := uc.transactionRepo.GetByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			return domain.Upstream(err)
		}

		w, ok := wallets[t.WalletID]
		if !ok {
			return domain.ErrConcurrentModification
		}

		probe := *w
		if err := probe.Revert(t.Type, t.Amount); err != nil {
			return err
		}
		if t.Type == domain.TransactionTypeExpense && probe.Amount.IsNegative() {
			return domain.ErrCannotDeleteTransaction
		}

		if err := uc.ledger.revert(ctx, tx, w, t); err != nil {
			return err
		}
		if err := uc.transactionRepo.Delete(ctx, tx, t.ID); err != nil {
			return domain.Upstream(err)
		}

		deleted = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("transaction_id", deleted.ID).
		Str("wallet_id", deleted.WalletID).
		Msg("transaction deleted")

	return deleted, nil
}

// GetTransaction retrieves a transaction owned by userID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	return uc.getOwned(ctx, userID, id)
}

// ListTransactions lists the user's transactions, most recent date first.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUserIDRequired
	}

	limit, offset = domain.ValidatePagination(limit, offset, DefaultTransactionPageSize, MaxTransactionPageSize)

	transactions, err := uc.transactionRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, domain.Upstream(err)
	}

	return transactions, nil
}

// ListWalletTransactions lists transactions of one of the user's wallets.
func (uc *TransactionUseCase) ListWalletTransactions(ctx context.Context, userID, walletID string, limit, offset int) ([]*domain.Transaction, error) {
	if _, err := uc.ledger.GetWallet(ctx, userID, walletID); err != nil {
		return nil, err
	}

	limit, offset = domain.ValidatePagination(limit, offset, DefaultTransactionPageSize, MaxTransactionPageSize)

	transactions, err := uc.transactionRepo.ListByWallet(ctx, walletID, limit, offset)
	if err != nil {
		return nil, domain.Upstream(err)
	}

	return transactions, nil
}

func (uc *TransactionUseCase) getOwned(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUserIDRequired
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrTransactionIDRequired
	}

	t, err := uc.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Upstream(err)
	}
	if t.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}

	return t, nil
}

// validateInput rejects malformed patches before any store access. The
// category rule is checked here only when the patch supplies a category;
// otherwise it is checked against the merged record.
func validateInput(input SaveTransactionInput) error {
	if err := validateEffect(input.WalletID, input.Type, input.Amount); err != nil {
		return err
	}

	if input.Category != nil {
		if err := domain.ValidateCategory(*input.Category); err != nil {
			return err
		}
	}
	if input.Type == domain.TransactionTypeExpense {
		missing := input.Category == nil || strings.TrimSpace(*input.Category) == ""
		if missing && (input.ID == "" || input.Category != nil) {
			return domain.ErrCategoryRequired
		}
	}

	if input.Description != nil {
		if err := domain.ValidateDescription(*input.Description); err != nil {
			return err
		}
	}

	return nil
}

// mergeInput copies the supplied fields of input onto t.
func mergeInput(t *domain.Transaction, input SaveTransactionInput) {
	t.WalletID = input.WalletID
	t.Type = input.Type
	t.Amount = input.Amount

	if input.Category != nil {
		t.Category = strings.TrimSpace(*input.Category)
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Image != nil {
		t.Image = *input.Image
	}
	if input.Date != nil && !input.Date.IsZero() {
		t.Date = input.Date.UTC()
	}
}
