package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// Asset folders used by the image host.
const (
	WalletImageFolder      = "wallets"
	TransactionImageFolder = "transactions"
	UserImageFolder        = "users"
)

// WalletUseCase is the wallet ledger: the single owner of wallet aggregate
// arithmetic. Callers never compute amount, total income or total expenses
// themselves.
type WalletUseCase struct {
	txManager        TransactionManager
	walletRepo       WalletRepository
	transactionRepo  TransactionRepository
	idGen            IDGenerator
	uploader         AssetUploader
	retrier          Retrier
	cache            SummaryCache
	observer         Observer
	cascadeBatchSize int
}

// WalletUseCaseConfig holds dependencies for WalletUseCase.
type WalletUseCaseConfig struct {
	TxManager        TransactionManager
	WalletRepo       WalletRepository
	TransactionRepo  TransactionRepository
	IDGen            IDGenerator
	Uploader         AssetUploader
	Retrier          Retrier      // optional, no retries when nil
	Cache            SummaryCache // optional
	Observer         Observer     // optional
	CascadeBatchSize int
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(cfg WalletUseCaseConfig) *WalletUseCase {
	if cfg.Retrier == nil {
		cfg.Retrier = noRetry{}
	}
	if cfg.Cache == nil {
		cfg.Cache = nopCache{}
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if cfg.CascadeBatchSize <= 0 {
		cfg.CascadeBatchSize = DefaultCascadeBatchSize
	}

	return &WalletUseCase{
		txManager:        cfg.TxManager,
		walletRepo:       cfg.WalletRepo,
		transactionRepo:  cfg.TransactionRepo,
		idGen:            cfg.IDGen,
		uploader:         cfg.Uploader,
		retrier:          cfg.Retrier,
		cache:            cfg.Cache,
		observer:         cfg.Observer,
		cascadeBatchSize: cfg.CascadeBatchSize,
	}
}

// SaveWalletInput is a wallet patch. An empty ID creates a wallet; nil fields
// are left untouched on update.
type SaveWalletInput struct {
	Name  *string
	Image *string
	ID    string
}

// SaveWallet creates a wallet or merges the supplied fields into an existing one.
func (uc *WalletUseCase) SaveWallet(ctx context.Context, userID string, input SaveWalletInput) (*domain.Wallet, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUserIDRequired
	}

	var (
		wallet *domain.Wallet
		err    error
	)
	if input.ID == "" {
		wallet, err = uc.createWallet(ctx, userID, input)
	} else {
		wallet, err = uc.updateWallet(ctx, userID, input)
	}
	if err != nil {
		uc.observer.OperationFailed("save_wallet", err)
		return nil, err
	}

	uc.invalidate(ctx, userID)

	return wallet, nil
}

func (uc *WalletUseCase) createWallet(ctx context.Context, userID string, input SaveWalletInput) (*domain.Wallet, error) {
	var name string
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
	}
	if err := domain.ValidateWalletName(name); err != nil {
		return nil, err
	}

	var image string
	if input.Image != nil {
		resolved, err := resolveImage(ctx, uc.uploader, *input.Image, WalletImageFolder)
		if err != nil {
			return nil, err
		}
		image = resolved
	}

	wallet := domain.NewWallet(uc.idGen.Generate(), userID, name, time.Now().UTC())
	wallet.Image = image

	if err := uc.walletRepo.Create(ctx, wallet); err != nil {
		return nil, domain.Upstream(err)
	}

	zerolog.Ctx(ctx).Info().Str("wallet_id", wallet.ID).Msg("wallet created")

	return wallet, nil
}

func (uc *WalletUseCase) updateWallet(ctx context.Context, userID string, input SaveWalletInput) (*domain.Wallet, error) {
	wallet, err := uc.getOwned(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := domain.ValidateWalletName(name); err != nil {
			return nil, err
		}
		wallet.Name = name
	}

	if input.Image != nil {
		resolved, err := resolveImage(ctx, uc.uploader, *input.Image, WalletImageFolder)
		if err != nil {
			return nil, err
		}
		wallet.Image = resolved
	}

	wallet.UpdatedAt = time.Now().UTC()
	if err := uc.walletRepo.UpdateDetails(ctx, wallet.ID, wallet.Name, wallet.Image, wallet.UpdatedAt); err != nil {
		return nil, domain.Upstream(err)
	}

	return wallet, nil
}

// GetWallet retrieves a wallet owned by userID.
func (uc *WalletUseCase) GetWallet(ctx context.Context, userID, id string) (*domain.Wallet, error) {
	return uc.getOwned(ctx, userID, id)
}

// ListWallets lists the user's wallets, newest first.
func (uc *WalletUseCase) ListWallets(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUserIDRequired
	}

	wallets, err := uc.walletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.Upstream(err)
	}

	return wallets, nil
}

// Summary returns the user's wallets together with their combined totals.
func (uc *WalletUseCase) Summary(ctx context.Context, userID string) (*domain.WalletSummary, error) {
	logger := zerolog.Ctx(ctx)

	if cached, ok, err := uc.cache.GetSummary(ctx, userID); err != nil {
		logger.Warn().Err(err).Msg("wallet summary cache read failed")
	} else if ok {
		return cached, nil
	}

	wallets, err := uc.ListWallets(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := domain.Summarize(wallets)
	if err := uc.cache.SetSummary(ctx, userID, summary); err != nil {
		logger.Warn().Err(err).Msg("wallet summary cache write failed")
	}

	return summary, nil
}

// DeleteWalletResult reports what a wallet deletion removed.
type DeleteWalletResult struct {
	WalletID            string
	TransactionsDeleted int64
}

// DeleteWallet deletes a wallet and then every transaction recorded against it.
// The cascade runs to completion before returning; on a cascade failure the
// partial result is returned together with the error.
func (uc *WalletUseCase) DeleteWallet(ctx context.Context, userID, walletID string) (*DeleteWalletResult, error) {
	if strings.TrimSpace(walletID) == "" {
		return nil, domain.ErrWalletIDRequired
	}

	err := uc.WithWalletLock(ctx, userID, []string{walletID}, func(ctx context.Context, tx Transaction, _ map[string]*domain.Wallet) error {
		return uc.walletRepo.Delete(ctx, tx, walletID)
	})
	if err != nil {
		uc.observer.OperationFailed("delete_wallet", err)
		return nil, err
	}

	uc.invalidate(ctx, userID)

	result := &DeleteWalletResult{WalletID: walletID}
	result.TransactionsDeleted, err = uc.deleteTransactionsByWallet(ctx, walletID)
	uc.observer.CascadeDeleted(result.TransactionsDeleted)
	if err != nil {
		err = fmt.Errorf("delete transactions of wallet %s: %w", walletID, domain.Upstream(err))
		uc.observer.OperationFailed("delete_wallet", err)
		return result, err
	}

	zerolog.Ctx(ctx).Info().
		Str("wallet_id", walletID).
		Int64("transactions_deleted", result.TransactionsDeleted).
		Msg("wallet deleted")

	return result, nil
}

// deleteTransactionsByWallet removes the wallet's transactions one bounded
// page at a time until none remain.
func (uc *WalletUseCase) deleteTransactionsByWallet(ctx context.Context, walletID string) (int64, error) {
	var total int64

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		ids, err := uc.transactionRepo.ListIDsByWallet(ctx, walletID, uc.cascadeBatchSize)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}

		deleted, err := uc.transactionRepo.DeleteByIDs(ctx, ids)
		if err != nil {
			return total, err
		}
		if deleted == 0 {
			return total, errors.New("cascade delete made no progress")
		}
		total += deleted

		zerolog.Ctx(ctx).Debug().
			Str("wallet_id", walletID).
			Int64("deleted", deleted).
			Msg("deleted transaction batch")
	}
}

// ApplyNewTransaction adds a new transaction's effect to a wallet. Expenses
// larger than the current balance fail with domain.ErrInsufficientBalance and
// leave the wallet untouched.
func (uc *WalletUseCase) ApplyNewTransaction(
	ctx context.Context,
	userID, walletID string,
	txType domain.TransactionType,
	amount decimal.Decimal,
) (*domain.Wallet, error) {
	if err := validateEffect(walletID, txType, amount); err != nil {
		return nil, err
	}

	var updated *domain.Wallet
	err := uc.WithWalletLock(ctx, userID, []string{walletID}, func(ctx context.Context, tx Transaction, wallets map[string]*domain.Wallet) error {
		w := wallets[walletID]
		if err := uc.apply(ctx, tx, w, txType, amount); err != nil {
			return err
		}
		updated = w
		return nil
	})
	if err != nil {
		uc.observer.OperationFailed("apply_transaction", err)
		return nil, err
	}

	uc.invalidate(ctx, userID)

	return updated, nil
}

// RevertTransaction removes a previously applied transaction's effect from
// its wallet.
func (uc *WalletUseCase) RevertTransaction(ctx context.Context, userID string, t *domain.Transaction) (*domain.Wallet, error) {
	if err := validateEffect(t.WalletID, t.Type, t.Amount); err != nil {
		return nil, err
	}

	var updated *domain.Wallet
	err := uc.WithWalletLock(ctx, userID, []string{t.WalletID}, func(ctx context.Context, tx Transaction, wallets map[string]*domain.Wallet) error {
		w := wallets[t.WalletID]
		if err := uc.revert(ctx, tx, w, t); err != nil {
			return err
		}
		updated = w
		return nil
	})
	if err != nil {
		uc.observer.OperationFailed("revert_transaction", err)
		return nil, err
	}

	uc.invalidate(ctx, userID)

	return updated, nil
}

// LockedFunc runs with exclusive access to the wallets it was given.
type LockedFunc func(ctx context.Context, tx Transaction, wallets map[string]*domain.Wallet) error

// WithWalletLock runs fn inside one store transaction holding row locks on
// every listed wallet. All wallets must exist and belong to userID. Locks are
// taken in sorted id order. An error from fn rolls back every write made
// through tx; transient store conflicts re-run the whole unit.
func (uc *WalletUseCase) WithWalletLock(ctx context.Context, userID string, walletIDs []string, fn LockedFunc) error {
	ids := uniqueSorted(walletIDs)
	if len(ids) == 0 {
		return domain.ErrWalletIDRequired
	}

	return uc.retrier.Retry(ctx, func() error {
		ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return domain.Upstream(err)
		}
		defer tx.Rollback(ctx)

		locked, err := uc.walletRepo.GetByIDsForUpdate(ctx, tx, ids)
		if err != nil {
			return domain.Upstream(err)
		}

		wallets := make(map[string]*domain.Wallet, len(locked))
		for _, w := range locked {
			if w.UserID != userID {
				continue
			}
			wallets[w.ID] = w
		}
		if len(wallets) != len(ids) {
			return domain.ErrWalletNotFound
		}

		if err := fn(ctx, tx, wallets); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return domain.Upstream(err)
		}

		return nil
	})
}

// apply adds a new transaction's effect to a locked wallet and persists it.
func (uc *WalletUseCase) apply(ctx context.Context, tx Transaction, w *domain.Wallet, txType domain.TransactionType, amount decimal.Decimal) error {
	if err := w.Apply(txType, amount); err != nil {
		return err
	}
	return uc.persistAggregates(ctx, tx, w)
}

// revert removes a transaction's effect from a locked wallet and persists it.
func (uc *WalletUseCase) revert(ctx context.Context, tx Transaction, w *domain.Wallet, t *domain.Transaction) error {
	if err := w.Revert(t.Type, t.Amount); err != nil {
		return err
	}
	return uc.persistAggregates(ctx, tx, w)
}

func (uc *WalletUseCase) persistAggregates(ctx context.Context, tx Transaction, w *domain.Wallet) error {
	w.UpdatedAt = time.Now().UTC()
	if err := uc.walletRepo.UpdateAggregates(ctx, tx, w); err != nil {
		return domain.Upstream(err)
	}
	return nil
}

func (uc *WalletUseCase) getOwned(ctx context.Context, userID, id string) (*domain.Wallet, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrWalletIDRequired
	}

	wallet, err := uc.walletRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Upstream(err)
	}
	if wallet.UserID != userID {
		return nil, domain.ErrWalletNotFound
	}

	return wallet, nil
}

func (uc *WalletUseCase) invalidate(ctx context.Context, userIDs ...string) {
	if err := uc.cache.Invalidate(ctx, userIDs...); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("wallet summary cache invalidation failed")
	}
}

func validateEffect(walletID string, txType domain.TransactionType, amount decimal.Decimal) error {
	if strings.TrimSpace(walletID) == "" {
		return domain.ErrWalletIDRequired
	}
	if !txType.IsValid() {
		return domain.ErrInvalidTransactionType
	}
	return domain.ValidateAmount(amount)
}

// resolveImage uploads ref unless it is empty or already hosted. Only inline
// data: URIs are uploaded; server-side paths never reach the uploader.
func resolveImage(ctx context.Context, uploader AssetUploader, ref, folder string) (string, error) {
	ref = strings.TrimSpace(ref)
	if err := domain.ValidateImageRef(ref); err != nil {
		return "", err
	}
	if ref == "" || domain.IsResolvedAsset(ref) {
		return ref, nil
	}
	if uploader == nil {
		return "", domain.Upstream(errors.New("image uploads are not configured"))
	}

	remote, err := uploader.Upload(ctx, ref, folder)
	if err != nil {
		return "", domain.Upstream(fmt.Errorf("upload image: %w", err))
	}

	return remote, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
