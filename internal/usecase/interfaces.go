package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Wallet, error)
	// UpdateDetails writes name and image only; the aggregates are untouched.
	UpdateDetails(ctx context.Context, id, name, image string, updatedAt time.Time) error
	UpdateAggregates(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Wallet, error)
}

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Transaction, t *domain.Transaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	// ListIDsByWallet returns at most limit transaction ids for a wallet.
	ListIDsByWallet(ctx context.Context, walletID string, limit int) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error)
	SumByWallet(ctx context.Context, walletID string) (income, expenses decimal.Decimal, err error)
}

// UserRepository defines data access for user profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient store errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// AssetUploader stores a local file with the image host and returns its
// remote reference.
type AssetUploader interface {
	Upload(ctx context.Context, localRef, folder string) (string, error)
}

// SummaryCache caches per-user wallet summaries.
type SummaryCache interface {
	GetSummary(ctx context.Context, userID string) (*domain.WalletSummary, bool, error)
	SetSummary(ctx context.Context, userID string, summary *domain.WalletSummary) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// Observer receives ledger events, typically for metrics.
type Observer interface {
	TransactionRecorded(operation string, txType domain.TransactionType)
	OperationFailed(operation string, err error)
	CascadeDeleted(count int64)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a pending key so the request can be retried.
	Release(ctx context.Context, key string) error
}

type nopObserver struct{}

func (nopObserver) TransactionRecorded(string, domain.TransactionType) {}
func (nopObserver) OperationFailed(string, error)                      {}
func (nopObserver) CascadeDeleted(int64)                               {}

type nopCache struct{}

func (nopCache) GetSummary(context.Context, string) (*domain.WalletSummary, bool, error) {
	return nil, false, nil
}
func (nopCache) SetSummary(context.Context, string, *domain.WalletSummary) error { return nil }
func (nopCache) Invalidate(context.Context, ...string) error                     { return nil }

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error { return operation() }
