package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// Snapshotter is an in-memory repository whose state can be restored when a
// mock transaction rolls back.
type Snapshotter interface {
	Snapshot() (restore func())
}

// MockWalletRepository is an in-memory implementation of WalletRepository.
// It stores copies, so callers only change state through its methods.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]domain.Wallet

	CreateFunc            func(ctx context.Context, wallet *domain.Wallet) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error)
	UpdateDetailsFunc     func(ctx context.Context, id, name, image string, updatedAt time.Time) error
	UpdateAggregatesFunc  func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error
	DeleteFunc            func(ctx context.Context, tx usecase.Transaction, id string) error
	ListByUserFunc        func(ctx context.Context, userID string) ([]*domain.Wallet, error)
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]domain.Wallet),
	}
}

// Put stores a copy of wallet, replacing any wallet with the same id.
func (m *MockWalletRepository) Put(wallet *domain.Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.ID] = *wallet
}

// Snapshot implements Snapshotter.
func (m *MockWalletRepository) Snapshot() func() {
	m.mu.RLock()
	saved := make(map[string]domain.Wallet, len(m.wallets))
	for id, w := range m.wallets {
		saved[id] = w
	}
	m.mu.RUnlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.wallets = saved
	}
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, wallet)
	}
	m.Put(wallet)
	return nil
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wallets[id]; ok {
		return &w, nil
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var wallets []*domain.Wallet
	for _, id := range ids {
		if w, ok := m.wallets[id]; ok {
			wallets = append(wallets, &w)
		}
	}
	return wallets, nil
}

func (m *MockWalletRepository) UpdateDetails(ctx context.Context, id, name, image string, updatedAt time.Time) error {
	if m.UpdateDetailsFunc != nil {
		return m.UpdateDetailsFunc(ctx, id, name, image, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[id]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w.Name = name
	w.Image = image
	w.UpdatedAt = updatedAt
	m.wallets[id] = w
	return nil
}

func (m *MockWalletRepository) UpdateAggregates(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if m.UpdateAggregatesFunc != nil {
		return m.UpdateAggregatesFunc(ctx, tx, wallet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[wallet.ID]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w.Amount = wallet.Amount
	w.TotalIncome = wallet.TotalIncome
	w.TotalExpenses = wallet.TotalExpenses
	w.Version = wallet.Version
	w.UpdatedAt = wallet.UpdatedAt
	m.wallets[wallet.ID] = w
	return nil
}

func (m *MockWalletRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wallets[id]; !ok {
		return domain.ErrWalletNotFound
	}
	delete(m.wallets, id)
	return nil
}

func (m *MockWalletRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wallets := make([]*domain.Wallet, 0)
	for _, w := range m.wallets {
		if w.UserID == userID {
			wallets = append(wallets, &w)
		}
	}
	sort.Slice(wallets, func(i, j int) bool {
		return wallets[i].Created.After(wallets[j].Created)
	})
	return wallets, nil
}

// MockTransactionRepository is an in-memory implementation of
// TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]domain.Transaction

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
	ListIDsByWalletFunc  func(ctx context.Context, walletID string, limit int) ([]string, error)
	DeleteByIDsFunc      func(ctx context.Context, ids []string) (int64, error)
	ListByUserFunc       func(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
	ListByWalletFunc     func(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error)
	SumByWalletFunc      func(ctx context.Context, walletID string) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]domain.Transaction),
	}
}

// Put stores a copy of t, replacing any transaction with the same id.
func (m *MockTransactionRepository) Put(t *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = *t
}

// Len returns the number of stored transactions.
func (m *MockTransactionRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transactions)
}

// Snapshot implements Snapshotter.
func (m *MockTransactionRepository) Snapshot() func() {
	m.mu.RLock()
	saved := make(map[string]domain.Transaction, len(m.transactions))
	for id, t := range m.transactions {
		saved[id] = t
	}
	m.mu.RUnlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.transactions = saved
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t)
	}
	m.Put(t)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		return &t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[t.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	m.transactions[t.ID] = *t
	return nil
}

func (m *MockTransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *MockTransactionRepository) ListIDsByWallet(ctx context.Context, walletID string, limit int) ([]string, error) {
	if m.ListIDsByWalletFunc != nil {
		return m.ListIDsByWalletFunc(ctx, walletID, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, t := range m.transactions {
		if t.WalletID == walletID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (m *MockTransactionRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if m.DeleteByIDsFunc != nil {
		return m.DeleteByIDsFunc(ctx, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := m.transactions[id]; ok {
			delete(m.transactions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	return m.list(func(t domain.Transaction) bool { return t.UserID == userID }, limit, offset), nil
}

func (m *MockTransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByWalletFunc != nil {
		return m.ListByWalletFunc(ctx, walletID, limit, offset)
	}
	return m.list(func(t domain.Transaction) bool { return t.WalletID == walletID }, limit, offset), nil
}

func (m *MockTransactionRepository) SumByWallet(ctx context.Context, walletID string) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumByWalletFunc != nil {
		return m.SumByWalletFunc(ctx, walletID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	income, expenses := decimal.Zero, decimal.Zero
	for _, t := range m.transactions {
		if t.WalletID != walletID {
			continue
		}
		switch t.Type {
		case domain.TransactionTypeIncome:
			income = income.Add(t.Amount)
		case domain.TransactionTypeExpense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return income, expenses, nil
}

func (m *MockTransactionRepository) list(match func(domain.Transaction) bool, limit, offset int) []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, 0)
	for _, t := range m.transactions {
		if match(t) {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	if offset >= len(out) {
		return []*domain.Transaction{}
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User

	GetByIDFunc func(ctx context.Context, id string) (*domain.User, error)
	UpsertFunc  func(ctx context.Context, user *domain.User) error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]domain.User),
	}
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
// Repositories registered with Track are restored when a transaction rolls
// back without having committed.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu        sync.Mutex
	tracked   []Snapshotter
	Begins    int
	Commits   int
	Rollbacks int
}

func NewMockTransactionManager(tracked ...Snapshotter) *MockTransactionManager {
	return &MockTransactionManager{tracked: tracked}
}

// Track registers repositories whose writes are undone on rollback.
func (m *MockTransactionManager) Track(repos ...Snapshotter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked = append(m.tracked, repos...)
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Begins++
	tx := &MockTransaction{manager: m}
	for _, repo := range m.tracked {
		tx.restores = append(tx.restores, repo.Snapshot())
	}
	return tx, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	manager  *MockTransactionManager
	restores []func()
	done     bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	if m.done {
		return fmt.Errorf("transaction already closed")
	}
	m.done = true
	if m.manager != nil {
		m.manager.mu.Lock()
		m.manager.Commits++
		m.manager.mu.Unlock()
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if m.done {
		return nil
	}
	m.done = true
	for i := len(m.restores) - 1; i >= 0; i-- {
		m.restores[i]()
	}
	if m.manager != nil {
		m.manager.mu.Lock()
		m.manager.Rollbacks++
		m.manager.mu.Unlock()
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%06d", m.counter)
}

// MockObserver records ledger events.
type MockObserver struct {
	mu        sync.Mutex
	Recorded  []string
	Failures  []string
	Cascaded  []int64
	LastError error
}

func (m *MockObserver) TransactionRecorded(operation string, txType domain.TransactionType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recorded = append(m.Recorded, operation+":"+string(txType))
}

func (m *MockObserver) OperationFailed(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures = append(m.Failures, operation)
	m.LastError = err
}

func (m *MockObserver) CascadeDeleted(count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cascaded = append(m.Cascaded, count)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	m.data[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
