package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

const transactionColumns = `id, user_id, wallet_id, type, amount, category, description, image, date, created_at, updated_at`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepository(pool)
}

func newTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a transaction inside tx.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	_, err := txConn(tx).Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID,
		t.UserID,
		t.WalletID,
		string(t.Type),
		decimalToNumeric(t.Amount),
		t.Category,
		t.Description,
		t.Image,
		timeToPgTimestamptz(t.Date),
		timeToPgTimestamptz(t.CreatedAt),
		timeToPgTimestamptz(t.UpdatedAt),
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return getTransaction(ctx, r.db, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a transaction by ID with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	return getTransaction(ctx, txConn(tx), `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

// Update overwrites every mutable column of a transaction inside tx.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	tag, err := txConn(tx).Exec(ctx, `
		UPDATE transactions
		SET wallet_id = $2, type = $3, amount = $4, category = $5, description = $6,
		    image = $7, date = $8, updated_at = $9
		WHERE id = $1`,
		t.ID,
		t.WalletID,
		string(t.Type),
		decimalToNumeric(t.Amount),
		t.Category,
		t.Description,
		t.Image,
		timeToPgTimestamptz(t.Date),
		timeToPgTimestamptz(t.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a transaction inside tx.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txConn(tx).Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListIDsByWallet returns up to limit transaction ids of a wallet.
func (r *TransactionRepository) ListIDsByWallet(ctx context.Context, walletID string, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM transactions
		WHERE wallet_id = $1
		ORDER BY id
		LIMIT $2`, walletID, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// DeleteByIDs removes the given transactions and reports how many were deleted.
func (r *TransactionRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// ListByUser lists a user's transactions, most recent date first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return collectTransactions(rows)
}

// ListByWallet lists a wallet's transactions, most recent date first.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2 OFFSET $3`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}

	return collectTransactions(rows)
}

// SumByWallet sums income and expense amounts recorded against a wallet.
func (r *TransactionRepository) SumByWallet(ctx context.Context, walletID string) (decimal.Decimal, decimal.Decimal, error) {
	var income, expenses pgtype.Numeric

	err := r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE wallet_id = $1`, walletID).Scan(&income, &expenses)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(income), numericToDecimal(expenses), nil
}

func getTransaction(ctx context.Context, db DBTX, query, id string) (*domain.Transaction, error) {
	t, err := scanTransaction(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return t, nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t                          domain.Transaction
		txType                     string
		amount                     pgtype.Numeric
		date, createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.WalletID,
		&txType,
		&amount,
		&t.Category,
		&t.Description,
		&t.Image,
		&date,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Type = domain.TransactionType(txType)
	t.Amount = numericToDecimal(amount)
	t.Date = date.Time
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time

	return &t, nil
}
