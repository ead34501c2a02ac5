package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

const walletColumns = `id, user_id, name, image, amount, total_income, total_expenses, version, created_at, updated_at`

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	db DBTX
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return newWalletRepository(pool)
}

func newWalletRepository(db DBTX) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create inserts a new wallet.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wallets (`+walletColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		wallet.ID,
		wallet.UserID,
		wallet.Name,
		wallet.Image,
		decimalToNumeric(wallet.Amount),
		decimalToNumeric(wallet.TotalIncome),
		decimalToNumeric(wallet.TotalExpenses),
		wallet.Version,
		timeToPgTimestamptz(wallet.Created),
		timeToPgTimestamptz(wallet.UpdatedAt),
	)

	return err
}

// GetByID retrieves a wallet by ID.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id)

	wallet, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return wallet, nil
}

// GetByIDsForUpdate retrieves wallets by IDs with FOR UPDATE locks taken in id order.
func (r *WalletRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
	rows, err := txConn(tx).Query(ctx, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}

	return collectWallets(rows)
}

// UpdateDetails updates the name and image of a wallet.
func (r *WalletRepository) UpdateDetails(ctx context.Context, id, name, image string, updatedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE wallets SET name = $2, image = $3, updated_at = $4
		WHERE id = $1`,
		id, name, image, timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

// UpdateAggregates writes amount, totals and version of a locked wallet.
func (r *WalletRepository) UpdateAggregates(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	tag, err := txConn(tx).Exec(ctx, `
		UPDATE wallets
		SET amount = $2, total_income = $3, total_expenses = $4, version = $5, updated_at = $6
		WHERE id = $1`,
		wallet.ID,
		decimalToNumeric(wallet.Amount),
		decimalToNumeric(wallet.TotalIncome),
		decimalToNumeric(wallet.TotalExpenses),
		wallet.Version,
		timeToPgTimestamptz(wallet.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

// Delete removes a wallet row.
func (r *WalletRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txConn(tx).Exec(ctx, `DELETE FROM wallets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

// ListByUser lists a user's wallets, newest first.
func (r *WalletRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}

	return collectWallets(rows)
}

func collectWallets(rows pgx.Rows) ([]*domain.Wallet, error) {
	defer rows.Close()

	wallets := make([]*domain.Wallet, 0)
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}

	return wallets, rows.Err()
}

func scanWallet(row rowScanner) (*domain.Wallet, error) {
	var (
		w                               domain.Wallet
		amount, totalIncome, totalExpns pgtype.Numeric
		createdAt, updatedAt            pgtype.Timestamptz
	)

	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.Name,
		&w.Image,
		&amount,
		&totalIncome,
		&totalExpns,
		&w.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	w.Amount = numericToDecimal(amount)
	w.TotalIncome = numericToDecimal(totalIncome)
	w.TotalExpenses = numericToDecimal(totalExpns)
	w.Created = createdAt.Time
	w.UpdatedAt = updatedAt.Time

	return &w, nil
}
