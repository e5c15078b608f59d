package repository

import (
	"context"
	"errors"
	"fmt"

	"celestia/database"
	"celestia/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository implements the WalletRepository interface
type WalletRepository struct {
	q Queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

func newWalletRepository(tx Queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// GetByUserID retrieves the wallet owned by a user
func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error) {
	return r.get(ctx, userID, "")
}

// GetByUserIDForUpdate retrieves the wallet and holds its row lock until the transaction ends
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error) {
	return r.get(ctx, userID, "FOR UPDATE")
}

func (r *WalletRepository) get(ctx context.Context, userID int64, lock string) (*entities.Wallet, error) {
	query := `
		SELECT id, user_id, balance, staked_balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	` + lock

	var w entities.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.StakedBalance,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(fmt.Sprintf("failed to get wallet for user %d", userID), err)
	}
	return &w, nil
}

// Create inserts an empty wallet for the user
func (r *WalletRepository) Create(ctx context.Context, userID int64) (*entities.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, balance, staked_balance)
		VALUES ($1, 0, 0)
		RETURNING id, user_id, balance, staked_balance, created_at, updated_at
	`

	var w entities.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.StakedBalance,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("failed to create wallet for user %d", userID), err)
	}
	return &w, nil
}

// UpdateBalance sets the wallet's available balance
func (r *WalletRepository) UpdateBalance(ctx context.Context, walletID int64, balance decimal.Decimal) error {
	query := `
		UPDATE wallets
		SET balance = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, walletID, balance)
	if err != nil {
		return wrapError(fmt.Sprintf("failed to update balance of wallet %d", walletID), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: wallet %d", entities.ErrWalletNotFound, walletID)
	}
	return nil
}
