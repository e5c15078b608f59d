package repository

import (
	"context"
	"fmt"

	"celestia/database"
	"celestia/domain/entities"

	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, user_id, wallet_id, transaction_type, amount, fee, status, institution_code, metadata, created_at`

// TransactionRepository implements the TransactionRepository interface
type TransactionRepository struct {
	q Queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

func newTransactionRepository(tx Queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Append inserts a ledger row
func (r *TransactionRepository) Append(ctx context.Context, t *entities.Transaction) error {
	if !t.TransactionType.IsValid() {
		return fmt.Errorf("invalid transaction type %q", t.TransactionType)
	}

	metadata, err := entities.MarshalTransactionMetadata(t.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (user_id, wallet_id, transaction_type, amount, fee, status, institution_code, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		t.UserID,
		t.WalletID,
		t.TransactionType,
		t.Amount,
		t.Fee,
		t.Status,
		t.InstitutionCode,
		metadata,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return wrapError(fmt.Sprintf("failed to append %s transaction for user %d", t.TransactionType, t.UserID), err)
	}
	return nil
}

// ListByUser returns the user's most recent transactions, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("failed to list transactions for user %d", userID), err)
	}
	return collectTransactions(rows)
}

// RecentByInstitution returns the institution's most recent transactions, newest first
func (r *TransactionRepository) RecentByInstitution(ctx context.Context, institutionCode string, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE institution_code = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, institutionCode, limit)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("failed to list transactions for %s", institutionCode), err)
	}
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*entities.Transaction, error) {
	defer rows.Close()

	var result []*entities.Transaction
	for rows.Next() {
		var t entities.Transaction
		var metadata []byte
		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.WalletID,
			&t.TransactionType,
			&t.Amount,
			&t.Fee,
			&t.Status,
			&t.InstitutionCode,
			&metadata,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if t.Metadata, err = entities.UnmarshalTransactionMetadata(metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata of transaction %d: %w", t.ID, err)
		}
		result = append(result, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return result, nil
}
