package testutil

import (
	"context"
	"fmt"
	"testing"

	"celestia/database"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// SeededUser identifies a user and wallet inserted for a test
type SeededUser struct {
	UserID   int64
	WalletID int64
}

// SeedUser inserts a student of the institution with a wallet holding balance
func SeedUser(t *testing.T, db *database.DB, regNumber, institutionCode string, balance decimal.Decimal) SeededUser {
	t.Helper()

	var seeded SeededUser
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		err := tx.QueryRow(context.Background(), `
			INSERT INTO users (reg_number, nin, surname, first_name, institution, institution_code)
			VALUES ($1, $2, 'Test', 'Student', $3, $3)
			RETURNING id
		`, regNumber, fmt.Sprintf("NIN-%s", regNumber), institutionCode).Scan(&seeded.UserID)
		if err != nil {
			return err
		}

		return tx.QueryRow(context.Background(), `
			INSERT INTO wallets (user_id, balance) VALUES ($1, $2) RETURNING id
		`, seeded.UserID, balance).Scan(&seeded.WalletID)
	})
	require.NoError(t, err)
	return seeded
}

// SeedMarket inserts a market with explicit values
func SeedMarket(t *testing.T, db *database.DB, institutionCode string, value, supply, liquidity decimal.Decimal) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO token_markets (institution_code, current_value, total_supply, liquidity_pool)
		VALUES ($1, $2, $3, $4)
	`, institutionCode, value, supply, liquidity)
	require.NoError(t, err)
}

// WalletBalance reads a wallet balance outside any unit of work
func WalletBalance(t *testing.T, db *database.DB, walletID int64) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	require.NoError(t, db.QueryRow(context.Background(), `SELECT balance FROM wallets WHERE id = $1`, walletID).Scan(&balance))
	return balance
}

// CountRows returns the row count of a table
func CountRows(t *testing.T, db *database.DB, table string) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(context.Background(), fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pgx.Identifier{table}.Sanitize())).Scan(&n))
	return n
}
