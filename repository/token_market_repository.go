package repository

import (
	"context"
	"errors"
	"fmt"

	"celestia/database"
	"celestia/domain/entities"

	"github.com/jackc/pgx/v5"
)

const marketColumns = `id, institution_code, current_value, total_supply, liquidity_pool, last_updated, created_at`

// TokenMarketRepository implements the TokenMarketRepository interface
type TokenMarketRepository struct {
	q Queryable
}

// NewTokenMarketRepository creates a new market repository
func NewTokenMarketRepository(db *database.DB) *TokenMarketRepository {
	return &TokenMarketRepository{q: db.Pool}
}

func newTokenMarketRepository(tx Queryable) *TokenMarketRepository {
	return &TokenMarketRepository{q: tx}
}

// LoadOrCreateForUpdate provisions the market if absent and locks its row.
// Concurrent callers racing on a new institution all end up on the same row.
func (r *TokenMarketRepository) LoadOrCreateForUpdate(ctx context.Context, institutionCode string) (*entities.TokenMarket, bool, error) {
	defaults := entities.NewDefaultMarket(institutionCode)

	insert := `
		INSERT INTO token_markets (institution_code, current_value, total_supply, liquidity_pool)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (institution_code) DO NOTHING
	`
	result, err := r.q.Exec(ctx, insert,
		defaults.InstitutionCode,
		defaults.CurrentValue,
		defaults.TotalSupply,
		defaults.LiquidityPool,
	)
	if err != nil {
		return nil, false, wrapError(fmt.Sprintf("failed to provision market %s", institutionCode), err)
	}
	created := result.RowsAffected() == 1

	query := `SELECT ` + marketColumns + ` FROM token_markets WHERE institution_code = $1 FOR UPDATE`
	market, err := scanMarket(r.q.QueryRow(ctx, query, institutionCode))
	if err != nil {
		return nil, false, wrapError(fmt.Sprintf("failed to lock market %s", institutionCode), err)
	}
	return market, created, nil
}

// GetByInstitutionCode retrieves a market without locking
func (r *TokenMarketRepository) GetByInstitutionCode(ctx context.Context, institutionCode string) (*entities.TokenMarket, error) {
	query := `SELECT ` + marketColumns + ` FROM token_markets WHERE institution_code = $1`

	market, err := scanMarket(r.q.QueryRow(ctx, query, institutionCode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(fmt.Sprintf("failed to get market %s", institutionCode), err)
	}
	return market, nil
}

// Update persists the mutable market fields
func (r *TokenMarketRepository) Update(ctx context.Context, market *entities.TokenMarket) error {
	query := `
		UPDATE token_markets
		SET current_value = $2, total_supply = $3, liquidity_pool = $4, last_updated = $5
		WHERE institution_code = $1
	`

	result, err := r.q.Exec(ctx, query,
		market.InstitutionCode,
		market.CurrentValue,
		market.TotalSupply,
		market.LiquidityPool,
		market.LastUpdated,
	)
	if err != nil {
		return wrapError(fmt.Sprintf("failed to update market %s", market.InstitutionCode), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", entities.ErrMarketNotFound, market.InstitutionCode)
	}
	return nil
}

func scanMarket(row pgx.Row) (*entities.TokenMarket, error) {
	var m entities.TokenMarket
	err := row.Scan(
		&m.ID,
		&m.InstitutionCode,
		&m.CurrentValue,
		&m.TotalSupply,
		&m.LiquidityPool,
		&m.LastUpdated,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
