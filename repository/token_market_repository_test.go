package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"celestia/domain/entities"
	"celestia/events"
	"celestia/repository/testutil"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMarketRepository_LoadOrCreate(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	markets := NewTokenMarketRepository(testDB.DB)

	missing, err := markets.GetByInstitutionCode(ctx, "UNN01")
	require.NoError(t, err)
	assert.Nil(t, missing)

	market, created, err := markets.LoadOrCreateForUpdate(ctx, "UNN01")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, market.CurrentValue.Equal(entities.DefaultMarketValue))
	assert.True(t, market.TotalSupply.Equal(entities.DefaultMarketSupply))
	assert.True(t, market.LiquidityPool.Equal(entities.DefaultMarketLiquidity))
	assert.Nil(t, market.LastUpdated)

	again, created, err := markets.LoadOrCreateForUpdate(ctx, "UNN01")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, market.ID, again.ID)

	now := time.Now().UTC().Truncate(time.Microsecond)
	again.CurrentValue = decimal.RequireFromString("1.00005")
	again.LastUpdated = &now
	require.NoError(t, markets.Update(ctx, again))

	stored, err := markets.GetByInstitutionCode(ctx, "UNN01")
	require.NoError(t, err)
	assert.True(t, stored.CurrentValue.Equal(decimal.RequireFromString("1.00005")))
	require.NotNil(t, stored.LastUpdated)
	assert.True(t, now.Equal(*stored.LastUpdated))
}

func TestTokenMarketRepository_LockTimeoutIsConflict(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testDB.DB.LockTimeout = 200 * time.Millisecond
	ctx := context.Background()

	holder := CreateTestUnitOfWork(testDB.DB, events.NewTransactionalBus(events.NewBus()))
	require.NoError(t, holder.Begin(ctx))
	defer holder.Rollback()

	_, _, err := holder.TokenMarketRepository().LoadOrCreateForUpdate(ctx, "LOCKED")
	require.NoError(t, err)
	// the provisioning insert is not visible until commit, so commit it and lock again
	require.NoError(t, holder.Commit())

	first := CreateTestUnitOfWork(testDB.DB, events.NewTransactionalBus(events.NewBus()))
	require.NoError(t, first.Begin(ctx))
	defer first.Rollback()
	_, _, err = first.TokenMarketRepository().LoadOrCreateForUpdate(ctx, "LOCKED")
	require.NoError(t, err)

	second := CreateTestUnitOfWork(testDB.DB, events.NewTransactionalBus(events.NewBus()))
	require.NoError(t, second.Begin(ctx))
	defer second.Rollback()

	_, _, err = second.TokenMarketRepository().LoadOrCreateForUpdate(ctx, "LOCKED")
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrStorageConflict)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "55P03", pgErr.Code)
}
