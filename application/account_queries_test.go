package application_test

import (
	"context"
	"errors"
	"testing"

	"celestia/application"
	"celestia/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountQueries_NotFound(t *testing.T) {
	uow := newFakeUnitOfWork()
	uow.users.On("GetByID", mock.Anything, int64(1)).Return(nil, nil)
	uow.wallets.On("GetByUserID", mock.Anything, int64(1)).Return(nil, nil)
	uow.markets.On("GetByInstitutionCode", mock.Anything, "NOPE").Return(nil, nil)

	queries := application.NewAccountQueries(&fakeFactory{uow: uow})
	ctx := context.Background()

	_, err := queries.GetUser(ctx, 1)
	assert.ErrorIs(t, err, entities.ErrUserNotFound)

	_, err = queries.GetWallet(ctx, 1)
	assert.ErrorIs(t, err, entities.ErrWalletNotFound)

	_, err = queries.MarketStats(ctx, "NOPE")
	assert.ErrorIs(t, err, entities.ErrMarketNotFound)

	assert.True(t, uow.rolledBack, "reads never commit")
	assert.False(t, uow.committed)
}

func TestAccountQueries_HistoryLimits(t *testing.T) {
	cases := []struct {
		requested int
		applied   int
	}{
		{0, application.DefaultHistoryLimit},
		{-3, application.DefaultHistoryLimit},
		{25, 25},
		{1000, application.MaxHistoryLimit},
	}

	for _, tc := range cases {
		uow := newFakeUnitOfWork()
		uow.ledger.On("ListByUser", mock.Anything, int64(9), tc.applied).Return([]*entities.Transaction{}, nil).Once()
		uow.games.On("ListByUser", mock.Anything, int64(9), tc.applied).Return([]*entities.Game{}, nil).Once()

		queries := application.NewAccountQueries(&fakeFactory{uow: uow})
		_, err := queries.ListTransactions(context.Background(), 9, tc.requested)
		require.NoError(t, err)
		_, err = queries.ListGames(context.Background(), 9, tc.requested)
		require.NoError(t, err)

		uow.ledger.AssertExpectations(t)
		uow.games.AssertExpectations(t)
	}
}

func TestAccountQueries_BeginFailure(t *testing.T) {
	uow := newFakeUnitOfWork()
	uow.beginErr = errors.New("pool exhausted")

	_, err := application.NewAccountQueries(&fakeFactory{uow: uow}).GetWallet(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool exhausted")
}

func TestAccountQueries_WalletFound(t *testing.T) {
	uow := newFakeUnitOfWork()
	uow.wallets.On("GetByUserID", mock.Anything, int64(2)).Return(&entities.Wallet{ID: 4, UserID: 2, Balance: decimal.NewFromInt(7)}, nil)

	wallet, err := application.NewAccountQueries(&fakeFactory{uow: uow}).GetWallet(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), wallet.ID)
}
