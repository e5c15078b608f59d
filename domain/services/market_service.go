package services

import (
	"context"
	"fmt"

	"celestia/domain/entities"
	"celestia/domain/interfaces"

	"github.com/shopspring/decimal"
)

// StatsSampleSize is the number of recent transactions summarized by market stats
const StatsSampleSize = 100

type marketService struct {
	marketRepo      interfaces.TokenMarketRepository
	transactionRepo interfaces.TransactionRepository
}

// NewMarketService creates a new market service
func NewMarketService(marketRepo interfaces.TokenMarketRepository, transactionRepo interfaces.TransactionRepository) interfaces.MarketService {
	return &marketService{
		marketRepo:      marketRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *marketService) GetMarketStats(ctx context.Context, institutionCode string) (*entities.MarketStats, error) {
	market, err := s.marketRepo.GetByInstitutionCode(ctx, institutionCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load market: %w", err)
	}
	if market == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrMarketNotFound, institutionCode)
	}

	recent, err := s.transactionRepo.RecentByInstitution(ctx, institutionCode, StatsSampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent transactions: %w", err)
	}

	stats := &entities.MarketStats{
		InstitutionCode: market.InstitutionCode,
		CurrentValue:    market.CurrentValue,
		TotalSupply:     market.TotalSupply,
		LiquidityPool:   market.LiquidityPool,
		LastUpdated:     market.LastUpdated,
		RecentVolume:    decimal.Zero,
		BuyVolume:       decimal.Zero,
		SellVolume:      decimal.Zero,
		SampleSize:      len(recent),
	}
	for _, tx := range recent {
		stats.RecentVolume = stats.RecentVolume.Add(tx.Amount)
		switch tx.TransactionType {
		case entities.TransactionTypeBuy:
			stats.BuyVolume = stats.BuyVolume.Add(tx.Amount)
		case entities.TransactionTypeSell:
			stats.SellVolume = stats.SellVolume.Add(tx.Amount)
		}
	}
	return stats, nil
}
