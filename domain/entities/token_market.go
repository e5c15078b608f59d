package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Defaults used when a market is provisioned for an institution on its
// first settlement.
var (
	DefaultMarketSupply    = decimal.NewFromInt(1_000_000)
	DefaultMarketValue     = decimal.NewFromInt(1)
	DefaultMarketLiquidity = decimal.NewFromInt(100_000)
)

// TokenMarket is the single price record of an institution's token.
// LastUpdated is nil until the first price mutation.
type TokenMarket struct {
	ID              int64           `db:"id" json:"id"`
	InstitutionCode string          `db:"institution_code" json:"institution_code"`
	CurrentValue    decimal.Decimal `db:"current_value" json:"current_value"`
	TotalSupply     decimal.Decimal `db:"total_supply" json:"total_supply"`
	LiquidityPool   decimal.Decimal `db:"liquidity_pool" json:"liquidity_pool"`
	LastUpdated     *time.Time      `db:"last_updated" json:"last_updated,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// NewDefaultMarket returns an unsaved market with the provisioning defaults
func NewDefaultMarket(institutionCode string) *TokenMarket {
	return &TokenMarket{
		InstitutionCode: institutionCode,
		CurrentValue:    DefaultMarketValue,
		TotalSupply:     DefaultMarketSupply,
		LiquidityPool:   DefaultMarketLiquidity,
	}
}

// MarketStats summarizes a market and its recent trading volume
type MarketStats struct {
	InstitutionCode string          `json:"institution_code"`
	CurrentValue    decimal.Decimal `json:"current_value"`
	TotalSupply     decimal.Decimal `json:"total_supply"`
	LiquidityPool   decimal.Decimal `json:"liquidity_pool"`
	LastUpdated     *time.Time      `json:"last_updated,omitempty"`
	RecentVolume    decimal.Decimal `json:"recent_volume"`
	BuyVolume       decimal.Decimal `json:"buy_volume"`
	SellVolume      decimal.Decimal `json:"sell_volume"`
	SampleSize      int             `json:"sample_size"`
}
