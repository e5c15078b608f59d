// Package pricing computes token price movements for an institution market.
//
// A settlement first decays the market value by whole days elapsed since the
// last mutation, then applies a directional impact proportional to the traded
// amount over total supply. The result is clamped to ±MaxDailyChange around
// the decayed value.
package pricing

import (
	"fmt"
	"time"

	"celestia/domain/entities"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places kept for stored values
const Scale = 18

// Params holds the market constants
type Params struct {
	Volatility     decimal.Decimal
	DailyDecay     decimal.Decimal
	MaxDailyChange decimal.Decimal
	TransactionFee decimal.Decimal
}

// DefaultParams returns k=0.05, decay 0.1%/day, ±10% breaker and 0.5% fee
func DefaultParams() Params {
	return Params{
		Volatility:     decimal.RequireFromString("0.05"),
		DailyDecay:     decimal.RequireFromString("0.001"),
		MaxDailyChange: decimal.RequireFromString("0.10"),
		TransactionFee: decimal.RequireFromString("0.005"),
	}
}

// Adjustment describes one price update
type Adjustment struct {
	PreviousValue decimal.Decimal
	DecayedValue  decimal.Decimal
	NewValue      decimal.Decimal
	Impact        decimal.Decimal
	DecayDays     int64
	Clamped       bool
}

// Engine applies Params to markets
type Engine struct {
	params Params
}

// NewEngine creates an engine with the given parameters
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// Params returns the engine's constants
func (e *Engine) Params() Params {
	return e.params
}

// Impact returns (amount / totalSupply) * k
func (e *Engine) Impact(amount, totalSupply decimal.Decimal) (decimal.Decimal, error) {
	if !totalSupply.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: total supply must be positive, got %s", entities.ErrMarketConfiguration, totalSupply)
	}
	return amount.Div(totalSupply).Mul(e.params.Volatility), nil
}

// Fee returns the transaction fee charged on amount
func (e *Engine) Fee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(e.params.TransactionFee).Round(Scale)
}

// DecayDays returns the whole days elapsed since last. A market that has
// never been mutated, or a clock that went backwards, yields zero.
func DecayDays(last *time.Time, now time.Time) int64 {
	if last == nil {
		return 0
	}
	elapsed := now.Sub(*last)
	if elapsed <= 0 {
		return 0
	}
	return int64(elapsed / (24 * time.Hour))
}

// DecayFactor returns (1 - dailyDecay)^days
func (e *Engine) DecayFactor(days int64) decimal.Decimal {
	if days <= 0 {
		return decimal.NewFromInt(1)
	}
	base := decimal.NewFromInt(1).Sub(e.params.DailyDecay)
	return base.Pow(decimal.NewFromInt(days)).Round(Scale)
}

// Adjust decays the market, applies the impact of a trade of the given type
// and amount, and writes CurrentValue and LastUpdated back to the market.
// Types other than buy and sell leave the decayed value unchanged.
func (e *Engine) Adjust(market *entities.TokenMarket, txType entities.TransactionType, amount decimal.Decimal, now time.Time) (Adjustment, error) {
	if market == nil {
		return Adjustment{}, fmt.Errorf("%w: nil market", entities.ErrMarketConfiguration)
	}
	if !market.CurrentValue.IsPositive() {
		return Adjustment{}, fmt.Errorf("%w: current value must be positive, got %s", entities.ErrMarketConfiguration, market.CurrentValue)
	}
	if amount.IsNegative() {
		return Adjustment{}, entities.ErrInvalidAmount
	}

	impact, err := e.Impact(amount, market.TotalSupply)
	if err != nil {
		return Adjustment{}, err
	}

	days := DecayDays(market.LastUpdated, now)
	decayed := market.CurrentValue.Mul(e.DecayFactor(days)).Round(Scale)

	one := decimal.NewFromInt(1)
	proposed := decayed
	switch txType {
	case entities.TransactionTypeBuy:
		proposed = decayed.Mul(one.Add(impact))
	case entities.TransactionTypeSell:
		proposed = decayed.Mul(one.Sub(impact))
	}
	proposed = proposed.Round(Scale)

	// bounds are rounded inward so the stored value never leaves the band
	lower := decayed.Mul(one.Sub(e.params.MaxDailyChange)).RoundCeil(Scale)
	upper := decayed.Mul(one.Add(e.params.MaxDailyChange)).RoundFloor(Scale)

	newValue := proposed
	clamped := false
	if newValue.LessThan(lower) {
		newValue, clamped = lower, true
	} else if newValue.GreaterThan(upper) {
		newValue, clamped = upper, true
	}

	adj := Adjustment{
		PreviousValue: market.CurrentValue,
		DecayedValue:  decayed,
		NewValue:      newValue,
		Impact:        impact,
		DecayDays:     days,
		Clamped:       clamped,
	}

	ts := now.UTC()
	market.CurrentValue = newValue
	market.LastUpdated = &ts
	return adj, nil
}

// CollectFee adds the fee for amount to the market's liquidity pool and
// returns it
func (e *Engine) CollectFee(market *entities.TokenMarket, amount decimal.Decimal) decimal.Decimal {
	fee := e.Fee(amount)
	market.LiquidityPool = market.LiquidityPool.Add(fee)
	return fee
}
