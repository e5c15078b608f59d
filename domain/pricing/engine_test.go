package pricing

import (
	"math/rand/v2"
	"testing"
	"time"

	"celestia/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func freshMarket() *entities.TokenMarket {
	return entities.NewDefaultMarket("UNN01")
}

func TestAdjust_BuyOnFreshMarket(t *testing.T) {
	engine := NewEngine(DefaultParams())
	market := freshMarket()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	adj, err := engine.Adjust(market, entities.TransactionTypeBuy, dec("1000"), now)
	require.NoError(t, err)

	assert.True(t, dec("1.00005").Equal(market.CurrentValue), "got %s", market.CurrentValue)
	assert.True(t, dec("0.00005").Equal(adj.Impact))
	assert.Equal(t, int64(0), adj.DecayDays)
	assert.False(t, adj.Clamped)
	require.NotNil(t, market.LastUpdated)
	assert.Equal(t, now, *market.LastUpdated)

	fee := engine.CollectFee(market, dec("1000"))
	assert.True(t, dec("5").Equal(fee))
	assert.True(t, dec("100005").Equal(market.LiquidityPool))
}

func TestAdjust_Direction(t *testing.T) {
	engine := NewEngine(DefaultParams())
	now := time.Now()

	tests := []struct {
		name     string
		txType   entities.TransactionType
		expected string
	}{
		{"buy raises value", entities.TransactionTypeBuy, "1.0005"},
		{"sell lowers value", entities.TransactionTypeSell, "0.9995"},
		{"game leaves value", entities.TransactionTypeGame, "1"},
		{"stake leaves value", entities.TransactionTypeStake, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			market := freshMarket()
			_, err := engine.Adjust(market, tt.txType, dec("10000"), now)
			require.NoError(t, err)
			assert.True(t, dec(tt.expected).Equal(market.CurrentValue), "got %s", market.CurrentValue)
		})
	}
}

func TestAdjust_SellThenBuyCompoundsImpact(t *testing.T) {
	engine := NewEngine(DefaultParams())
	now := time.Now()
	amounts := []string{"1", "250", "1000", "12345.678", "999999"}

	for _, a := range amounts {
		market := freshMarket()
		amount := dec(a)
		impact, err := engine.Impact(amount, market.TotalSupply)
		require.NoError(t, err)

		_, err = engine.Adjust(market, entities.TransactionTypeSell, amount, now)
		require.NoError(t, err)
		_, err = engine.Adjust(market, entities.TransactionTypeBuy, amount, now)
		require.NoError(t, err)

		// v0 * (1 - i) * (1 + i) = v0 * (1 - i^2)
		expected := decimal.NewFromInt(1).Sub(impact.Mul(impact))
		diff := market.CurrentValue.Sub(expected).Abs()
		assert.True(t, diff.LessThanOrEqual(dec("0.000000000000000002")),
			"amount %s: got %s want %s", a, market.CurrentValue, expected)
		assert.True(t, market.CurrentValue.LessThan(decimal.NewFromInt(1)), "round trip must not restore price exactly")
	}
}

func TestAdjust_ClampInvariant(t *testing.T) {
	engine := NewEngine(DefaultParams())
	rng := rand.New(rand.NewPCG(1, 2))
	now := time.Now()
	limit := dec("0.10")

	for i := 0; i < 2000; i++ {
		market := &entities.TokenMarket{
			InstitutionCode: "FUZZ",
			CurrentValue:    decimal.NewFromFloat(0.01 + rng.Float64()*10).Round(6),
			TotalSupply:     decimal.NewFromInt(int64(1 + rng.IntN(2_000_000))),
			LiquidityPool:   decimal.Zero,
		}
		amount := decimal.NewFromInt(int64(rng.IntN(50_000_000)))
		txType := entities.TransactionTypeBuy
		if rng.IntN(2) == 0 {
			txType = entities.TransactionTypeSell
		}

		adj, err := engine.Adjust(market, txType, amount, now)
		require.NoError(t, err)

		bound := adj.DecayedValue.Mul(limit)
		assert.True(t, adj.NewValue.Sub(adj.DecayedValue).Abs().LessThanOrEqual(bound),
			"value moved from %s to %s", adj.DecayedValue, adj.NewValue)
		assert.True(t, adj.NewValue.IsPositive())
	}
}

func TestAdjust_ClampsLargeTrades(t *testing.T) {
	engine := NewEngine(DefaultParams())

	market := freshMarket()
	adj, err := engine.Adjust(market, entities.TransactionTypeBuy, dec("5000000"), time.Now())
	require.NoError(t, err)
	assert.True(t, adj.Clamped)
	assert.True(t, dec("1.1").Equal(market.CurrentValue))

	market = freshMarket()
	adj, err = engine.Adjust(market, entities.TransactionTypeSell, dec("50000000"), time.Now())
	require.NoError(t, err)
	assert.True(t, adj.Clamped)
	assert.True(t, dec("0.9").Equal(market.CurrentValue))
}

func TestAdjust_DecayAppliedOncePerDay(t *testing.T) {
	engine := NewEngine(DefaultParams())
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	market := freshMarket()
	last := start
	market.LastUpdated = &last

	// three days later: value decays by 0.999^3 before the game no-op
	first := start.Add(72*time.Hour + time.Hour)
	adj, err := engine.Adjust(market, entities.TransactionTypeGame, dec("10"), first)
	require.NoError(t, err)
	assert.Equal(t, int64(3), adj.DecayDays)
	assert.True(t, dec("0.997002999").Equal(market.CurrentValue), "got %s", market.CurrentValue)

	// same day: no further decay
	afterFirst := market.CurrentValue
	adj, err = engine.Adjust(market, entities.TransactionTypeGame, dec("10"), first.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), adj.DecayDays)
	assert.True(t, afterFirst.Equal(market.CurrentValue))
}

func TestAdjust_RejectsZeroSupply(t *testing.T) {
	engine := NewEngine(DefaultParams())
	market := freshMarket()
	market.TotalSupply = decimal.Zero

	_, err := engine.Adjust(market, entities.TransactionTypeBuy, dec("1"), time.Now())
	require.ErrorIs(t, err, entities.ErrMarketConfiguration)
	assert.True(t, decimal.NewFromInt(1).Equal(market.CurrentValue), "market must be untouched")
	assert.Nil(t, market.LastUpdated)
}

func TestAdjust_RejectsNonPositiveValue(t *testing.T) {
	engine := NewEngine(DefaultParams())
	market := freshMarket()
	market.CurrentValue = decimal.Zero

	_, err := engine.Adjust(market, entities.TransactionTypeBuy, dec("1"), time.Now())
	assert.ErrorIs(t, err, entities.ErrMarketConfiguration)
}

func TestDecayDays(t *testing.T) {
	base := time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(0), DecayDays(nil, base))
	assert.Equal(t, int64(0), DecayDays(&base, base))
	assert.Equal(t, int64(0), DecayDays(&base, base.Add(23*time.Hour)))
	assert.Equal(t, int64(1), DecayDays(&base, base.Add(24*time.Hour)))
	assert.Equal(t, int64(10), DecayDays(&base, base.Add(10*24*time.Hour+time.Minute)))
	assert.Equal(t, int64(0), DecayDays(&base, base.Add(-48*time.Hour)))
}

func TestFee(t *testing.T) {
	engine := NewEngine(DefaultParams())
	assert.True(t, dec("0.1").Equal(engine.Fee(dec("20"))))
	assert.True(t, dec("5").Equal(engine.Fee(dec("1000"))))
}
