package performance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinDash/internal/domain/models"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestMatchFIFO_SplitsLots(t *testing.T) {
	trades := []models.Trade{
		{Symbol: "BTC", Side: models.SideBuy, Quantity: 2, Price: 100, Timestamp: day(0)},
		{Symbol: "BTC", Side: models.SideBuy, Quantity: 3, Price: 110, Timestamp: day(1)},
		{Symbol: "BTC", Side: models.SideSell, Quantity: 4, Price: 120, Timestamp: day(5)},
		{Symbol: "BTC", Side: models.SideSell, Quantity: 1, Price: 105, Timestamp: day(6)},
	}

	pairs := MatchFIFO(trades)
	require.Len(t, pairs, 3)

	assert.Equal(t, 2.0, pairs[0].Quantity)
	assert.Equal(t, 100.0, pairs[0].BuyPrice)
	assert.InDelta(t, 20.0, pairs[0].ProfitRate, 1e-9)
	assert.Equal(t, 5, pairs[0].HoldingDays)

	assert.Equal(t, 2.0, pairs[1].Quantity)
	assert.Equal(t, 110.0, pairs[1].BuyPrice)
	assert.InDelta(t, 100*10.0/110.0, pairs[1].ProfitRate, 1e-9)

	assert.Equal(t, 1.0, pairs[2].Quantity)
	assert.InDelta(t, -100*5.0/110.0, pairs[2].ProfitRate, 1e-9)
	assert.Equal(t, 5, pairs[2].HoldingDays)

	var sold, matched float64
	for _, tr := range trades {
		if tr.Side == models.SideSell {
			sold += tr.Quantity
		}
	}
	for _, p := range pairs {
		matched += p.Quantity
	}
	assert.Equal(t, sold, matched, "every sold unit must be matched exactly once")
}

func TestMatchFIFO_SymbolsIsolated(t *testing.T) {
	trades := []models.Trade{
		{Symbol: "BTC", Side: models.SideBuy, Quantity: 1, Price: 100, Timestamp: day(0)},
		{Symbol: "ETH", Side: models.SideBuy, Quantity: 1, Price: 50, Timestamp: day(0)},
		{Symbol: "ETH", Side: models.SideSell, Quantity: 1, Price: 60, Timestamp: day(2)},
	}

	pairs := MatchFIFO(trades)
	require.Len(t, pairs, 1)
	assert.Equal(t, "ETH", pairs[0].Symbol)
	assert.Equal(t, 50.0, pairs[0].BuyPrice)
}

func TestMatchFIFO_PartialDayRoundsUp(t *testing.T) {
	buy := day(0)
	trades := []models.Trade{
		{Symbol: "BTC", Side: models.SideBuy, Quantity: 1, Price: 100, Timestamp: buy},
		{Symbol: "BTC", Side: models.SideSell, Quantity: 1, Price: 110, Timestamp: buy.Add(36 * time.Hour)},
	}

	pairs := MatchFIFO(trades)
	require.Len(t, pairs, 1)
	assert.Equal(t, 2, pairs[0].HoldingDays)
}

func TestCalculate_RoundTrip(t *testing.T) {
	portfolio := models.NewPortfolio(10_000_000)
	portfolio.Cash = 10_200_000

	trades := []models.Trade{
		{Symbol: "BTC", Side: models.SideBuy, Quantity: 10, Price: 100_000, Timestamp: day(0)},
		{Symbol: "BTC", Side: models.SideSell, Quantity: 10, Price: 120_000, Timestamp: day(10)},
	}
	equity := []models.EquityPoint{
		{Timestamp: day(0), Value: 10_000_000},
		{Timestamp: day(5), Value: 10_050_000},
		{Timestamp: day(10), Value: 10_200_000},
	}

	res := Calculate(Input{
		InitialCapital: 10_000_000,
		Portfolio:      portfolio,
		Trades:         trades,
		Equity:         equity,
	})

	assert.Equal(t, 2, res.TotalTrades)
	assert.InDelta(t, 2.0, res.TotalReturn, 1e-9)

	require.Len(t, res.TradePairs, 1)
	assert.InDelta(t, 20.0, res.TradePairs[0].ProfitRate, 1e-9)
	assert.Equal(t, 1, res.WinTrades)
	assert.InDelta(t, 100.0, res.WinRate, 1e-9)
	assert.InDelta(t, 10.0, res.AvgHoldingPeriod, 1e-9)

	wantAnnualized := (math.Pow(1.02, 365.0/10.0) - 1) * 100
	assert.InDelta(t, wantAnnualized, res.AnnualizedReturn, 1e-9)
	assert.InDelta(t, 6.0, res.TradingFrequency, 1e-9)
	assert.Equal(t, 0.0, res.MaxDrawdown)
	assert.Greater(t, res.SharpeRatio, 0.0)
}

func TestCalculate_Idempotent(t *testing.T) {
	trades := []models.Trade{
		{Symbol: "BTC", Side: models.SideBuy, Quantity: 5, Price: 200, Timestamp: day(0)},
		{Symbol: "BTC", Side: models.SideSell, Quantity: 4, Price: 180, Timestamp: day(3)},
	}
	in := Input{
		InitialCapital: 100_000,
		Portfolio:      &models.Portfolio{Cash: 99_720, Holdings: map[string]models.Holding{"BTC": {Quantity: 1, AverageCost: 200, LastPrice: 180}}},
		Trades:         trades,
	}

	first := Calculate(in)
	second := Calculate(in)
	assert.Equal(t, first, second)
}

func TestCalculate_NoTrades(t *testing.T) {
	signals := []models.Signal{{Symbol: "BTC", Type: models.SignalHold, Score: 5}}

	res := Calculate(Input{
		InitialCapital: 10_000_000,
		Portfolio:      models.NewPortfolio(10_000_000),
		Signals:        signals,
		Equity:         []models.EquityPoint{{Timestamp: day(0), Value: 10_000_000}},
	})

	assert.Zero(t, res.TotalReturn)
	assert.Zero(t, res.TotalTrades)
	assert.Zero(t, res.WinRate)
	assert.Zero(t, res.MaxDrawdown)
	assert.Zero(t, res.SharpeRatio)
	assert.Empty(t, res.Trades)
	assert.Empty(t, res.TradePairs)
	assert.Equal(t, signals, res.Signals)
}

func TestMaxDrawdown_PeakToTrough(t *testing.T) {
	equity := []models.EquityPoint{
		{Value: 100}, {Value: 120}, {Value: 90}, {Value: 110},
	}
	assert.InDelta(t, 25.0, MaxDrawdown(equity), 1e-9)
	assert.Zero(t, MaxDrawdown(nil))
}

func TestSharpeRatio_Degenerate(t *testing.T) {
	flat := []models.EquityPoint{{Value: 100}, {Value: 100}, {Value: 100}}
	assert.Zero(t, SharpeRatio(flat), "zero volatility")
	assert.Zero(t, SharpeRatio(flat[:2]), "too few points")
}
