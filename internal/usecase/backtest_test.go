package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinDash/internal/domain/models"
	drepo "CoinDash/internal/domain/repository"
	"CoinDash/pkg/logger"
)

type fakeHistory struct {
	series map[string][]models.PricePoint
	fail   map[string]error
}

func (f *fakeHistory) GetSeries(_ context.Context, symbol string, _, _ time.Time, _ drepo.Timeframe) ([]models.PricePoint, error) {
	if err, ok := f.fail[symbol]; ok {
		return nil, err
	}
	return f.series[symbol], nil
}

func (f *fakeHistory) GetLatestN(_ context.Context, symbol string, n int, _ drepo.Timeframe) ([]models.PricePoint, error) {
	s := f.series[symbol]
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func dailySeries(symbol string, prices []float64) []models.PricePoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = models.PricePoint{
			Symbol:    symbol,
			Timestamp: start.AddDate(0, 0, i),
			Price:     p,
			Volume:    1000,
		}
	}
	return points
}

func flatPrices(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func defaultConfig(symbols ...string) models.BacktestConfig {
	return models.BacktestConfig{
		Symbols: symbols,
		Start:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestBacktest_FlatSeriesProducesNoTrades(t *testing.T) {
	history := &fakeHistory{series: map[string][]models.PricePoint{
		"BTC": dailySeries("BTC", flatPrices(40, 100)),
	}}
	bt := NewBacktest(history, nil, nil, testLogger(t))

	res, err := bt.Run(context.Background(), defaultConfig("BTC"), Hooks{})
	require.NoError(t, err)

	assert.Equal(t, models.RunCompleted, bt.State())
	assert.Zero(t, res.TotalTrades)
	assert.Zero(t, res.TotalReturn)
	assert.Len(t, res.Signals, 40)
	for _, sig := range res.Signals {
		assert.Equal(t, models.SignalHold, sig.Type)
	}
}

func TestBacktest_CrashTriggersBuy(t *testing.T) {
	prices := flatPrices(30, 100)
	last := 100.0
	for i := 0; i < 5; i++ {
		last *= 0.97
		prices = append(prices, last)
	}
	history := &fakeHistory{series: map[string][]models.PricePoint{
		"BTC": dailySeries("BTC", prices),
	}}
	bt := NewBacktest(history, nil, nil, testLogger(t))

	var progress []int
	var observed []models.Trade
	res, err := bt.Run(context.Background(), defaultConfig("BTC"), Hooks{
		OnProgress: func(p int) { progress = append(progress, p) },
		OnTrade:    func(tr models.Trade) { observed = append(observed, tr) },
	})
	require.NoError(t, err)

	require.NotEmpty(t, res.Trades)
	assert.Equal(t, models.SideBuy, res.Trades[0].Side)
	assert.Equal(t, res.Trades, observed)
	assert.Len(t, res.Signals, len(prices))
	require.NotEmpty(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])
}

func TestBacktest_FailedSymbolIsSkipped(t *testing.T) {
	history := &fakeHistory{
		series: map[string][]models.PricePoint{
			"BTC": dailySeries("BTC", flatPrices(20, 100)),
		},
		fail: map[string]error{"BAD": errors.New("connection refused")},
	}
	bt := NewBacktest(history, nil, nil, testLogger(t))

	res, err := bt.Run(context.Background(), defaultConfig("BTC", "BAD"), Hooks{})
	require.NoError(t, err)

	assert.Equal(t, models.RunCompleted, bt.State())
	assert.Len(t, res.Signals, 20)
}

func TestBacktest_Cancellation(t *testing.T) {
	history := &fakeHistory{series: map[string][]models.PricePoint{
		"BTC": dailySeries("BTC", flatPrices(20, 100)),
	}}
	bt := NewBacktest(history, nil, nil, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bt.Run(ctx, defaultConfig("BTC"), Hooks{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.RunFailed, bt.State())
}

func TestBacktest_PanickingHookDoesNotAbort(t *testing.T) {
	history := &fakeHistory{series: map[string][]models.PricePoint{
		"BTC": dailySeries("BTC", flatPrices(10, 100)),
	}}
	bt := NewBacktest(history, nil, nil, testLogger(t))

	_, err := bt.Run(context.Background(), defaultConfig("BTC"), Hooks{
		OnSignal: func(models.Signal) { panic("observer bug") },
	})
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, bt.State())
}

func TestExecuteBuy_FirstPurchase(t *testing.T) {
	p := models.NewPortfolio(10_000_000)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	trade, reason := executeBuy(p, models.DefaultSizing(), "BTC", 10_000, ts)
	require.NotNil(t, trade)
	assert.Empty(t, reason)

	// 10% of cash is capped at the max notional
	assert.InDelta(t, 9_000_000, p.Cash, 1e-6)
	assert.InDelta(t, 100, trade.Quantity, 1e-9)

	h := p.Holdings["BTC"]
	assert.InDelta(t, 10_000, h.AverageCost, 1e-9)
	assert.InDelta(t, 100, h.Quantity, 1e-9)
}

func TestExecuteBuy_WeightedAverageCost(t *testing.T) {
	p := models.NewPortfolio(1_000)
	sizing := models.Sizing{BuyFraction: 0.5, MaxBuyNotional: 1_000_000, SellFraction: 0.8}
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	trade1, _ := executeBuy(p, sizing, "BTC", 100, ts)
	require.NotNil(t, trade1)
	trade2, _ := executeBuy(p, sizing, "BTC", 200, ts.AddDate(0, 0, 1))
	require.NotNil(t, trade2)

	// 5 units at 100 plus 1.25 units at 200: (500 + 250) / 6.25
	h := p.Holdings["BTC"]
	assert.InDelta(t, 120, h.AverageCost, 1e-9)
	assert.InDelta(t, 6.25, h.Quantity, 1e-9)
	assert.InDelta(t, 250, p.Cash, 1e-9)
}

func TestExecuteBuy_RejectedWithoutCash(t *testing.T) {
	p := models.NewPortfolio(0)
	trade, reason := executeBuy(p, models.DefaultSizing(), "BTC", 100, time.Now())
	assert.Nil(t, trade)
	assert.Equal(t, models.RejectInsufficientBuySize, reason)
}

func TestExecuteSell_FullLiquidation(t *testing.T) {
	// 10 units bought for 1,000,000 total, then sold in full at 12,000
	p := &models.Portfolio{
		Cash: 9_000_000,
		Holdings: map[string]models.Holding{
			"BTC": {Quantity: 10, AverageCost: 10_000, LastPrice: 10_000},
		},
	}
	sizing := models.DefaultSizing()
	sizing.SellFraction = 1.0
	ts := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	trade, reason := executeSell(p, sizing, "BTC", 12_000, ts)
	require.NotNil(t, trade)
	assert.Empty(t, reason)

	assert.InDelta(t, 20.0, trade.ProfitRate, 1e-9)
	assert.InDelta(t, 9_120_000, p.Cash, 1e-6)
	assert.InDelta(t, 0, p.Holdings["BTC"].Quantity, 1e-9)
	assert.InDelta(t, 10_000, trade.AvgCostAtSale, 1e-9)
}

func TestExecuteSell_PartialKeepsAverageCost(t *testing.T) {
	p := &models.Portfolio{
		Cash: 0,
		Holdings: map[string]models.Holding{
			"ETH": {Quantity: 10, AverageCost: 2_000, LastPrice: 2_000},
		},
	}

	trade, _ := executeSell(p, models.DefaultSizing(), "ETH", 2_500, time.Now())
	require.NotNil(t, trade)

	assert.InDelta(t, 8, trade.Quantity, 1e-9)
	h := p.Holdings["ETH"]
	assert.InDelta(t, 2, h.Quantity, 1e-9)
	assert.InDelta(t, 2_000, h.AverageCost, 1e-9, "average cost only moves on BUY")
	assert.InDelta(t, 20_000, p.Cash, 1e-9)
}

func TestExecuteSell_RejectedWithoutHolding(t *testing.T) {
	p := models.NewPortfolio(1_000_000)
	trade, reason := executeSell(p, models.DefaultSizing(), "BTC", 100, time.Now())
	assert.Nil(t, trade)
	assert.Equal(t, models.RejectNoHolding, reason)
}
