package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinDash/internal/domain/models"
)

type fakeQuotes struct {
	prices map[string]float64
	fail   map[string]bool
}

func (f *fakeQuotes) Quote(_ context.Context, symbol string) (models.Quote, error) {
	if f.fail[symbol] {
		return models.Quote{}, fmt.Errorf("quote %s: unavailable", symbol)
	}
	return models.Quote{Symbol: symbol, Price: f.prices[symbol], Timestamp: time.Now()}, nil
}

func TestPortfolioValue_MarksAtQuote(t *testing.T) {
	uc := NewPortfolioUseCase(&fakeQuotes{prices: map[string]float64{
		"BTCUSDT": 50_000,
		"ETHUSDT": 2_500,
	}}, testLogger(t))

	res, err := uc.Value(context.Background(), 1_000, []Position{
		{Symbol: "BTCUSDT", Quantity: 0.5, AvgCost: 40_000},
		{Symbol: "ETHUSDT", Quantity: 2, AvgCost: 3_000},
	})
	require.NoError(t, err)
	require.Len(t, res.Positions, 2)

	assert.Equal(t, 25_000.0, res.Positions[0].Value)
	assert.InDelta(t, 25.0, res.Positions[0].ProfitRate, 1e-9)
	assert.Equal(t, 5_000.0, res.Positions[1].Value)
	assert.InDelta(t, -100.0/6.0, res.Positions[1].ProfitRate, 1e-9)
	assert.Equal(t, 31_000.0, res.TotalValue)
}

func TestPortfolioValue_QuoteFailureIsPartial(t *testing.T) {
	uc := NewPortfolioUseCase(&fakeQuotes{
		prices: map[string]float64{"BTCUSDT": 50_000},
		fail:   map[string]bool{"ETHUSDT": true},
	}, testLogger(t))

	res, err := uc.Value(context.Background(), 0, []Position{
		{Symbol: "BTCUSDT", Quantity: 1},
		{Symbol: "ETHUSDT", Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, res.Positions, 2)

	assert.Equal(t, 50_000.0, res.TotalValue)
	assert.Contains(t, res.Errors, "ETHUSDT")
	assert.Zero(t, res.Positions[1].Value)
}

func TestPortfolioValue_SkipsInvalidPositions(t *testing.T) {
	uc := NewPortfolioUseCase(&fakeQuotes{prices: map[string]float64{"BTCUSDT": 100}}, testLogger(t))

	res, err := uc.Value(context.Background(), 10, []Position{
		{Symbol: "", Quantity: 1},
		{Symbol: "BTCUSDT", Quantity: 0},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Positions)
	assert.Equal(t, 10.0, res.TotalValue)

	_, err = uc.Value(context.Background(), -1, nil)
	require.Error(t, err)
}
