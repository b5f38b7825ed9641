package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drepo "CoinDash/internal/domain/repository"
)

func TestSyntheticHistory_Deterministic(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 30)

	a, err := NewSyntheticHistory(42).GetSeries(context.Background(), "BTC", from, to, drepo.TF1d)
	require.NoError(t, err)
	b, err := NewSyntheticHistory(42).GetSeries(context.Background(), "BTC", from, to, drepo.TF1d)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 31)
}

func TestSyntheticHistory_SymbolsDiffer(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 10)
	s := NewSyntheticHistory(42)

	btc, err := s.GetSeries(context.Background(), "BTC", from, to, drepo.TF1d)
	require.NoError(t, err)
	eth, err := s.GetSeries(context.Background(), "ETH", from, to, drepo.TF1d)
	require.NoError(t, err)

	require.Len(t, eth, len(btc))
	assert.NotEqual(t, btc[0].Price, eth[0].Price)
}

func TestSyntheticHistory_AscendingPositive(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 60)

	points, err := NewSyntheticHistory(7).GetSeries(context.Background(), "SOL", from, to, drepo.TF1d)
	require.NoError(t, err)

	for i, p := range points {
		assert.Greater(t, p.Price, 0.0)
		if i > 0 {
			assert.True(t, p.Timestamp.After(points[i-1].Timestamp))
		}
	}
}
