package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinDash/internal/domain/models"
)

type fakeNews struct {
	items []models.NewsItem
	err   error
}

func (f *fakeNews) Latest(_ context.Context, _ string, _ int) ([]models.NewsItem, error) {
	return f.items, f.err
}

func TestNewsScore_KeywordMatching(t *testing.T) {
	uc := NewNewsUseCase(&fakeNews{items: []models.NewsItem{
		{Title: "Bitcoin ETF approval sparks rally", Summary: "institutional inflows"},
		{Title: "Exchange hack triggers sell-off", Summary: ""},
		{Title: "Quiet weekend for crypto markets", Summary: ""},
	}})

	res, err := uc.Score(context.Background(), "BTCUSDT", 20)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	// first headline: etf, approval, rally, institutional -> +4
	assert.Equal(t, 4, res.Items[0].Score)
	assert.Contains(t, res.Items[0].Matched, "etf")

	// second headline: hack, sell-off -> -2
	assert.Equal(t, -2, res.Items[1].Score)

	// third headline matches nothing
	assert.Equal(t, 0, res.Items[2].Score)
	assert.Empty(t, res.Items[2].Matched)

	// net (4 - 2 + 0) / 3
	assert.InDelta(t, 0.6667, res.Sentiment, 0.001)
}

func TestNewsScore_SentimentClamped(t *testing.T) {
	uc := NewNewsUseCase(&fakeNews{items: []models.NewsItem{
		{Title: "surge rally soar gain bullish breakout"},
	}})

	res, err := uc.Score(context.Background(), "BTCUSDT", 20)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Sentiment)
}

func TestNewsScore_EmptyAndError(t *testing.T) {
	uc := NewNewsUseCase(&fakeNews{})
	res, err := uc.Score(context.Background(), "BTCUSDT", 20)
	require.NoError(t, err)
	assert.Zero(t, res.Sentiment)
	assert.Empty(t, res.Items)

	uc = NewNewsUseCase(&fakeNews{err: fmt.Errorf("upstream down")})
	_, err = uc.Score(context.Background(), "BTCUSDT", 20)
	require.Error(t, err)

	_, err = uc.Score(context.Background(), "", 20)
	require.Error(t, err)
}
