package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinDash/internal/domain/models"
)

func TestHandle_CompletesRunAndRecordsResult(t *testing.T) {
	history := &fakeHistory{series: map[string][]models.PricePoint{
		"BTCUSDT": dailySeries("BTCUSDT", flatPrices(40, 100)),
	}}
	uc := NewBacktestJobUseCase(nil, history, nil, nil, nil, NewRunStore(0), testLogger(t))

	req := BacktestRunRequest{ID: "run-1", Config: defaultConfig("BTCUSDT")}
	err := uc.Handle(context.Background(), req)
	require.NoError(t, err)

	rec, ok := uc.Status("run-1")
	require.True(t, ok)
	assert.Equal(t, models.RunCompleted, rec.State)
	assert.Equal(t, 100, rec.Progress)
	require.NotNil(t, rec.Result)
	assert.Zero(t, rec.Result.TotalTrades)
	assert.NotNil(t, rec.FinishedAt)
}

func TestHandle_SyntheticDisabledFailsRecord(t *testing.T) {
	// A synthetic job can be sitting in the queue when the process restarts
	// with the synthetic source turned off. The worker must fail the record,
	// not dereference a nil factory.
	uc := NewBacktestJobUseCase(nil, &fakeHistory{}, nil, nil, nil, NewRunStore(0), testLogger(t))

	req := BacktestRunRequest{ID: "run-2", Config: defaultConfig("BTCUSDT"), Synthetic: true, Seed: 7}
	err := uc.Handle(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthetic data source not enabled")

	rec, ok := uc.Status("run-2")
	require.True(t, ok)
	assert.Equal(t, models.RunFailed, rec.State)
	assert.NotEmpty(t, rec.Error)
	assert.NotNil(t, rec.FinishedAt)
}

func TestRunSync_SyntheticDisabledRejected(t *testing.T) {
	uc := NewBacktestJobUseCase(nil, &fakeHistory{}, nil, nil, nil, NewRunStore(0), testLogger(t))

	_, err := uc.RunSync(context.Background(), defaultConfig("BTCUSDT"), true, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthetic data source not enabled")
}
