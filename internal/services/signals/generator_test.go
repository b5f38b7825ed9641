package signals

import (
	"testing"
	"time"

	"CoinDash/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func neutralSnapshot() models.IndicatorSnapshot {
	return models.IndicatorSnapshot{
		RSI:         50,
		MACD:        models.MACDResult{Cross: models.CrossNeutral},
		Bollinger:   models.BollingerResult{Position: models.BandMiddle},
		VolumeRatio: 1,
	}
}

func TestEvaluateNeutralSnapshotHolds(t *testing.T) {
	g := NewGenerator(WithCooldown(0))

	sig := g.Evaluate("BTC", neutralSnapshot(), 42000, 0, time.Now())

	assert.Equal(t, models.SignalHold, sig.Type)
	assert.Equal(t, models.RecHold, sig.Recommendation)
	assert.Equal(t, 5.0, sig.Score)
}

func TestEvaluateOversoldConfluenceIsStrongBuy(t *testing.T) {
	g := NewGenerator(WithCooldown(0))
	snap := neutralSnapshot()
	snap.RSI = 18
	snap.MACD.Cross = models.CrossBullish
	snap.Bollinger.Position = models.BandLower

	sig := g.Evaluate("BTC", snap, 42000, -8.2, time.Now())

	// 5.0 + 2.0 + 1.5 + 1.0 = 9.5
	assert.Equal(t, 9.5, sig.Score)
	assert.Equal(t, models.RecStrongBuy, sig.Recommendation)
	assert.Equal(t, models.SignalBuy, sig.Type)
	assert.InDelta(t, 0.95, sig.Confidence, 1e-12)
	assert.Contains(t, sig.Reason, "oversold")
	assert.Contains(t, sig.Reason, "MACD bullish cross")
}

func TestEvaluateOverboughtConfluenceIsSell(t *testing.T) {
	g := NewGenerator(WithCooldown(0))
	snap := neutralSnapshot()
	snap.RSI = 85
	snap.MACD.Cross = models.CrossBearish
	snap.Bollinger.Position = models.BandUpper

	sig := g.Evaluate("ETH", snap, 2500, 6.1, time.Now())

	// 5.0 - 2.0 - 1.5 - 1.0 = 0.5
	assert.Equal(t, 0.5, sig.Score)
	assert.Equal(t, models.RecSell, sig.Recommendation)
	assert.Equal(t, models.SignalSell, sig.Type)
	assert.InDelta(t, 0.95, sig.Confidence, 1e-12)
}

func TestEvaluateScoreBands(t *testing.T) {
	g := NewGenerator(WithCooldown(0))

	// RSI 25 alone: 5.0 + 1.5 = 6.5 -> BUY band
	snap := neutralSnapshot()
	snap.RSI = 25
	sig := g.Evaluate("BTC", snap, 1, 0, time.Now())
	assert.Equal(t, models.RecBuy, sig.Recommendation)
	assert.Equal(t, models.SignalBuy, sig.Type)

	// RSI 72 alone: 5.0 - 1.5 = 3.5 -> WEAK_SELL band
	snap = neutralSnapshot()
	snap.RSI = 72
	sig = g.Evaluate("BTC", snap, 1, 0, time.Now())
	assert.Equal(t, models.RecWeakSell, sig.Recommendation)
	assert.Equal(t, models.SignalSell, sig.Type)

	// Bollinger lower alone: 6.0 -> HOLD band
	snap = neutralSnapshot()
	snap.Bollinger.Position = models.BandLower
	sig = g.Evaluate("BTC", snap, 1, 0, time.Now())
	assert.Equal(t, models.RecHold, sig.Recommendation)
	assert.Equal(t, models.SignalHold, sig.Type)
}

func TestCooldownSuppressesDuplicates(t *testing.T) {
	g := NewGenerator(WithCooldown(24 * time.Hour))
	snap := neutralSnapshot()
	snap.RSI = 18
	snap.MACD.Cross = models.CrossBullish

	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	first := g.Evaluate("BTC", snap, 100, 0, t0)
	assert.Equal(t, models.SignalBuy, first.Type)

	// six hours later, same setup: duplicate gets demoted to HOLD
	dup := g.Evaluate("BTC", snap, 100, 0, t0.Add(6*time.Hour))
	assert.Equal(t, models.SignalHold, dup.Type)
	assert.Contains(t, dup.Reason, "cooldown")

	// a full day later the direction may fire again
	next := g.Evaluate("BTC", snap, 100, 0, t0.Add(24*time.Hour))
	assert.Equal(t, models.SignalBuy, next.Type)

	// a different symbol is unaffected
	other := g.Evaluate("ETH", snap, 100, 0, t0.Add(6*time.Hour))
	assert.Equal(t, models.SignalBuy, other.Type)
}
