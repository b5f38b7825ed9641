// Package signals turns indicator snapshots into classified trade signals.
package signals

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"CoinDash/internal/domain/models"
)

// Composite score thresholds. The score starts at a neutral baseline and is
// adjusted by fixed deltas per fired indicator condition, then clamped to
// [0, 10].
const (
	baselineScore = 5.0

	rsiDeepOversold   = 20.0 // +2.0
	rsiOversold       = 30.0 // +1.5
	rsiDeepOverbought = 80.0 // -2.0
	rsiOverbought     = 70.0 // -1.5
)

// Recommendation bands on the clamped score.
const (
	strongBuyFloor = 8.0
	buyFloor       = 6.5
	holdFloor      = 4.5
	weakSellFloor  = 2.5
)

// DefaultCooldown suppresses duplicate same-direction signals per symbol.
const DefaultCooldown = 24 * time.Hour

// Generator produces at most one signal per symbol per simulated day. It is
// stateless apart from a per-symbol timestamp map used purely to suppress
// duplicate signals inside the cooldown window.
type Generator struct {
	cooldown time.Duration

	mu         sync.Mutex
	lastIssued map[string]time.Time // symbol|direction -> last emit time
}

// Option configures Generator.
type Option func(*Generator)

// WithCooldown overrides the duplicate-suppression window. Zero disables it.
func WithCooldown(d time.Duration) Option {
	return func(g *Generator) {
		g.cooldown = d
	}
}

// NewGenerator creates a Generator with the default cooldown window.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		cooldown:   DefaultCooldown,
		lastIssued: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate scores one day's indicator snapshot and the day's percentage
// price change into a Signal. Insufficient history shows up as neutral
// indicator readings, which naturally yields HOLD; no error path exists.
func (g *Generator) Evaluate(symbol string, snap models.IndicatorSnapshot, price, changePct float64, ts time.Time) models.Signal {
	score := baselineScore
	var reasons []string

	switch {
	case snap.RSI <= rsiDeepOversold:
		score += 2.0
		reasons = append(reasons, fmt.Sprintf("RSI %.1f deeply oversold", snap.RSI))
	case snap.RSI <= rsiOversold:
		score += 1.5
		reasons = append(reasons, fmt.Sprintf("RSI %.1f oversold", snap.RSI))
	case snap.RSI >= rsiDeepOverbought:
		score -= 2.0
		reasons = append(reasons, fmt.Sprintf("RSI %.1f deeply overbought", snap.RSI))
	case snap.RSI >= rsiOverbought:
		score -= 1.5
		reasons = append(reasons, fmt.Sprintf("RSI %.1f overbought", snap.RSI))
	}

	switch snap.MACD.Cross {
	case models.CrossBullish:
		score += 1.5
		reasons = append(reasons, "MACD bullish cross")
	case models.CrossBearish:
		score -= 1.5
		reasons = append(reasons, "MACD bearish cross")
	}

	switch snap.Bollinger.Position {
	case models.BandLower:
		score += 1.0
		reasons = append(reasons, "price at lower Bollinger band")
	case models.BandUpper:
		score -= 1.0
		reasons = append(reasons, "price at upper Bollinger band")
	}

	score = clamp(score, 0, 10)
	rec := recommend(score)
	sigType := binary(rec)

	if sigType != models.SignalHold && g.onCooldown(symbol, sigType, ts) {
		sigType = models.SignalHold
		reasons = append(reasons, "duplicate suppressed by cooldown")
	} else if sigType != models.SignalHold {
		g.markIssued(symbol, sigType, ts)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "no indicator threshold fired")
	}
	reasons = append(reasons, fmt.Sprintf("24h change %.2f%%", changePct))

	return models.Signal{
		Symbol:         symbol,
		Type:           sigType,
		Recommendation: rec,
		Price:          price,
		Score:          score,
		Confidence:     confidence(sigType, score),
		Reason:         strings.Join(reasons, "; "),
		Timestamp:      ts,
	}
}

func recommend(score float64) models.Recommendation {
	switch {
	case score >= strongBuyFloor:
		return models.RecStrongBuy
	case score >= buyFloor:
		return models.RecBuy
	case score >= holdFloor:
		return models.RecHold
	case score >= weakSellFloor:
		return models.RecWeakSell
	default:
		return models.RecSell
	}
}

func binary(rec models.Recommendation) models.SignalType {
	switch rec {
	case models.RecStrongBuy, models.RecBuy:
		return models.SignalBuy
	case models.RecWeakSell, models.RecSell:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

func confidence(t models.SignalType, score float64) float64 {
	switch t {
	case models.SignalBuy:
		return clamp(score/10, 0, 1)
	case models.SignalSell:
		return clamp((10-score)/10, 0, 1)
	default:
		return 0.5
	}
}

func (g *Generator) onCooldown(symbol string, t models.SignalType, ts time.Time) bool {
	if g.cooldown <= 0 {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	last, ok := g.lastIssued[cooldownKey(symbol, t)]
	return ok && ts.Sub(last) < g.cooldown
}

func (g *Generator) markIssued(symbol string, t models.SignalType, ts time.Time) {
	if g.cooldown <= 0 {
		return
	}
	g.mu.Lock()
	g.lastIssued[cooldownKey(symbol, t)] = ts
	g.mu.Unlock()
}

func cooldownKey(symbol string, t models.SignalType) string {
	return symbol + "|" + string(t)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
