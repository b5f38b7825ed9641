package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"CoinDash/internal/domain/models"
	drepo "CoinDash/internal/domain/repository"
	"CoinDash/internal/services/indicators"
	"CoinDash/internal/services/performance"
	"CoinDash/internal/services/signals"
	"CoinDash/pkg/logger"
)

// Hooks are optional fire-and-forget observers called during a run. They
// receive copies, never live state, and a panicking hook is recovered and
// logged without aborting the simulation.
type Hooks struct {
	OnProgress func(percent int)
	OnSignal   func(sig models.Signal)
	OnTrade    func(trade models.Trade)
}

// Backtest replays a merged multi-symbol historical series through the
// indicator/signal pipeline against a simulated portfolio. The replay is
// single-threaded: each step fully settles before the next begins, and the
// portfolio and trade log are owned exclusively by the running simulation.
type Backtest struct {
	history drepo.HistoryStore
	events  drepo.EventPublisher
	metrics drepo.Metrics
	log     *logger.Logger

	mu    sync.RWMutex
	state models.RunState
}

func NewBacktest(history drepo.HistoryStore, events drepo.EventPublisher, metrics drepo.Metrics, log *logger.Logger) *Backtest {
	return &Backtest{
		history: history,
		events:  events,
		metrics: metrics,
		log:     log,
		state:   models.RunIdle,
	}
}

// State returns the lifecycle state of the most recent run.
func (b *Backtest) State() models.RunState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Backtest) setState(s models.RunState) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
	if b.metrics != nil {
		b.metrics.RecordRunState(string(s))
	}
}

// timedPoint tags a price point with its symbol for the merged replay.
type timedPoint struct {
	symbol string
	point  models.PricePoint
}

// symbolSeries is the growing per-symbol view handed to the indicators.
type symbolSeries struct {
	prices  []float64
	volumes []float64
	times   []time.Time
}

// Run executes one simulation to completion. Context cancellation is
// checked once per step; a cancelled run ends Failed with ctx.Err().
// Loading failures for a single symbol are logged and skipped; the run
// continues with the remaining symbols.
func (b *Backtest) Run(ctx context.Context, cfg models.BacktestConfig, hooks Hooks) (models.BacktestResult, error) {
	cfg.Normalize()
	b.setState(models.RunRunning)

	merged, err := b.loadMerged(ctx, cfg)
	if err != nil {
		b.setState(models.RunFailed)
		return models.BacktestResult{}, err
	}

	portfolio := models.NewPortfolio(cfg.InitialCapital)
	gen := signals.NewGenerator()
	series := make(map[string]*symbolSeries)

	var (
		trades       []models.Trade
		sigs         []models.Signal
		equity       []models.EquityPoint
		lastProgress = -1
	)

	total := len(merged)
	for i, tp := range merged {
		if err := ctx.Err(); err != nil {
			b.setState(models.RunFailed)
			return models.BacktestResult{}, fmt.Errorf("backtest cancelled: %w", err)
		}

		ss := series[tp.symbol]
		if ss == nil {
			ss = &symbolSeries{}
			series[tp.symbol] = ss
		}
		ss.prices = append(ss.prices, tp.point.Price)
		ss.volumes = append(ss.volumes, tp.point.Volume)
		ss.times = append(ss.times, tp.point.Timestamp)

		snap := indicators.Snapshot(ss.prices, ss.volumes)
		sig := gen.Evaluate(tp.symbol, snap, tp.point.Price, ss.change24h(), tp.point.Timestamp)
		sigs = append(sigs, sig)
		b.observeSignal(ctx, sig, hooks)

		switch sig.Type {
		case models.SignalBuy:
			trade, reason := executeBuy(portfolio, cfg.Sizing, tp.symbol, tp.point.Price, tp.point.Timestamp)
			if trade == nil {
				b.log.Debug("buy rejected",
					logger.String("symbol", tp.symbol),
					logger.String("reason", reason))
			} else {
				trade.ID = fmt.Sprintf("bt-%d", len(trades)+1)
				trades = append(trades, *trade)
				b.observeTrade(ctx, *trade, hooks)
			}
		case models.SignalSell:
			trade, reason := executeSell(portfolio, cfg.Sizing, tp.symbol, tp.point.Price, tp.point.Timestamp)
			if trade == nil {
				b.log.Debug("sell rejected",
					logger.String("symbol", tp.symbol),
					logger.String("reason", reason))
			} else {
				trade.ID = fmt.Sprintf("bt-%d", len(trades)+1)
				trades = append(trades, *trade)
				b.observeTrade(ctx, *trade, hooks)
			}
		}

		markToMarket(portfolio, tp.symbol, tp.point.Price)
		if b.metrics != nil {
			b.metrics.RecordLastPrice(tp.symbol, tp.point.Price)
		}

		if err := checkInvariants(portfolio); err != nil {
			b.setState(models.RunFailed)
			return models.BacktestResult{}, err
		}

		equity = append(equity, models.EquityPoint{
			Timestamp: tp.point.Timestamp,
			Value:     portfolio.Value(),
		})

		if p := int(math.Round(float64(i+1) / float64(total) * 100)); p != lastProgress {
			lastProgress = p
			b.callHook(func() {
				if hooks.OnProgress != nil {
					hooks.OnProgress(p)
				}
			})
		}
	}

	result := performance.Calculate(performance.Input{
		InitialCapital: cfg.InitialCapital,
		Portfolio:      portfolio,
		Trades:         trades,
		Signals:        sigs,
		Equity:         equity,
	})

	b.setState(models.RunCompleted)
	b.log.Info("backtest completed",
		logger.Int("steps", total),
		logger.Int("trades", result.TotalTrades),
		logger.Float64("total_return", result.TotalReturn))
	return result, nil
}

// loadMerged fetches the series of every configured symbol and merges them
// into one ascending-by-timestamp stream. A symbol whose load fails is
// skipped. The run errors only when no symbols were configured at all.
func (b *Backtest) loadMerged(ctx context.Context, cfg models.BacktestConfig) ([]timedPoint, error) {
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("backtest: no symbols configured")
	}

	var merged []timedPoint
	for _, symbol := range cfg.Symbols {
		points, err := b.history.GetSeries(ctx, symbol, cfg.Start, cfg.End, drepo.DefaultTimeframe())
		if err != nil {
			b.log.Warn("skipping symbol, history load failed",
				logger.String("symbol", symbol),
				logger.Error(err))
			if b.metrics != nil {
				b.metrics.RecordError("history_load")
			}
			continue
		}
		for _, p := range points {
			merged = append(merged, timedPoint{symbol: symbol, point: p})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].point.Timestamp.Before(merged[j].point.Timestamp)
	})
	return merged, nil
}

// change24h is the percent move vs the most recent point at least 24h older
// than the latest, 0 when the series is too short.
func (s *symbolSeries) change24h() float64 {
	n := len(s.times)
	if n < 2 {
		return 0
	}
	cutoff := s.times[n-1].Add(-24 * time.Hour)
	for i := n - 2; i >= 0; i-- {
		if !s.times[i].After(cutoff) {
			if s.prices[i] == 0 {
				return 0
			}
			return (s.prices[n-1] - s.prices[i]) / s.prices[i] * 100
		}
	}
	return 0
}

// executeBuy invests min(cash*BuyFraction, MaxBuyNotional) at the given
// price and folds the purchase into the holding's weighted-average cost.
// A non-positive notional rejects the trade.
func executeBuy(p *models.Portfolio, sizing models.Sizing, symbol string, price float64, ts time.Time) (*models.Trade, string) {
	notional := math.Min(p.Cash*sizing.BuyFraction, sizing.MaxBuyNotional)
	if notional <= 0 || price <= 0 {
		return nil, models.RejectInsufficientBuySize
	}

	quantity := notional / price
	p.Cash -= notional

	h := p.Holdings[symbol]
	h.AverageCost = (h.Quantity*h.AverageCost + notional) / (h.Quantity + quantity)
	h.Quantity += quantity
	h.LastPrice = price
	p.Holdings[symbol] = h

	return &models.Trade{
		Symbol:    symbol,
		Side:      models.SideBuy,
		Quantity:  quantity,
		Price:     price,
		Timestamp: ts,
	}, ""
}

// executeSell liquidates SellFraction of the current holding. The average
// cost is left untouched; only BUY moves it.
func executeSell(p *models.Portfolio, sizing models.Sizing, symbol string, price float64, ts time.Time) (*models.Trade, string) {
	h, ok := p.Holdings[symbol]
	if !ok || h.Quantity <= 0 {
		return nil, models.RejectNoHolding
	}

	quantity := h.Quantity * sizing.SellFraction
	p.Cash += quantity * price
	avgCost := h.AverageCost

	h.Quantity -= quantity
	h.LastPrice = price
	p.Holdings[symbol] = h

	return &models.Trade{
		Symbol:        symbol,
		Side:          models.SideSell,
		Quantity:      quantity,
		Price:         price,
		Timestamp:     ts,
		ProfitRate:    (price - avgCost) / avgCost * 100,
		AvgCostAtSale: avgCost,
	}, ""
}

func markToMarket(p *models.Portfolio, symbol string, price float64) {
	if h, ok := p.Holdings[symbol]; ok {
		h.LastPrice = price
		p.Holdings[symbol] = h
	}
}

// checkInvariants catches state the sizing rules make impossible. Hitting
// one means a bug, and the run aborts instead of producing garbage metrics.
func checkInvariants(p *models.Portfolio) error {
	if p.Cash < 0 {
		return &models.InvariantViolationError{Op: "execute", Detail: fmt.Sprintf("negative cash %.4f", p.Cash)}
	}
	for sym, h := range p.Holdings {
		if h.Quantity < 0 {
			return &models.InvariantViolationError{Op: "execute", Detail: fmt.Sprintf("negative quantity %.8f for %s", h.Quantity, sym)}
		}
	}
	return nil
}

func (b *Backtest) observeSignal(ctx context.Context, sig models.Signal, hooks Hooks) {
	if b.metrics != nil {
		b.metrics.RecordSignal(sig.Symbol, string(sig.Type))
	}
	if b.events != nil {
		if err := b.events.PublishSignal(ctx, &sig); err != nil {
			b.log.Warn("signal publish failed", logger.Error(err))
		}
	}
	b.callHook(func() {
		if hooks.OnSignal != nil {
			hooks.OnSignal(sig)
		}
	})
}

func (b *Backtest) observeTrade(ctx context.Context, trade models.Trade, hooks Hooks) {
	if b.metrics != nil {
		b.metrics.RecordTrade(trade.Symbol, string(trade.Side))
	}
	if b.events != nil {
		if err := b.events.PublishTrade(ctx, &trade); err != nil {
			b.log.Warn("trade publish failed", logger.Error(err))
		}
	}
	b.callHook(func() {
		if hooks.OnTrade != nil {
			hooks.OnTrade(trade)
		}
	})
}

// callHook shields the replay from observer panics.
func (b *Backtest) callHook(f func()) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn("observer hook panicked", logger.Any("panic", r))
		}
	}()
	f()
}
