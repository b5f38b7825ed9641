// Package performance derives aggregate statistics from a completed
// simulation: total and annualized return, FIFO-matched round trips, win
// rate, drawdown and a Sharpe-like ratio from the realized equity curve.
// Everything here is a pure function of its input; running it twice over
// the same trade log yields identical results.
package performance

import (
	"math"
	"time"

	"CoinDash/internal/domain/models"
)

const msPerDay = 86_400_000

// Input bundles what the simulator hands over when a run completes.
type Input struct {
	InitialCapital float64
	Portfolio      *models.Portfolio
	Trades         []models.Trade
	Signals        []models.Signal
	Equity         []models.EquityPoint
}

// Calculate post-processes one finished run. With no executed trades it
// returns a fully zeroed result with the signal log passed through.
func Calculate(in Input) models.BacktestResult {
	res := models.BacktestResult{
		Trades:     []models.Trade{},
		Signals:    in.Signals,
		TradePairs: []models.TradePair{},
	}
	if res.Signals == nil {
		res.Signals = []models.Signal{}
	}
	if len(in.Trades) == 0 || in.InitialCapital <= 0 {
		return res
	}

	finalValue := in.InitialCapital
	if in.Portfolio != nil {
		finalValue = in.Portfolio.Value()
	}

	res.Trades = in.Trades
	res.TotalTrades = len(in.Trades)
	res.TotalReturn = (finalValue - in.InitialCapital) / in.InitialCapital * 100

	pairs := MatchFIFO(in.Trades)
	res.TradePairs = pairs

	var holdingSum float64
	for _, p := range pairs {
		if p.ProfitRate > 0 {
			res.WinTrades++
		}
		holdingSum += float64(p.HoldingDays)
	}
	if len(pairs) > 0 {
		res.WinRate = float64(res.WinTrades) / float64(len(pairs)) * 100
		res.AvgHoldingPeriod = holdingSum / float64(len(pairs))
	}

	days := backtestDays(in.Trades)
	res.AnnualizedReturn = (math.Pow(finalValue/in.InitialCapital, 365/float64(days)) - 1) * 100
	res.TradingFrequency = float64(res.TotalTrades) / float64(days) * 30

	res.MaxDrawdown = MaxDrawdown(in.Equity)
	res.SharpeRatio = SharpeRatio(in.Equity)

	return res
}

// MatchFIFO pairs each SELL against the oldest open buy lots of its symbol,
// splitting lots when a sell is smaller than the front lot. One TradePair
// is produced per consumed (partial) lot.
func MatchFIFO(trades []models.Trade) []models.TradePair {
	type lot struct {
		quantity float64
		price    float64
		ts       time.Time
	}
	open := make(map[string][]lot)
	pairs := []models.TradePair{}

	for _, t := range trades {
		switch t.Side {
		case models.SideBuy:
			open[t.Symbol] = append(open[t.Symbol], lot{t.Quantity, t.Price, t.Timestamp})

		case models.SideSell:
			remaining := t.Quantity
			queue := open[t.Symbol]
			for remaining > 0 && len(queue) > 0 {
				front := &queue[0]
				qty := math.Min(front.quantity, remaining)

				pairs = append(pairs, models.TradePair{
					Symbol:      t.Symbol,
					BuyPrice:    front.price,
					SellPrice:   t.Price,
					Quantity:    qty,
					ProfitRate:  (t.Price - front.price) / front.price * 100,
					HoldingDays: ceilDays(t.Timestamp.Sub(front.ts)),
					Profit:      qty * (t.Price - front.price),
				})

				front.quantity -= qty
				remaining -= qty
				if front.quantity <= 0 {
					queue = queue[1:]
				}
			}
			open[t.Symbol] = queue
		}
	}
	return pairs
}

// MaxDrawdown is the largest peak-to-trough percentage decline of the
// realized equity curve. Positive number, 0 when the curve never declines.
func MaxDrawdown(equity []models.EquityPoint) float64 {
	var peak, maxDD float64
	for _, pt := range equity {
		if pt.Value > peak {
			peak = pt.Value
		}
		if peak > 0 {
			dd := (peak - pt.Value) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// SharpeRatio is the annualized mean/stddev of per-step equity returns
// (sqrt(365) scaling for daily steps). Returns 0 with fewer than three
// curve points or zero volatility.
func SharpeRatio(equity []models.EquityPoint) float64 {
	if len(equity) < 3 {
		return 0
	}
	rets := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value
		if prev <= 0 {
			continue
		}
		rets = append(rets, (equity[i].Value-prev)/prev)
	}
	if len(rets) < 2 {
		return 0
	}

	var sum float64
	for _, r := range rets {
		sum += r
	}
	mean := sum / float64(len(rets))

	var variance float64
	for _, r := range rets {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(rets) - 1)
	if variance <= 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(365)
}

// backtestDays spans first to last trade, minimum one day.
func backtestDays(trades []models.Trade) int {
	first := trades[0].Timestamp
	last := trades[len(trades)-1].Timestamp
	d := ceilDays(last.Sub(first))
	if d < 1 {
		return 1
	}
	return d
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d.Milliseconds()) / msPerDay))
}
