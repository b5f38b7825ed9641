// Package indicators computes technical indicator readings from price and
// volume series. All functions are pure and deterministic: identical input
// slices always produce identical readings, and insufficient data yields a
// neutral reading rather than an error.
package indicators

import (
	"math"

	"CoinDash/internal/domain/models"
)

// Default periods used by Snapshot.
const (
	DefaultRSIPeriod       = 14
	DefaultMACDFast        = 12
	DefaultMACDSlow        = 26
	DefaultMACDSignal      = 9
	DefaultBollingerPeriod = 20
	DefaultBollingerK      = 2.0
	DefaultShortMAPeriod   = 7
	DefaultLongMAPeriod    = 25
	DefaultVolumePeriod    = 20

	// NeutralRSI is returned when the series is too short or has no net
	// movement over the window.
	NeutralRSI = 50.0
)

const epsilon = 1e-10

// RSI computes the Relative Strength Index with Wilder smoothing. The first
// average gain/loss is a simple mean over the first period deltas; later
// values use avg = (avg*(period-1) + x) / period. It returns the latest
// value and the trailing series (one value per index >= period). When the
// series is shorter than period+1 it returns the neutral reading and a nil
// series.
func RSI(prices []float64, period int) (float64, []float64) {
	if period <= 0 || len(prices) < period+1 {
		return NeutralRSI, nil
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change >= 0 {
			gainSum += change
		} else {
			lossSum += -change
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	series := make([]float64, 0, len(prices)-period)
	series = append(series, rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		series = append(series, rsiValue(avgGain, avgLoss))
	}

	return series[len(series)-1], series
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgGain < epsilon && avgLoss < epsilon {
		// zero net change in both directions: RS undefined, neutral by
		// convention
		return NeutralRSI
	}
	rs := avgGain / math.Max(avgLoss, epsilon)
	return 100 - 100/(1+rs)
}

// MACD computes the MACD triple over the full series using exponential
// moving averages with smoothing k = 2/(n+1), seeded by the first raw
// value. The cross state is bullish only when the MACD line is above the
// signal line with a positive histogram, bearish only in the symmetric
// case, and neutral otherwise.
func MACD(prices []float64, fast, slow, signal int) models.MACDResult {
	if len(prices) == 0 {
		return models.MACDResult{Cross: models.CrossNeutral}
	}

	emaFast := ema(prices, fast)
	emaSlow := ema(prices, slow)

	macdLine := make([]float64, len(prices))
	for i := range prices {
		macdLine[i] = emaFast[i] - emaSlow[i]
	}
	signalLine := ema(macdLine, signal)

	last := len(prices) - 1
	r := models.MACDResult{
		MACD:      macdLine[last],
		Signal:    signalLine[last],
		Histogram: macdLine[last] - signalLine[last],
	}
	switch {
	case r.MACD > r.Signal && r.Histogram > 0:
		r.Cross = models.CrossBullish
	case r.MACD < r.Signal && r.Histogram < 0:
		r.Cross = models.CrossBearish
	default:
		r.Cross = models.CrossNeutral
	}
	return r
}

// ema returns the exponential moving average series seeded by the first raw
// value (not a period-based simple-average seed).
func ema(xs []float64, period int) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	k := 2.0 / (float64(period) + 1)
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = xs[i]*k + out[i-1]*(1-k)
	}
	return out
}

// BollingerBands computes a simple moving average and population standard
// deviation over the last period prices; upper/lower are the middle band
// plus/minus k sigma. With fewer than period prices the bands are zeroed
// and the position is BandNone.
func BollingerBands(prices []float64, period int, k float64) models.BollingerResult {
	if period <= 0 || len(prices) < period {
		return models.BollingerResult{Position: models.BandNone}
	}

	window := prices[len(prices)-period:]
	var sum float64
	for _, p := range window {
		sum += p
	}
	mean := sum / float64(period)

	var variance float64
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	sigma := math.Sqrt(variance / float64(period))

	r := models.BollingerResult{
		Upper:  mean + k*sigma,
		Middle: mean,
		Lower:  mean - k*sigma,
	}
	last := prices[len(prices)-1]
	switch {
	case last <= r.Lower:
		r.Position = models.BandLower
	case last >= r.Upper:
		r.Position = models.BandUpper
	default:
		r.Position = models.BandMiddle
	}
	return r
}

// MovingAverage returns the trailing simple moving average series (one
// value per index >= period-1), or nil when the series is too short.
func MovingAverage(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	out := make([]float64, 0, len(prices)-period+1)
	var sum float64
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// VolumeOscillator returns the ratio of the latest volume to the trailing
// period-average of the preceding volumes. It defaults to 1.0 when there is
// not enough data or volumes are absent.
func VolumeOscillator(volumes []float64, period int) float64 {
	if period <= 0 || len(volumes) < period+1 {
		return 1.0
	}
	window := volumes[len(volumes)-1-period : len(volumes)-1]
	var sum float64
	for _, v := range window {
		sum += v
	}
	avg := sum / float64(period)
	if avg <= 0 {
		return 1.0
	}
	return volumes[len(volumes)-1] / avg
}

// Snapshot computes the full indicator set at the latest index of the
// series using the default periods.
func Snapshot(prices, volumes []float64) models.IndicatorSnapshot {
	snap := models.IndicatorSnapshot{
		MACD:        MACD(prices, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal),
		Bollinger:   BollingerBands(prices, DefaultBollingerPeriod, DefaultBollingerK),
		VolumeRatio: VolumeOscillator(volumes, DefaultVolumePeriod),
	}
	snap.RSI, _ = RSI(prices, DefaultRSIPeriod)
	if ma := MovingAverage(prices, DefaultShortMAPeriod); len(ma) > 0 {
		snap.ShortMA = ma[len(ma)-1]
	}
	if ma := MovingAverage(prices, DefaultLongMAPeriod); len(ma) > 0 {
		snap.LongMA = ma[len(ma)-1]
	}
	return snap
}
