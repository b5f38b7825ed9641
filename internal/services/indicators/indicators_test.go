package indicators

import (
	"math"
	"testing"

	"CoinDash/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestRSIFlatSeriesIsNeutral(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 42000
	}

	latest, series := RSI(prices, 14)

	assert.Equal(t, 50.0, latest, "zero net change should read neutral")
	assert.Len(t, series, 1)
}

func TestRSIInsufficientDataFailsSoft(t *testing.T) {
	latest, series := RSI([]float64{1, 2, 3}, 14)

	assert.Equal(t, 50.0, latest)
	assert.Nil(t, series)
}

func TestRSIBounded(t *testing.T) {
	// pseudo-random walk, fixed so the test is reproducible
	prices := []float64{100}
	for i := 1; i < 120; i++ {
		step := math.Sin(float64(i)*1.7) * 3
		prices = append(prices, prices[i-1]+step)
	}

	latest, series := RSI(prices, 14)

	assert.GreaterOrEqual(t, latest, 0.0)
	assert.LessOrEqual(t, latest, 100.0)
	for _, v := range series {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestRSIExtremes(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 100 - float64(i)
	}

	upLatest, _ := RSI(up, 14)
	downLatest, _ := RSI(down, 14)

	assert.InDelta(t, 100.0, upLatest, 1e-6, "pure gains should saturate high")
	assert.InDelta(t, 0.0, downLatest, 1e-6, "pure losses should saturate low")
}

func TestMACDCrossClassification(t *testing.T) {
	rising := make([]float64, 60)
	falling := make([]float64, 60)
	for i := range rising {
		rising[i] = 100 + float64(i)*2
		falling[i] = 300 - float64(i)*2
	}

	bull := MACD(rising, 12, 26, 9)
	assert.Equal(t, models.CrossBullish, bull.Cross)
	assert.Greater(t, bull.MACD, bull.Signal)
	assert.Greater(t, bull.Histogram, 0.0)

	bear := MACD(falling, 12, 26, 9)
	assert.Equal(t, models.CrossBearish, bear.Cross)
	assert.Less(t, bear.MACD, bear.Signal)
	assert.Less(t, bear.Histogram, 0.0)
}

func TestMACDEmptySeriesIsNeutral(t *testing.T) {
	r := MACD(nil, 12, 26, 9)

	assert.Equal(t, models.CrossNeutral, r.Cross)
	assert.Zero(t, r.MACD)
	assert.Zero(t, r.Histogram)
}

func TestMACDHistogramConsistency(t *testing.T) {
	prices := []float64{10, 11, 9, 12, 13, 12.5, 14, 13, 15, 16, 15.5, 17}

	r := MACD(prices, 12, 26, 9)

	assert.InDelta(t, r.MACD-r.Signal, r.Histogram, 1e-12)
}

func TestBollingerPosition(t *testing.T) {
	base := make([]float64, 20)
	for i := range base {
		base[i] = 100 + float64(i%5) // some spread
	}

	low := append(append([]float64{}, base...), 80)
	r := BollingerBands(low, 20, 2)
	assert.Equal(t, models.BandLower, r.Position)
	assert.LessOrEqual(t, low[len(low)-1], r.Lower)

	high := append(append([]float64{}, base...), 130)
	r = BollingerBands(high, 20, 2)
	assert.Equal(t, models.BandUpper, r.Position)
	assert.GreaterOrEqual(t, high[len(high)-1], r.Upper)

	mid := append(append([]float64{}, base...), 102)
	r = BollingerBands(mid, 20, 2)
	assert.Equal(t, models.BandMiddle, r.Position)
}

func TestBollingerInsufficientData(t *testing.T) {
	r := BollingerBands([]float64{1, 2, 3}, 20, 2)

	assert.Equal(t, models.BandNone, r.Position)
	assert.Zero(t, r.Upper)
	assert.Zero(t, r.Middle)
	assert.Zero(t, r.Lower)
}

func TestMovingAverage(t *testing.T) {
	out := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)

	assert.Equal(t, []float64{2, 3, 4}, out)
	assert.Nil(t, MovingAverage([]float64{1, 2}, 3))
}

func TestVolumeOscillator(t *testing.T) {
	vols := []float64{10, 10, 10, 10, 20}
	// trailing average of the 4 preceding volumes is 10, latest is 20
	assert.InDelta(t, 2.0, VolumeOscillator(vols, 4), 1e-12)

	assert.Equal(t, 1.0, VolumeOscillator([]float64{5, 5}, 20), "insufficient data defaults to 1.0")
	assert.Equal(t, 1.0, VolumeOscillator([]float64{0, 0, 0, 0, 0}, 4), "absent volumes default to 1.0")
}

func TestSnapshotDefaults(t *testing.T) {
	prices := make([]float64, 40)
	vols := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + float64(i)
		vols[i] = 1000
	}

	snap := Snapshot(prices, vols)

	assert.Greater(t, snap.RSI, 50.0)
	assert.Equal(t, models.CrossBullish, snap.MACD.Cross)
	assert.NotZero(t, snap.ShortMA)
	assert.NotZero(t, snap.LongMA)
	assert.Greater(t, snap.ShortMA, snap.LongMA, "short MA leads in an uptrend")
	assert.InDelta(t, 1.0, snap.VolumeRatio, 1e-12)
}
