package models

// MACDCross classifies the relationship between the MACD and signal lines.
type MACDCross string

const (
	CrossBullish MACDCross = "bullish"
	CrossBearish MACDCross = "bearish"
	CrossNeutral MACDCross = "neutral"
)

// BandPosition classifies the latest price relative to the Bollinger bands.
type BandPosition string

const (
	BandUpper  BandPosition = "upper"
	BandLower  BandPosition = "lower"
	BandMiddle BandPosition = "middle"
	BandNone   BandPosition = "none" // insufficient data
)

// MACDResult holds the MACD line triple and the derived cross state.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
	Cross     MACDCross
}

// BollingerResult holds the band triple and the derived price position.
type BollingerResult struct {
	Upper    float64
	Middle   float64
	Lower    float64
	Position BandPosition
}

// IndicatorSnapshot is the full set of indicator readings computed at one
// time index. It has no identity of its own and is recomputed on demand
// from a PricePoint window.
type IndicatorSnapshot struct {
	RSI         float64 // 0..100, 50 when neutral/insufficient
	MACD        MACDResult
	Bollinger   BollingerResult
	ShortMA     float64
	LongMA      float64
	VolumeRatio float64 // latest volume / trailing average, 1.0 when unknown
}
