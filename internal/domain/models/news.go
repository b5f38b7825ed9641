package models

import "time"

// NewsItem is a headline fetched from the news collaborator.
type NewsItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// ScoredNews is a headline with its keyword sentiment score attached.
type ScoredNews struct {
	NewsItem
	Score   int      `json:"score"` // positive bullish, negative bearish
	Matched []string `json:"matched,omitempty"`
}

// NewsScore is the aggregate keyword sentiment for a symbol.
type NewsScore struct {
	Symbol    string       `json:"symbol"`
	Sentiment float64      `json:"sentiment"` // -1..1
	Items     []ScoredNews `json:"items"`
	Timestamp time.Time    `json:"timestamp"`
}
