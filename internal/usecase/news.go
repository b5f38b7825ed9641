package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CoinDash/internal/domain/models"
	domsvc "CoinDash/internal/domain/service"
)

// Keyword lists for headline sentiment. Matching is case-insensitive on
// title and summary; each hit counts once per headline.
var (
	bullishKeywords = []string{
		"surge", "rally", "soar", "gain", "bullish", "breakout", "adoption",
		"approval", "etf", "partnership", "upgrade", "all-time high", "record high",
		"institutional", "accumulation",
	}
	bearishKeywords = []string{
		"crash", "plunge", "dump", "bearish", "sell-off", "selloff", "hack",
		"exploit", "lawsuit", "ban", "regulation crackdown", "liquidation",
		"bankruptcy", "fraud", "delisting",
	}
)

// NewsUseCase scores recent headlines for a symbol into an aggregate
// keyword sentiment.
type NewsUseCase struct {
	provider domsvc.NewsProvider
}

func NewNewsUseCase(provider domsvc.NewsProvider) *NewsUseCase {
	return &NewsUseCase{provider: provider}
}

// Score fetches up to limit headlines and grades each against the keyword
// lists. Sentiment is the net score normalized to [-1, 1].
func (uc *NewsUseCase) Score(ctx context.Context, symbol string, limit int) (*models.NewsScore, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	items, err := uc.provider.Latest(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}

	res := &models.NewsScore{
		Symbol:    symbol,
		Items:     make([]models.ScoredNews, 0, len(items)),
		Timestamp: time.Now(),
	}

	var total, possible int
	for _, item := range items {
		scored := scoreHeadline(item)
		total += scored.Score
		possible++
		res.Items = append(res.Items, scored)
	}
	if possible > 0 {
		s := float64(total) / float64(possible)
		// one headline contributes at most +/-1 after clamping
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		res.Sentiment = s
	}
	return res, nil
}

func scoreHeadline(item models.NewsItem) models.ScoredNews {
	text := strings.ToLower(item.Title + " " + item.Summary)
	scored := models.ScoredNews{NewsItem: item}
	for _, kw := range bullishKeywords {
		if strings.Contains(text, kw) {
			scored.Score++
			scored.Matched = append(scored.Matched, kw)
		}
	}
	for _, kw := range bearishKeywords {
		if strings.Contains(text, kw) {
			scored.Score--
			scored.Matched = append(scored.Matched, kw)
		}
	}
	return scored
}
