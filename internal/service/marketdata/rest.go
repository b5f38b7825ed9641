package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"CoinDash/internal/domain/models"
	domsvc "CoinDash/internal/domain/service"
	icache "CoinDash/internal/service/cache"
	"CoinDash/internal/service/ratelimit"
	xhttp "CoinDash/pkg/http"
)

const (
	rateKey        = "marketdata_rest"
	defaultRetries = 3
)

// RESTClient serves quotes and headlines over the exchange REST API. Calls
// are rate limited with a token bucket, cached with a short TTL, and retried
// with exponential backoff on transient failures.
type RESTClient struct {
	http       *xhttp.Client
	baseURL    string
	apiKey     string
	limiter    *ratelimit.Limiter
	cache      *icache.TTLCache
	ratePerSec float64
	burst      float64
	quoteTTL   time.Duration
	newsTTL    time.Duration
}

var (
	_ domsvc.QuoteProvider = (*RESTClient)(nil)
	_ domsvc.NewsProvider  = (*RESTClient)(nil)
)

type RESTConfig struct {
	BaseURL        string
	APIKey         string
	RequestsPerMin int
	QuoteCacheTTL  time.Duration
	NewsCacheTTL   time.Duration
	Timeout        time.Duration
}

func NewRESTClient(cfg RESTConfig) *RESTClient {
	if cfg.RequestsPerMin <= 0 {
		cfg.RequestsPerMin = 60
	}
	if cfg.QuoteCacheTTL <= 0 {
		cfg.QuoteCacheTTL = 10 * time.Second
	}
	if cfg.NewsCacheTTL <= 0 {
		cfg.NewsCacheTTL = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &RESTClient{
		http:       xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		limiter:    ratelimit.New(),
		cache:      icache.NewTTLCache(),
		ratePerSec: float64(cfg.RequestsPerMin) / 60.0,
		burst:      float64(cfg.RequestsPerMin),
		quoteTTL:   cfg.QuoteCacheTTL,
		newsTTL:    cfg.NewsCacheTTL,
	}
}

type quotePayload struct {
	C float64 `json:"c"`  // current price
	D float64 `json:"dp"` // 24h change percent
	T int64   `json:"t"`  // unix seconds
}

// Quote returns the spot quote for a symbol, from cache when fresh.
func (c *RESTClient) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	key := "quote:" + symbol
	if v, ok := c.cache.Get(key); ok {
		if q, ok2 := v.(models.Quote); ok2 {
			return q, nil
		}
	}
	if !c.limiter.Allow(rateKey, c.burst, c.ratePerSec) {
		return models.Quote{}, fmt.Errorf("quote %s: rate limit exceeded", symbol)
	}

	var payload quotePayload
	err := c.retry(ctx, func() error {
		return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    c.baseURL + "/quote",
			QueryParams: map[string][]string{
				"symbol": {symbol},
				"token":  {c.apiKey},
			},
		}, &payload)
	})
	if err != nil {
		return models.Quote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}

	q := models.Quote{
		Symbol:    symbol,
		Price:     payload.C,
		Change24h: payload.D,
		Timestamp: time.Unix(payload.T, 0),
	}
	if q.Timestamp.IsZero() || payload.T == 0 {
		q.Timestamp = time.Now()
	}
	c.cache.Set(key, q, c.quoteTTL)
	return q, nil
}

type newsPayload struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"` // unix seconds
}

// Latest returns up to limit recent headlines for a symbol.
func (c *RESTClient) Latest(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 20
	}
	key := fmt.Sprintf("news:%s:%d", symbol, limit)
	if v, ok := c.cache.Get(key); ok {
		if items, ok2 := v.([]models.NewsItem); ok2 {
			return items, nil
		}
	}
	if !c.limiter.Allow(rateKey, c.burst, c.ratePerSec) {
		return nil, fmt.Errorf("news %s: rate limit exceeded", symbol)
	}

	var payload []newsPayload
	err := c.retry(ctx, func() error {
		return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    c.baseURL + "/news",
			QueryParams: map[string][]string{
				"symbol": {symbol},
				"token":  {c.apiKey},
			},
		}, &payload)
	})
	if err != nil {
		return nil, fmt.Errorf("news %s: %w", symbol, err)
	}

	if len(payload) > limit {
		payload = payload[:limit]
	}
	items := make([]models.NewsItem, 0, len(payload))
	for _, n := range payload {
		items = append(items, models.NewsItem{
			Title:       n.Headline,
			Summary:     n.Summary,
			Source:      n.Source,
			URL:         n.URL,
			PublishedAt: time.Unix(n.Datetime, 0),
		})
	}
	c.cache.Set(key, items, c.newsTTL)
	return items, nil
}

func (c *RESTClient) retry(ctx context.Context, op func() error) error {
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), defaultRetries), ctx)
	return backoff.Retry(op, bo)
}
