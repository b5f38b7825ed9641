package api

import (
	"time"

	"github.com/labstack/echo/v4"

	models "CoinDash/internal/domain/models"
	domrepo "CoinDash/internal/domain/repository"
	domsvc "CoinDash/internal/domain/service"
	"CoinDash/internal/usecase"
	xhttp "CoinDash/pkg/http"
	xlogger "CoinDash/pkg/logger"
)

// DashboardHandler implements the Echo-based HTTP surface of the dashboard:
// backtests (sync and queued), historical series, quotes, news sentiment
// and portfolio valuation.
type DashboardHandler struct {
	logger    *xlogger.Logger
	backtests *usecase.BacktestJobUseCase
	candles   *usecase.CandlesUseCase
	portfolio *usecase.PortfolioUseCase
	quotes    domsvc.QuoteProvider
	news      *usecase.NewsUseCase
}

func NewDashboardHandler(
	logger *xlogger.Logger,
	backtests *usecase.BacktestJobUseCase,
	candles *usecase.CandlesUseCase,
	portfolio *usecase.PortfolioUseCase,
	quotes domsvc.QuoteProvider,
	news *usecase.NewsUseCase,
) *DashboardHandler {
	return &DashboardHandler{
		logger:    logger,
		backtests: backtests,
		candles:   candles,
		portfolio: portfolio,
		quotes:    quotes,
		news:      news,
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.POST("/backtest/run", h.RunBacktest)
	g.POST("/backtest/enqueue", h.EnqueueBacktest)
	g.GET("/backtest/:id", h.BacktestStatus)
	g.GET("/candles", h.Candles)
	g.GET("/quote", h.Quote)
	g.GET("/news/score", h.NewsScore)
	g.POST("/portfolio/value", h.PortfolioValue)
}

// Health reports process liveness.
func (h *DashboardHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// RunBacktest executes a run inline and returns the full result.
func (h *DashboardHandler) RunBacktest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	cfg, err := backtestConfig(req)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}

	res, err := h.backtests.RunSync(c.Request().Context(), cfg, req.Synthetic, req.Seed)
	if err != nil {
		h.logger.Error("backtest run error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// EnqueueBacktest submits a run to the queue and returns its ID.
func (h *DashboardHandler) EnqueueBacktest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	cfg, err := backtestConfig(req)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}

	id, err := h.backtests.Enqueue(c.Request().Context(), cfg, req.Synthetic, req.Seed)
	if err != nil {
		h.logger.Error("backtest enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, map[string]string{"id": id})
}

// BacktestStatus returns the state, progress and (when done) result of a
// queued run.
func (h *DashboardHandler) BacktestStatus(c echo.Context) error {
	id := c.Param("id")
	rec, ok := h.backtests.Status(id)
	if !ok {
		return xhttp.NotFoundResponse(c, "run not found")
	}
	return xhttp.SuccessResponse(c, rec)
}

// Candles returns the stored historical series for a symbol.
func (h *DashboardHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now().UTC()
	params := usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		From:      xhttp.ParseTimeDefault(req.From, now.AddDate(0, 0, -90)),
		To:        xhttp.ParseTimeDefault(req.To, now),
		Timeframe: domrepo.NormalizeTimeframe(req.TF),
		Limit:     req.Limit,
	}
	res, err := h.candles.GetCandles(c.Request().Context(), params)
	if err != nil {
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

// Quote returns the latest spot quote for a symbol.
func (h *DashboardHandler) Quote(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	q, err := h.quotes.Quote(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("quote error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.SuccessResponse(c, q)
}

// NewsScore returns the aggregate keyword sentiment for a symbol.
func (h *DashboardHandler) NewsScore(c echo.Context) error {
	req := &models.NewsScoreRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.news.Score(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		h.logger.Error("news score error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// PortfolioValue marks submitted holdings at current quotes.
func (h *DashboardHandler) PortfolioValue(c echo.Context) error {
	req := &models.PortfolioValueRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	positions := make([]usecase.Position, 0, len(req.Positions))
	for _, p := range req.Positions {
		positions = append(positions, usecase.Position{
			Symbol:   p.Symbol,
			Quantity: p.Quantity,
			AvgCost:  p.AvgCost,
		})
	}
	res, err := h.portfolio.Value(c.Request().Context(), req.Cash, positions)
	if err != nil {
		h.logger.Error("portfolio value error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func backtestConfig(req *models.BacktestRequest) (models.BacktestConfig, error) {
	start, ok := xhttp.ParseTime(req.Start)
	if !ok {
		return models.BacktestConfig{}, xhttp.BadRequestError("start must be a valid timestamp")
	}
	end, ok := xhttp.ParseTime(req.End)
	if !ok {
		return models.BacktestConfig{}, xhttp.BadRequestError("end must be a valid timestamp")
	}
	if !end.After(start) {
		return models.BacktestConfig{}, xhttp.BadRequestError("end must be after start")
	}

	cfg := models.BacktestConfig{
		Symbols:        req.Symbols,
		Strategy:       req.Strategy,
		Start:          start,
		End:            end,
		InitialCapital: req.InitialCapital,
		Sizing: models.Sizing{
			BuyFraction:    req.BuyFraction,
			MaxBuyNotional: req.MaxBuyNotional,
			SellFraction:   req.SellFraction,
		},
	}
	cfg.Normalize()
	return cfg, nil
}
