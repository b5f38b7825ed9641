package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"CoinDash/internal/domain/models"
	drepo "CoinDash/internal/domain/repository"
	icache "CoinDash/internal/service/cache"
	pkgcache "CoinDash/pkg/cache"
	applogger "CoinDash/pkg/logger"
	"CoinDash/pkg/queue"
)

// BacktestJobType is the queue message type for asynchronous runs.
const BacktestJobType = "backtest.run"

// BacktestRunRequest is the enqueued payload for one asynchronous run.
type BacktestRunRequest struct {
	ID        string                `json:"id"`
	Config    models.BacktestConfig `json:"config"`
	Synthetic bool                  `json:"synthetic"`
	Seed      int64                 `json:"seed"`
}

// RunRecord is the queryable status of an asynchronous run.
type RunRecord struct {
	ID          string                 `json:"id"`
	State       models.RunState        `json:"state"`
	Progress    int                    `json:"progress"`
	Result      *models.BacktestResult `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
	SubmittedAt time.Time              `json:"submitted_at"`
	FinishedAt  *time.Time             `json:"finished_at,omitempty"`
}

// RunStore keeps run records queryable for a bounded time after completion.
// With a shared cache attached, records are written through to Redis so
// status stays queryable across replicas and restarts.
type RunStore struct {
	mem    *icache.TTLCache
	shared pkgcache.Service
	ttl    time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RunStore{mem: icache.NewTTLCache(), ttl: ttl}
}

// NewSharedRunStore creates a run store that writes through to the given
// cache in addition to process memory.
func NewSharedRunStore(shared pkgcache.Service, ttl time.Duration) *RunStore {
	s := NewRunStore(ttl)
	s.shared = shared
	return s
}

func runKey(id string) string { return "runs:" + id }

func (s *RunStore) Put(rec *RunRecord) {
	s.mem.Set(rec.ID, rec, s.ttl)
	if s.shared != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.shared.Set(ctx, runKey(rec.ID), rec, s.ttl)
	}
}

func (s *RunStore) Get(id string) (*RunRecord, bool) {
	if v, ok := s.mem.Get(id); ok {
		if rec, ok := v.(*RunRecord); ok {
			return rec, true
		}
	}
	if s.shared != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		var rec RunRecord
		if err := s.shared.Get(ctx, runKey(id), &rec); err == nil {
			return &rec, true
		}
	}
	return nil, false
}

// BacktestJobUseCase enqueues runs and executes them off the Redis queue.
type BacktestJobUseCase struct {
	publisher queue.QueueService
	history   drepo.HistoryStore
	synthetic func(seed int64) drepo.HistoryStore
	events    drepo.EventPublisher
	metrics   drepo.Metrics
	store     *RunStore
	log       *applogger.Logger
}

func NewBacktestJobUseCase(
	publisher queue.QueueService,
	history drepo.HistoryStore,
	synthetic func(seed int64) drepo.HistoryStore,
	events drepo.EventPublisher,
	metrics drepo.Metrics,
	store *RunStore,
	log *applogger.Logger,
) *BacktestJobUseCase {
	return &BacktestJobUseCase{
		publisher: publisher,
		history:   history,
		synthetic: synthetic,
		events:    events,
		metrics:   metrics,
		store:     store,
		log:       log,
	}
}

// Enqueue submits a run and returns its queryable ID.
func (uc *BacktestJobUseCase) Enqueue(ctx context.Context, cfg models.BacktestConfig, synthetic bool, seed int64) (string, error) {
	if synthetic && uc.synthetic == nil {
		return "", fmt.Errorf("synthetic data source not enabled")
	}
	req := BacktestRunRequest{
		ID:        uuid.NewString(),
		Config:    cfg,
		Synthetic: synthetic,
		Seed:      seed,
	}
	uc.store.Put(&RunRecord{
		ID:          req.ID,
		State:       models.RunIdle,
		SubmittedAt: time.Now(),
	})
	if err := uc.publisher.PublishMessage(ctx, BacktestJobType, req); err != nil {
		return "", fmt.Errorf("enqueue backtest: %w", err)
	}
	return req.ID, nil
}

// RunSync executes a run inline and returns its result. Same data-source
// selection rules as the queued path.
func (uc *BacktestJobUseCase) RunSync(ctx context.Context, cfg models.BacktestConfig, synthetic bool, seed int64) (models.BacktestResult, error) {
	if synthetic && uc.synthetic == nil {
		return models.BacktestResult{}, fmt.Errorf("synthetic data source not enabled")
	}
	history := uc.history
	if synthetic {
		history = uc.synthetic(seed)
	}
	runner := NewBacktest(history, uc.events, uc.metrics, uc.log)
	return runner.Run(ctx, cfg, Hooks{})
}

// Status returns the record for a run ID.
func (uc *BacktestJobUseCase) Status(id string) (*RunRecord, bool) {
	return uc.store.Get(id)
}

// Name implements queue.Job.
func (uc *BacktestJobUseCase) Name() string { return "backtest_runner" }

// Type implements queue.Job.
func (uc *BacktestJobUseCase) Type() string { return BacktestJobType }

// Handle implements queue.Job: it executes one enqueued run to completion
// and records the terminal state.
func (uc *BacktestJobUseCase) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[BacktestRunRequest](payload)
	if err != nil {
		return fmt.Errorf("parse backtest payload: %w", err)
	}

	rec, ok := uc.store.Get(req.ID)
	if !ok {
		rec = &RunRecord{ID: req.ID, SubmittedAt: time.Now()}
	}
	rec.State = models.RunRunning
	uc.store.Put(rec)

	history := uc.history
	if req.Synthetic {
		// A queued synthetic run can outlive a config change that disables
		// the synthetic source; fail the record rather than the worker.
		if uc.synthetic == nil {
			err := fmt.Errorf("synthetic data source not enabled")
			now := time.Now()
			rec.State = models.RunFailed
			rec.Error = err.Error()
			rec.FinishedAt = &now
			uc.store.Put(rec)
			uc.log.Error("async backtest failed",
				applogger.String("run_id", req.ID),
				applogger.Error(err))
			return err
		}
		history = uc.synthetic(req.Seed)
	}
	runner := NewBacktest(history, uc.events, uc.metrics, uc.log)

	result, err := runner.Run(ctx, req.Config, Hooks{
		OnProgress: func(p int) {
			rec.Progress = p
			uc.store.Put(rec)
		},
	})
	now := time.Now()
	rec.FinishedAt = &now
	if err != nil {
		rec.State = models.RunFailed
		rec.Error = err.Error()
		uc.store.Put(rec)
		uc.log.Error("async backtest failed",
			applogger.String("run_id", req.ID),
			applogger.Error(err))
		return err
	}
	rec.State = models.RunCompleted
	rec.Progress = 100
	rec.Result = &result
	uc.store.Put(rec)
	uc.log.Info("async backtest completed",
		applogger.String("run_id", req.ID),
		applogger.Int("trades", result.TotalTrades))
	return nil
}

var _ queue.Job = (*BacktestJobUseCase)(nil)
