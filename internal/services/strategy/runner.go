package strategy

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/metrics"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

// Initiation is returned when a strategy is created
type Initiation struct {
	Strategy                *models.ResearchStrategy `json:"strategy"`
	EstimatedCompletionTime string                   `json:"estimated_completion_time"`
	IncludedAnalyses        []models.AnalysisPhase   `json:"included_analyses"`
	NextSteps               []string                 `json:"next_steps"`
}

// Runner owns strategy records in the progress store and executes them in
// the background, one goroutine per execution.
type Runner struct {
	service *Service
	store   interfaces.ProgressStore
	storage interfaces.StorageManager
	events  interfaces.EventService
	logger  arbor.ILogger
	timeout time.Duration
	baseCtx context.Context
	now     func() time.Time

	wg sync.WaitGroup
}

// NewRunner creates a runner. Executions derive their context from ctx,
// so cancelling it stops every run.
func NewRunner(ctx context.Context, service *Service, store interfaces.ProgressStore, storage interfaces.StorageManager, events interfaces.EventService, config *common.StrategyConfig, logger arbor.ILogger) *Runner {
	return &Runner{
		service: service,
		store:   store,
		storage: storage,
		events:  events,
		logger:  logger,
		timeout: common.ParseDuration(config.ExecutionTimeout, 30*time.Minute),
		baseCtx: ctx,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Initiate creates a pending strategy for the session's idea
func (r *Runner) Initiate(ctx context.Context, sessionID string, approach models.ResearchApproach, custom map[string]interface{}) (*Initiation, error) {
	session, err := r.storage.SessionStorage().GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	strategy, err := r.service.Initiate(sessionID, approach, session.Title, session.Description, custom)
	if err != nil {
		return nil, err
	}

	record := &models.StrategyRecord{
		Strategy:        strategy,
		IdeaTitle:       session.Title,
		IdeaDescription: session.Description,
	}
	if err := r.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store strategy: %w", err)
	}

	return &Initiation{
		Strategy:                strategy,
		EstimatedCompletionTime: fmt.Sprintf("%d minutes", strategy.EstimatedDurationMinutes),
		IncludedAnalyses:        strategy.Phases,
		NextSteps: []string{
			"Review the analysis approach",
			"Start the automated research process",
			"Monitor progress through the dashboard",
		},
	}, nil
}

// Start moves a pending strategy to in_progress and executes it in the
// background. A strategy that is not pending is rejected with ErrInvalidState,
// one whose session was deleted with ErrNotFound. The transition is made by
// the progress store, so instances sharing a store never run it twice.
func (r *Runner) Start(ctx context.Context, strategyID string) error {
	record, err := r.store.Get(ctx, strategyID)
	if err != nil {
		return err
	}
	if _, err := r.storage.SessionStorage().GetSession(ctx, record.Strategy.SessionID); err != nil {
		return fmt.Errorf("strategy %s cannot start: %w", strategyID, err)
	}

	record, err = r.store.TransitionStatus(ctx, strategyID, models.StrategyPending, models.StrategyInProgress, r.now())
	if err != nil {
		return fmt.Errorf("failed to mark strategy in progress: %w", err)
	}

	r.wg.Add(1)
	common.SafeGo(r.logger, "strategy-"+strategyID, func() {
		defer r.wg.Done()
		r.run(record)
	})
	return nil
}

func (r *Runner) run(record *models.StrategyRecord) {
	strategy := record.Strategy
	ctx, cancel := context.WithTimeout(r.baseCtx, r.timeout)
	defer cancel()

	metrics.StrategiesActive.Inc()
	defer metrics.StrategiesActive.Dec()
	start := time.Now()

	callback := func(ctx context.Context, strategyID string, phase models.AnalysisPhase, percentage float64) error {
		if err := r.store.UpdateProgress(ctx, strategyID, phase, percentage); err != nil {
			return err
		}
		r.publish(ctx, interfaces.EventStrategyProgress, &models.StrategyProgressEvent{
			StrategyID: strategyID,
			SessionID:  strategy.SessionID,
			Phase:      phase,
			Percentage: percentage,
			Status:     models.StrategyInProgress,
		})
		return nil
	}

	result, execErr := r.service.Execute(ctx, strategy, record.IdeaTitle, record.IdeaDescription, callback)
	metrics.StrategyDuration.WithLabelValues(string(strategy.Approach)).Observe(time.Since(start).Seconds())

	// The run context may be done by now; the final write must still land
	saveCtx := context.WithoutCancel(ctx)
	latest, err := r.store.Get(saveCtx, strategy.ID)
	if err != nil {
		r.logger.Warn().Err(err).Str("strategy_id", strategy.ID).Msg("Strategy record gone before completion, discarding result")
		return
	}

	latest.Strategy = strategy
	if execErr != nil {
		strategy.ProgressPercentage = latest.Progress
		latest.Error = execErr.Error()
		metrics.StrategyExecutions.WithLabelValues(string(strategy.Approach), string(models.StrategyError)).Inc()
	} else {
		latest.Result = result
		latest.Progress = strategy.ProgressPercentage
		metrics.StrategyExecutions.WithLabelValues(string(strategy.Approach), string(models.StrategyCompleted)).Inc()
	}

	if err := r.store.Save(saveCtx, latest); err != nil {
		r.logger.Error().Err(err).Str("strategy_id", strategy.ID).Msg("Failed to store strategy outcome")
		return
	}

	event := &models.StrategyProgressEvent{
		StrategyID: strategy.ID,
		SessionID:  strategy.SessionID,
		Phase:      latest.CurrentPhase,
		Percentage: latest.Progress,
		Status:     strategy.Status,
		Error:      latest.Error,
	}
	if execErr != nil {
		r.publish(saveCtx, interfaces.EventStrategyFailed, event)
	} else {
		r.publish(saveCtx, interfaces.EventStrategyCompleted, event)
	}
}

func (r *Runner) publish(ctx context.Context, eventType interfaces.EventType, payload *models.StrategyProgressEvent) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload}); err != nil {
		r.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to publish strategy event")
	}
}

// Progress reports a strategy's progress with an estimate of the minutes left
func (r *Runner) Progress(ctx context.Context, strategyID string) (*models.StrategyProgress, error) {
	record, err := r.store.Get(ctx, strategyID)
	if err != nil {
		return nil, err
	}

	strategy := record.Strategy
	phase := record.CurrentPhase
	if phase == "" {
		phase = models.PhaseMarketContext
	}

	return &models.StrategyProgress{
		StrategyID:                 strategy.ID,
		Status:                     strategy.Status,
		CurrentPhase:               phase,
		ProgressPercentage:         record.Progress,
		EstimatedCompletionMinutes: r.remainingMinutes(record),
		Error:                      record.Error,
	}, nil
}

// remainingMinutes extrapolates total run time from elapsed time and progress
func (r *Runner) remainingMinutes(record *models.StrategyRecord) int {
	strategy := record.Strategy
	switch strategy.Status {
	case models.StrategyPending:
		return strategy.EstimatedDurationMinutes
	case models.StrategyInProgress:
		if record.Progress <= 0 || strategy.StartedAt == nil {
			return strategy.EstimatedDurationMinutes
		}
		elapsed := r.now().Sub(*strategy.StartedAt).Minutes()
		total := elapsed / (record.Progress / 100)
		return int(math.Max(0, total-elapsed))
	default:
		return 0
	}
}

// Result returns the composite result of a completed strategy
func (r *Runner) Result(ctx context.Context, strategyID string) (*models.AnalysisResult, error) {
	record, err := r.store.Get(ctx, strategyID)
	if err != nil {
		return nil, err
	}
	if record.Strategy.Status != models.StrategyCompleted {
		return nil, fmt.Errorf("research strategy is not completed yet: %w", interfaces.ErrInvalidState)
	}
	if record.Result == nil {
		return nil, fmt.Errorf("research results for %s: %w", strategyID, interfaces.ErrNotFound)
	}
	return record.Result, nil
}

// Get returns the full stored record
func (r *Runner) Get(ctx context.Context, strategyID string) (*models.StrategyRecord, error) {
	return r.store.Get(ctx, strategyID)
}

// ListBySession returns the session's strategies, newest first
func (r *Runner) ListBySession(ctx context.Context, sessionID string) ([]*models.ResearchStrategy, error) {
	records, err := r.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	strategies := make([]*models.ResearchStrategy, 0, len(records))
	for _, record := range records {
		strategies = append(strategies, record.Strategy)
	}
	return strategies, nil
}

// Compare lays out the options of a completed strategy side by side
func (r *Runner) Compare(ctx context.Context, strategyID string, criteria []string) (*models.OptionComparison, error) {
	record, err := r.store.Get(ctx, strategyID)
	if err != nil {
		return nil, err
	}
	if record.Result == nil {
		return nil, fmt.Errorf("analysis not completed: %w", interfaces.ErrInvalidState)
	}
	if len(record.Result.StrategicOptions) == 0 {
		return nil, fmt.Errorf("no strategic options found: %w", interfaces.ErrNotFound)
	}
	return CompareOptions(record.Strategy.SessionID, record.Result, criteria), nil
}

// Delete removes a strategy and its results
func (r *Runner) Delete(ctx context.Context, strategyID string) error {
	if err := r.store.Delete(ctx, strategyID); err != nil {
		return err
	}
	r.logger.Info().Str("strategy_id", strategyID).Msg("Research strategy deleted")
	return nil
}

// Reap deletes completed and failed strategies last updated before
// now minus retain. Running strategies are never touched.
func (r *Runner) Reap(ctx context.Context, retain time.Duration) (int, error) {
	records, err := r.store.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := r.now().Add(-retain)
	removed := 0
	for _, record := range records {
		status := record.Strategy.Status
		if status != models.StrategyCompleted && status != models.StrategyError {
			continue
		}
		if record.UpdatedAt.After(cutoff) {
			continue
		}
		if err := r.store.Delete(ctx, record.Strategy.ID); err != nil {
			r.logger.Warn().Err(err).Str("strategy_id", record.Strategy.ID).Msg("Failed to reap strategy")
			continue
		}
		removed++
	}
	return removed, nil
}

// Wait blocks until running executions finish or ctx is done
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
