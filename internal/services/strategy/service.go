package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

const (
	// phaseShare is the slice of progress reserved for the analysis phases.
	// The rest covers option generation and result assembly.
	phaseShare   = 80.0
	optionsDone  = 95.0
	fullProgress = 100.0
)

// ProgressCallback receives progress for a running strategy.
// Returning an error aborts the run.
type ProgressCallback func(ctx context.Context, strategyID string, phase models.AnalysisPhase, percentage float64) error

// Service runs multi-phase research strategies
type Service struct {
	ai           interfaces.AIService
	logger       arbor.ILogger
	phaseDelay   time.Duration
	aiEnrichment bool
	now          func() time.Time
}

// NewService creates a research strategy service. aiService may be nil
// when enrichment is disabled.
func NewService(aiService interfaces.AIService, config *common.StrategyConfig, logger arbor.ILogger) *Service {
	return &Service{
		ai:           aiService,
		logger:       logger,
		phaseDelay:   common.ParseDuration(config.PhaseDelay, time.Second),
		aiEnrichment: config.AIEnrichment,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Initiate builds a pending strategy for the idea. Nothing is stored.
func (s *Service) Initiate(sessionID string, approach models.ResearchApproach, ideaTitle, ideaDescription string, custom map[string]interface{}) (*models.ResearchStrategy, error) {
	cfg, err := configFor(approach)
	if err != nil {
		return nil, err
	}

	phases := make([]models.AnalysisPhase, len(cfg.Phases))
	copy(phases, cfg.Phases)

	strategy := &models.ResearchStrategy{
		ID:                       common.NewID(common.PrefixStrategy),
		SessionID:                sessionID,
		Approach:                 approach,
		Title:                    fmt.Sprintf("%s Analysis: %s", humanize(string(approach)), ideaTitle),
		Description:              cfg.Description,
		EstimatedDurationMinutes: cfg.DurationMinutes,
		ComplexityLevel:          cfg.Complexity,
		Phases:                   phases,
		Status:                   models.StrategyPending,
		ProgressPercentage:       0,
		CustomParameters:         custom,
		CreatedAt:                s.now(),
	}

	s.logger.Info().
		Str("strategy_id", strategy.ID).
		Str("session_id", sessionID).
		Str("approach", string(approach)).
		Msg("Research strategy initiated")

	return strategy, nil
}

// Execute runs every phase of strategy in order and assembles the result.
// The strategy is updated in place: in_progress while running, then
// completed or error.
func (s *Service) Execute(ctx context.Context, strategy *models.ResearchStrategy, ideaTitle, ideaDescription string, callback ProgressCallback) (*models.AnalysisResult, error) {
	result, err := s.execute(ctx, strategy, ideaTitle, ideaDescription, callback)
	if err != nil {
		strategy.Status = models.StrategyError
		s.logger.Error().
			Err(err).
			Str("strategy_id", strategy.ID).
			Float64("progress", strategy.ProgressPercentage).
			Msg("Research strategy failed")
		return nil, err
	}
	return result, nil
}

func (s *Service) execute(ctx context.Context, strategy *models.ResearchStrategy, ideaTitle, ideaDescription string, callback ProgressCallback) (*models.AnalysisResult, error) {
	cfg, err := configFor(strategy.Approach)
	if err != nil {
		return nil, err
	}

	report := func(phase models.AnalysisPhase, percentage float64) error {
		if callback == nil {
			return nil
		}
		return callback(ctx, strategy.ID, phase, percentage)
	}

	strategy.Status = models.StrategyInProgress
	if strategy.StartedAt == nil {
		started := s.now()
		strategy.StartedAt = &started
	}

	phases := cfg.Phases
	in := &phaseInput{
		IdeaTitle:       ideaTitle,
		IdeaDescription: ideaDescription,
		Depth:           cfg.Depth,
		Results:         &phaseResults{},
	}

	for i, phase := range phases {
		if err := report(phase, float64(i)/float64(len(phases))*phaseShare); err != nil {
			return nil, fmt.Errorf("progress callback failed: %w", err)
		}

		if err := s.pause(ctx); err != nil {
			return nil, err
		}

		if err := s.runPhase(ctx, phase, in); err != nil {
			return nil, fmt.Errorf("phase %s failed: %w", phase, err)
		}
		strategy.ProgressPercentage = float64(i+1) / float64(len(phases)) * phaseShare

		s.logger.Debug().
			Str("strategy_id", strategy.ID).
			Str("phase", string(phase)).
			Float64("progress", strategy.ProgressPercentage).
			Msg("Analysis phase completed")
	}

	if err := report(models.PhaseStrategicAssessment, phaseShare); err != nil {
		return nil, fmt.Errorf("progress callback failed: %w", err)
	}

	options := GenerateStrategicOptions(ideaTitle, cfg.OptionsCount)
	strategy.ProgressPercentage = optionsDone

	recommended := recommendedOption(options)
	result := &models.AnalysisResult{
		StrategyID:              strategy.ID,
		Approach:                strategy.Approach,
		MarketContext:           in.Results.MarketContext,
		CompetitiveIntelligence: in.Results.CompetitiveIntelligence,
		CustomerUnderstanding:   in.Results.CustomerUnderstanding,
		StrategicAssessment:     in.Results.StrategicAssessment,
		StrategicOptions:        options,
		RecommendedOption:       recommended,
		AnalysisConfidence:      overallConfidence(in.Results),
		AnalysisCompleteness:    fullProgress,
		NextSteps:               nextSteps(recommended, strategy.Approach),
		GeneratedAt:             s.now(),
	}

	completed := s.now()
	strategy.Status = models.StrategyCompleted
	strategy.CompletedAt = &completed
	strategy.ProgressPercentage = fullProgress

	if err := report(models.PhaseStrategicAssessment, fullProgress); err != nil {
		return nil, fmt.Errorf("progress callback failed: %w", err)
	}

	s.logger.Info().
		Str("strategy_id", strategy.ID).
		Str("approach", string(strategy.Approach)).
		Int("options", len(options)).
		Float64("confidence", result.AnalysisConfidence).
		Msg("Research strategy completed")

	return result, nil
}

// pause waits the configured phase delay, returning early on cancellation
func (s *Service) pause(ctx context.Context) error {
	if s.phaseDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.phaseDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
