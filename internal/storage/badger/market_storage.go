package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// MarketStorage implements the MarketStorage interface for Badger
type MarketStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMarketStorage creates a new MarketStorage instance
func NewMarketStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MarketStorage {
	return &MarketStorage{
		db:     db,
		logger: logger,
	}
}

func (s *MarketStorage) SaveMarketAnalysis(ctx context.Context, analysis *models.MarketAnalysis) error {
	if analysis.ID == "" {
		return fmt.Errorf("market analysis ID is required")
	}

	now := time.Now().UTC()
	if analysis.AnalysisDate.IsZero() {
		analysis.AnalysisDate = now
	}
	analysis.LastUpdated = now

	if err := s.db.Store().Upsert(analysis.ID, analysis); err != nil {
		return fmt.Errorf("failed to save market analysis: %w", err)
	}
	return nil
}

func (s *MarketStorage) GetMarketAnalysisBySession(ctx context.Context, sessionID string) (*models.MarketAnalysis, error) {
	var analyses []models.MarketAnalysis
	if err := s.db.Store().Find(&analyses, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to get market analysis: %w", err)
	}
	if len(analyses) == 0 {
		return nil, fmt.Errorf("market analysis for session %s: %w", sessionID, interfaces.ErrNotFound)
	}

	sort.Slice(analyses, func(i, j int) bool {
		return analyses[i].AnalysisDate.After(analyses[j].AnalysisDate)
	})
	return &analyses[0], nil
}

func (s *MarketStorage) SaveCompetitor(ctx context.Context, competitor *models.CompetitorAnalysis) error {
	if competitor.ID == "" {
		return fmt.Errorf("competitor ID is required")
	}
	if competitor.LastResearched.IsZero() {
		competitor.LastResearched = time.Now().UTC()
	}

	if err := s.db.Store().Upsert(competitor.ID, competitor); err != nil {
		return fmt.Errorf("failed to save competitor: %w", err)
	}
	return nil
}

func (s *MarketStorage) GetCompetitor(ctx context.Context, id string) (*models.CompetitorAnalysis, error) {
	var competitor models.CompetitorAnalysis
	if err := s.db.Store().Get(id, &competitor); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("competitor %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get competitor: %w", err)
	}
	return &competitor, nil
}

func (s *MarketStorage) GetCompetitorsByAnalysis(ctx context.Context, analysisID string) ([]*models.CompetitorAnalysis, error) {
	var competitors []models.CompetitorAnalysis
	if err := s.db.Store().Find(&competitors, badgerhold.Where("MarketAnalysisID").Eq(analysisID)); err != nil {
		return nil, fmt.Errorf("failed to get competitors: %w", err)
	}

	sort.SliceStable(competitors, func(i, j int) bool {
		return competitors[i].MarketShare > competitors[j].MarketShare
	})

	result := make([]*models.CompetitorAnalysis, len(competitors))
	for i := range competitors {
		result[i] = &competitors[i]
	}
	return result, nil
}

func (s *MarketStorage) SaveSegment(ctx context.Context, segment *models.MarketSegment) error {
	if segment.ID == "" {
		return fmt.Errorf("segment ID is required")
	}
	if err := s.db.Store().Upsert(segment.ID, segment); err != nil {
		return fmt.Errorf("failed to save segment: %w", err)
	}
	return nil
}

func (s *MarketStorage) GetSegmentsByAnalysis(ctx context.Context, analysisID string) ([]*models.MarketSegment, error) {
	var segments []models.MarketSegment
	if err := s.db.Store().Find(&segments, badgerhold.Where("MarketAnalysisID").Eq(analysisID)); err != nil {
		return nil, fmt.Errorf("failed to get segments: %w", err)
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].SizePercentage > segments[j].SizePercentage
	})

	result := make([]*models.MarketSegment, len(segments))
	for i := range segments {
		result[i] = &segments[i]
	}
	return result, nil
}

func (s *MarketStorage) SaveTrend(ctx context.Context, trend *models.MarketTrendAnalysis) error {
	if trend.ID == "" {
		return fmt.Errorf("trend ID is required")
	}
	if trend.AnalysisDate.IsZero() {
		trend.AnalysisDate = time.Now().UTC()
	}
	if err := s.db.Store().Upsert(trend.ID, trend); err != nil {
		return fmt.Errorf("failed to save trend: %w", err)
	}
	return nil
}

func (s *MarketStorage) GetTrendsBySession(ctx context.Context, sessionID string) ([]*models.MarketTrendAnalysis, error) {
	var trends []models.MarketTrendAnalysis
	if err := s.db.Store().Find(&trends, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to get trends: %w", err)
	}

	result := make([]*models.MarketTrendAnalysis, len(trends))
	for i := range trends {
		result[i] = &trends[i]
	}
	return result, nil
}

func (s *MarketStorage) SaveOpportunity(ctx context.Context, opp *models.MarketOpportunity) error {
	if opp.ID == "" {
		return fmt.Errorf("opportunity ID is required")
	}
	if err := s.db.Store().Upsert(opp.ID, opp); err != nil {
		return fmt.Errorf("failed to save opportunity: %w", err)
	}
	return nil
}

func (s *MarketStorage) GetOpportunitiesBySession(ctx context.Context, sessionID string) ([]*models.MarketOpportunity, error) {
	var opps []models.MarketOpportunity
	if err := s.db.Store().Find(&opps, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to get opportunities: %w", err)
	}

	result := make([]*models.MarketOpportunity, len(opps))
	for i := range opps {
		result[i] = &opps[i]
	}
	return result, nil
}

func (s *MarketStorage) DeleteMarketDataBySession(ctx context.Context, sessionID string) error {
	query := func() *badgerhold.Query { return badgerhold.Where("SessionID").Eq(sessionID) }

	if err := s.db.Store().DeleteMatching(&models.CompetitorAnalysis{}, query()); err != nil {
		return fmt.Errorf("failed to delete competitors for session %s: %w", sessionID, err)
	}
	if err := s.db.Store().DeleteMatching(&models.MarketSegment{}, query()); err != nil {
		return fmt.Errorf("failed to delete segments for session %s: %w", sessionID, err)
	}
	if err := s.db.Store().DeleteMatching(&models.MarketTrendAnalysis{}, query()); err != nil {
		return fmt.Errorf("failed to delete trends for session %s: %w", sessionID, err)
	}
	if err := s.db.Store().DeleteMatching(&models.MarketOpportunity{}, query()); err != nil {
		return fmt.Errorf("failed to delete opportunities for session %s: %w", sessionID, err)
	}
	if err := s.db.Store().DeleteMatching(&models.MarketAnalysis{}, query()); err != nil {
		return fmt.Errorf("failed to delete market analyses for session %s: %w", sessionID, err)
	}
	return nil
}
