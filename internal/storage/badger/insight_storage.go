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

// InsightStorage implements the InsightStorage interface for Badger
type InsightStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewInsightStorage creates a new InsightStorage instance
func NewInsightStorage(db *BadgerDB, logger arbor.ILogger) interfaces.InsightStorage {
	return &InsightStorage{
		db:     db,
		logger: logger,
	}
}

func (s *InsightStorage) SaveInsight(ctx context.Context, insight *models.ResearchInsight) error {
	if insight.ID == "" {
		return fmt.Errorf("insight ID is required")
	}

	now := time.Now().UTC()
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = now
	}
	insight.UpdatedAt = now

	if err := s.db.Store().Upsert(insight.ID, insight); err != nil {
		return fmt.Errorf("failed to save insight: %w", err)
	}
	return nil
}

func (s *InsightStorage) GetInsight(ctx context.Context, id string) (*models.ResearchInsight, error) {
	var insight models.ResearchInsight
	if err := s.db.Store().Get(id, &insight); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("insight %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	return &insight, nil
}

func (s *InsightStorage) GetInsightsBySession(ctx context.Context, sessionID string) ([]*models.ResearchInsight, error) {
	var insights []models.ResearchInsight
	if err := s.db.Store().Find(&insights, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to get insights: %w", err)
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].CreatedAt.Before(insights[j].CreatedAt)
	})

	result := make([]*models.ResearchInsight, len(insights))
	for i := range insights {
		result[i] = &insights[i]
	}
	return result, nil
}

func (s *InsightStorage) GetInsightsByCategory(ctx context.Context, sessionID string, categories ...models.InsightCategory) ([]*models.ResearchInsight, error) {
	all, err := s.GetInsightsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	wanted := make(map[models.InsightCategory]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	var result []*models.ResearchInsight
	for _, insight := range all {
		if wanted[insight.Category] {
			result = append(result, insight)
		}
	}
	return result, nil
}

func (s *InsightStorage) DeleteInsightsBySession(ctx context.Context, sessionID string) error {
	if err := s.db.Store().DeleteMatching(&models.ResearchInsight{}, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return fmt.Errorf("failed to delete insights for session %s: %w", sessionID, err)
	}
	return nil
}
