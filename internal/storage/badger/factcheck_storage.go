package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// FactCheckStorage implements the FactCheckStorage interface for Badger
type FactCheckStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFactCheckStorage creates a new FactCheckStorage instance
func NewFactCheckStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FactCheckStorage {
	return &FactCheckStorage{
		db:     db,
		logger: logger,
	}
}

func (s *FactCheckStorage) SaveFactCheck(ctx context.Context, fc *models.ResearchFactCheck) error {
	if fc.ID == "" {
		return fmt.Errorf("fact-check ID is required")
	}
	if fc.CreatedAt.IsZero() {
		fc.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Store().Upsert(fc.ID, fc); err != nil {
		return fmt.Errorf("failed to save fact-check: %w", err)
	}
	return nil
}

func (s *FactCheckStorage) GetFactChecksByInsight(ctx context.Context, insightID string) ([]*models.ResearchFactCheck, error) {
	var checks []models.ResearchFactCheck
	if err := s.db.Store().Find(&checks, badgerhold.Where("InsightID").Eq(insightID)); err != nil {
		return nil, fmt.Errorf("failed to get fact-checks: %w", err)
	}

	result := make([]*models.ResearchFactCheck, len(checks))
	for i := range checks {
		result[i] = &checks[i]
	}
	return result, nil
}

func (s *FactCheckStorage) DeleteFactChecksBySession(ctx context.Context, sessionID string) error {
	if err := s.db.Store().DeleteMatching(&models.ResearchFactCheck{}, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return fmt.Errorf("failed to delete fact-checks for session %s: %w", sessionID, err)
	}
	return nil
}
