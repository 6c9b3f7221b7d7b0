package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/ternarybob/arbor"
)

// ProgressStore keeps strategy records in process memory.
// Records are copied on the way in and out so callers never share state with the store.
type ProgressStore struct {
	records map[string]*models.StrategyRecord
	mu      sync.RWMutex
	logger  arbor.ILogger
}

// NewProgressStore creates an empty in-memory progress store
func NewProgressStore(logger arbor.ILogger) *ProgressStore {
	return &ProgressStore{
		records: make(map[string]*models.StrategyRecord),
		logger:  logger,
	}
}

func (s *ProgressStore) Save(ctx context.Context, record *models.StrategyRecord) error {
	if record == nil || record.Strategy == nil || record.Strategy.ID == "" {
		return fmt.Errorf("strategy record with ID is required")
	}

	record.UpdatedAt = time.Now().UTC()
	copied, err := cloneRecord(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records[record.Strategy.ID] = copied
	s.mu.Unlock()
	return nil
}

func (s *ProgressStore) Get(ctx context.Context, strategyID string) (*models.StrategyRecord, error) {
	s.mu.RLock()
	record, ok := s.records[strategyID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("strategy %s: %w", strategyID, interfaces.ErrNotFound)
	}
	return cloneRecord(record)
}

func (s *ProgressStore) ListBySession(ctx context.Context, sessionID string) ([]*models.StrategyRecord, error) {
	return s.list(func(r *models.StrategyRecord) bool {
		return r.Strategy.SessionID == sessionID
	})
}

func (s *ProgressStore) List(ctx context.Context) ([]*models.StrategyRecord, error) {
	return s.list(func(*models.StrategyRecord) bool { return true })
}

func (s *ProgressStore) list(match func(*models.StrategyRecord) bool) ([]*models.StrategyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.StrategyRecord, 0)
	for _, record := range s.records {
		if !match(record) {
			continue
		}
		copied, err := cloneRecord(record)
		if err != nil {
			return nil, err
		}
		result = append(result, copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Strategy.CreatedAt.After(result[j].Strategy.CreatedAt)
	})
	return result, nil
}

func (s *ProgressStore) UpdateProgress(ctx context.Context, strategyID string, phase models.AnalysisPhase, percentage float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[strategyID]
	if !ok {
		return fmt.Errorf("strategy %s: %w", strategyID, interfaces.ErrNotFound)
	}

	if percentage < record.Progress {
		s.logger.Debug().
			Str("strategy_id", strategyID).
			Float64("current", record.Progress).
			Float64("requested", percentage).
			Msg("Ignoring progress regression")
		return nil
	}

	record.Progress = percentage
	record.Strategy.ProgressPercentage = percentage
	if phase != "" {
		record.CurrentPhase = phase
	}
	record.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *ProgressStore) TransitionStatus(ctx context.Context, strategyID string, from, to models.StrategyStatus, at time.Time) (*models.StrategyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[strategyID]
	if !ok {
		return nil, fmt.Errorf("strategy %s: %w", strategyID, interfaces.ErrNotFound)
	}
	current := record.Strategy.Status
	if !record.Transition(from, to, at) {
		return nil, fmt.Errorf("strategy %s is %s, not %s: %w", strategyID, current, from, interfaces.ErrInvalidState)
	}
	record.UpdatedAt = time.Now().UTC()
	return cloneRecord(record)
}

func (s *ProgressStore) Delete(ctx context.Context, strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[strategyID]; !ok {
		return fmt.Errorf("strategy %s: %w", strategyID, interfaces.ErrNotFound)
	}
	delete(s.records, strategyID)
	return nil
}

func (s *ProgressStore) Close() error {
	return nil
}

func cloneRecord(record *models.StrategyRecord) (*models.StrategyRecord, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to copy strategy record: %w", err)
	}
	var copied models.StrategyRecord
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, fmt.Errorf("failed to copy strategy record: %w", err)
	}
	return &copied, nil
}
