package badger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// progressEntry wraps a strategy record with indexable fields
type progressEntry struct {
	ID        string                 `json:"id"`
	SessionID string                 `json:"session_id" badgerhold:"index"`
	CreatedAt time.Time              `json:"created_at"`
	Record    *models.StrategyRecord `json:"record"`
}

// ProgressStore keeps research strategy records in Badger so they survive restarts
type ProgressStore struct {
	db     *BadgerDB
	logger arbor.ILogger
	// mu serialises read-modify-write updates and status transitions
	mu sync.Mutex
}

// NewProgressStore creates a progress store on an existing connection
func NewProgressStore(db *BadgerDB, logger arbor.ILogger) *ProgressStore {
	return &ProgressStore{
		db:     db,
		logger: logger,
	}
}

func (s *ProgressStore) Save(ctx context.Context, record *models.StrategyRecord) error {
	if record == nil || record.Strategy == nil || record.Strategy.ID == "" {
		return fmt.Errorf("strategy record with ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.put(record)
}

func (s *ProgressStore) put(record *models.StrategyRecord) error {
	record.UpdatedAt = time.Now().UTC()
	entry := &progressEntry{
		ID:        record.Strategy.ID,
		SessionID: record.Strategy.SessionID,
		CreatedAt: record.Strategy.CreatedAt,
		Record:    record,
	}
	if err := s.db.Store().Upsert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to save strategy %s: %w", entry.ID, err)
	}
	return nil
}

func (s *ProgressStore) Get(ctx context.Context, strategyID string) (*models.StrategyRecord, error) {
	var entry progressEntry
	if err := s.db.Store().Get(strategyID, &entry); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("strategy %s: %w", strategyID, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get strategy: %w", err)
	}
	return entry.Record, nil
}

func (s *ProgressStore) ListBySession(ctx context.Context, sessionID string) ([]*models.StrategyRecord, error) {
	var entries []progressEntry
	if err := s.db.Store().Find(&entries, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	return recordsNewestFirst(entries), nil
}

func (s *ProgressStore) List(ctx context.Context) ([]*models.StrategyRecord, error) {
	var entries []progressEntry
	if err := s.db.Store().Find(&entries, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	return recordsNewestFirst(entries), nil
}

func recordsNewestFirst(entries []progressEntry) []*models.StrategyRecord {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	records := make([]*models.StrategyRecord, 0, len(entries))
	for i := range entries {
		if entries[i].Record != nil {
			records = append(records, entries[i].Record)
		}
	}
	return records
}

func (s *ProgressStore) UpdateProgress(ctx context.Context, strategyID string, phase models.AnalysisPhase, percentage float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.Get(ctx, strategyID)
	if err != nil {
		return err
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
	return s.put(record)
}

func (s *ProgressStore) TransitionStatus(ctx context.Context, strategyID string, from, to models.StrategyStatus, at time.Time) (*models.StrategyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.Get(ctx, strategyID)
	if err != nil {
		return nil, err
	}
	current := record.Strategy.Status
	if !record.Transition(from, to, at) {
		return nil, fmt.Errorf("strategy %s is %s, not %s: %w", strategyID, current, from, interfaces.ErrInvalidState)
	}
	if err := s.put(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ProgressStore) Delete(ctx context.Context, strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Store().Delete(strategyID, &progressEntry{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("strategy %s: %w", strategyID, interfaces.ErrNotFound)
		}
		return fmt.Errorf("failed to delete strategy: %w", err)
	}
	return nil
}

// Close is a no-op; the connection is owned by the storage manager
func (s *ProgressStore) Close() error {
	return nil
}
