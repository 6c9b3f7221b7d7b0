package interfaces

import (
	"context"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

// ProgressStore keeps research strategy records and their execution progress.
// Implementations exist for memory, badger and redis.
type ProgressStore interface {
	// Save inserts or replaces the full record
	Save(ctx context.Context, record *models.StrategyRecord) error

	// Get returns ErrNotFound when the strategy is unknown
	Get(ctx context.Context, strategyID string) (*models.StrategyRecord, error)

	// ListBySession returns the session's records, newest first
	ListBySession(ctx context.Context, sessionID string) ([]*models.StrategyRecord, error)

	// List returns every record, used by the reaper
	List(ctx context.Context) ([]*models.StrategyRecord, error)

	// UpdateProgress records the current phase and percentage.
	// A percentage lower than the stored one is ignored.
	UpdateProgress(ctx context.Context, strategyID string, phase models.AnalysisPhase, percentage float64) error

	// TransitionStatus atomically moves a strategy from one status to another
	// and returns the updated record. When the stored status is not from it
	// returns ErrInvalidState, so exactly one caller, in any process sharing
	// the store, wins a given transition.
	TransitionStatus(ctx context.Context, strategyID string, from, to models.StrategyStatus, at time.Time) (*models.StrategyRecord, error)

	Delete(ctx context.Context, strategyID string) error

	Close() error
}
