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

// SessionStorage implements the SessionStorage interface for Badger
type SessionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSessionStorage creates a new SessionStorage instance
func NewSessionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SessionStorage {
	return &SessionStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SessionStorage) SaveSession(ctx context.Context, session *models.ResearchSession) error {
	if session.ID == "" {
		return fmt.Errorf("session ID is required")
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	if err := s.db.Store().Upsert(session.ID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStorage) GetSession(ctx context.Context, id string) (*models.ResearchSession, error) {
	var session models.ResearchSession
	if err := s.db.Store().Get(id, &session); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("session %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (s *SessionStorage) ListSessions(ctx context.Context, opts *interfaces.ListOptions) ([]*models.ResearchSession, error) {
	var sessions []models.ResearchSession
	if err := s.db.Store().Find(&sessions, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	start, end := 0, len(sessions)
	if opts != nil {
		if opts.Skip > 0 {
			start = min(opts.Skip, end)
		}
		if opts.Limit > 0 && start+opts.Limit < end {
			end = start + opts.Limit
		}
	}

	result := make([]*models.ResearchSession, 0, end-start)
	for i := start; i < end; i++ {
		result = append(result, &sessions[i])
	}
	return result, nil
}

func (s *SessionStorage) DeleteSession(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.ResearchSession{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("session %s: %w", id, interfaces.ErrNotFound)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionStorage) CountSessions(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.ResearchSession{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return int(count), nil
}
