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

// OptionStorage implements the OptionStorage interface for Badger
type OptionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewOptionStorage creates a new OptionStorage instance
func NewOptionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.OptionStorage {
	return &OptionStorage{
		db:     db,
		logger: logger,
	}
}

func (s *OptionStorage) SaveOption(ctx context.Context, option *models.ResearchOption) error {
	if option.ID == "" {
		return fmt.Errorf("option ID is required")
	}

	now := time.Now().UTC()
	if option.CreatedAt.IsZero() {
		option.CreatedAt = now
	}
	option.UpdatedAt = now

	if err := s.db.Store().Upsert(option.ID, option); err != nil {
		return fmt.Errorf("failed to save option: %w", err)
	}
	return nil
}

func (s *OptionStorage) GetOption(ctx context.Context, id string) (*models.ResearchOption, error) {
	var option models.ResearchOption
	if err := s.db.Store().Get(id, &option); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("option %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	return &option, nil
}

func (s *OptionStorage) GetOptionsBySession(ctx context.Context, sessionID string) ([]*models.ResearchOption, error) {
	var options []models.ResearchOption
	if err := s.db.Store().Find(&options, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].CreatedAt.Before(options[j].CreatedAt)
	})

	result := make([]*models.ResearchOption, len(options))
	for i := range options {
		result[i] = &options[i]
	}
	return result, nil
}

func (s *OptionStorage) DeleteOptionsBySession(ctx context.Context, sessionID string) error {
	if err := s.db.Store().DeleteMatching(&models.ResearchOption{}, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return fmt.Errorf("failed to delete options for session %s: %w", sessionID, err)
	}
	return nil
}
