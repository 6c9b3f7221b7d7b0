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

// ConversationStorage implements the ConversationStorage interface for Badger
type ConversationStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewConversationStorage creates a new ConversationStorage instance
func NewConversationStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ConversationStorage {
	return &ConversationStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ConversationStorage) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	if conv.ID == "" {
		return fmt.Errorf("conversation ID is required")
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Store().Upsert(conv.ID, conv); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (s *ConversationStorage) GetConversationsBySession(ctx context.Context, sessionID string) ([]*models.Conversation, error) {
	var convs []models.Conversation
	if err := s.db.Store().Find(&convs, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}

	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].CreatedAt.Before(convs[j].CreatedAt)
	})

	result := make([]*models.Conversation, len(convs))
	for i := range convs {
		result[i] = &convs[i]
	}
	return result, nil
}

func (s *ConversationStorage) DeleteConversationsBySession(ctx context.Context, sessionID string) error {
	if err := s.db.Store().DeleteMatching(&models.Conversation{}, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return fmt.Errorf("failed to delete conversations for session %s: %w", sessionID, err)
	}
	return nil
}
