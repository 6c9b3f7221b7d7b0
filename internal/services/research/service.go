package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/pdf"
)

// Service manages research sessions and the AI driven research around them
type Service struct {
	storage  interfaces.StorageManager
	progress interfaces.ProgressStore
	ai       interfaces.AIService
	pdf      *pdf.Service
	logger   arbor.ILogger
	now      func() time.Time
}

// NewService creates a new research service
func NewService(
	storage interfaces.StorageManager,
	progress interfaces.ProgressStore,
	aiService interfaces.AIService,
	pdfService *pdf.Service,
	logger arbor.ILogger,
) *Service {
	return &Service{
		storage:  storage,
		progress: progress,
		ai:       aiService,
		pdf:      pdfService,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession starts a new research session in the active state
func (s *Service) CreateSession(ctx context.Context, userID, title, description string) (*models.ResearchSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("session title is required: %w", interfaces.ErrInvalidInput)
	}

	session := &models.ResearchSession{
		ID:          common.NewID(common.PrefixSession),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      models.SessionStatusActive,
	}

	if err := s.storage.SessionStorage().SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("title", title).
		Msg("Research session created")

	return session, nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.ResearchSession, error) {
	return s.storage.SessionStorage().GetSession(ctx, sessionID)
}

// GetSessionDetail returns the session with its conversations, insights and options
func (s *Service) GetSessionDetail(ctx context.Context, sessionID string) (*SessionDetail, error) {
	session, err := s.storage.SessionStorage().GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	conversations, err := s.storage.ConversationStorage().GetConversationsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	insights, err := s.storage.InsightStorage().GetInsightsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	options, err := s.storage.OptionStorage().GetOptionsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionDetail{
		ResearchSession: session,
		Conversations:   nonNil(conversations),
		Insights:        nonNil(insights),
		Options:         nonNil(options),
	}, nil
}

// ListSessions returns a page of sessions, newest first, and the total count
func (s *Service) ListSessions(ctx context.Context, skip, limit int) ([]*models.ResearchSession, int, error) {
	sessions, err := s.storage.SessionStorage().ListSessions(ctx, &interfaces.ListOptions{Skip: skip, Limit: limit})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.storage.SessionStorage().CountSessions(ctx)
	if err != nil {
		return nil, 0, err
	}
	return nonNil(sessions), total, nil
}

// UpdateSession applies the non-nil fields of update
func (s *Service) UpdateSession(ctx context.Context, sessionID string, update SessionUpdate) (*models.ResearchSession, error) {
	session, err := s.storage.SessionStorage().GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, fmt.Errorf("session title cannot be empty: %w", interfaces.ErrInvalidInput)
		}
		session.Title = title
	}
	if update.Description != nil {
		session.Description = *update.Description
	}
	if update.Status != nil {
		if !update.Status.IsValid() {
			return nil, fmt.Errorf("unknown session status %q: %w", *update.Status, interfaces.ErrInvalidInput)
		}
		session.Status = *update.Status
	}

	if err := s.storage.SessionStorage().SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes the session, everything it owns and its research
// strategies. Strategies go first so none can be started against a session
// that is half deleted.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.storage.SessionStorage().GetSession(ctx, sessionID); err != nil {
		return err
	}

	removed, err := s.deleteStrategies(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteSessionCascade(ctx, sessionID); err != nil {
		return err
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("strategies_removed", removed).
		Msg("Research session deleted")
	return nil
}

func (s *Service) deleteStrategies(ctx context.Context, sessionID string) (int, error) {
	records, err := s.progress.ListBySession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to list strategies for session %s: %w", sessionID, err)
	}

	removed := 0
	for _, record := range records {
		err := s.progress.Delete(ctx, record.Strategy.ID)
		if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			return removed, fmt.Errorf("failed to delete strategy %s: %w", record.Strategy.ID, err)
		}
		removed++
	}
	return removed, nil
}

func (s *Service) setStatus(ctx context.Context, session *models.ResearchSession, status models.SessionStatus) error {
	session.Status = status
	return s.storage.SessionStorage().SaveSession(ctx, session)
}

// AddConversation stores one message in the session's conversation
func (s *Service) AddConversation(ctx context.Context, sessionID string, messageType models.MessageType, content string, metadata map[string]interface{}) (*models.Conversation, error) {
	conv := &models.Conversation{
		ID:          common.NewID(common.PrefixConversation),
		SessionID:   sessionID,
		MessageType: messageType,
		Content:     content,
		Metadata:    metadata,
		CreatedAt:   s.now(),
	}
	if err := s.storage.ConversationStorage().SaveConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *Service) GetConversations(ctx context.Context, sessionID string) ([]*models.Conversation, error) {
	if _, err := s.storage.SessionStorage().GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.storage.ConversationStorage().GetConversationsBySession(ctx, sessionID)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
