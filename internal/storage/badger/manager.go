package badger

import (
	"context"
	"fmt"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db           *BadgerDB
	session      interfaces.SessionStorage
	conversation interfaces.ConversationStorage
	insight      interfaces.InsightStorage
	option       interfaces.OptionStorage
	report       interfaces.ReportStorage
	factCheck    interfaces.FactCheckStorage
	market       interfaces.MarketStorage
	logger       arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := newManager(db, logger)

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

func newManager(db *BadgerDB, logger arbor.ILogger) *Manager {
	return &Manager{
		db:           db,
		session:      NewSessionStorage(db, logger),
		conversation: NewConversationStorage(db, logger),
		insight:      NewInsightStorage(db, logger),
		option:       NewOptionStorage(db, logger),
		report:       NewReportStorage(db, logger),
		factCheck:    NewFactCheckStorage(db, logger),
		market:       NewMarketStorage(db, logger),
		logger:       logger,
	}
}

// SessionStorage returns the Session storage interface
func (m *Manager) SessionStorage() interfaces.SessionStorage {
	return m.session
}

// ConversationStorage returns the Conversation storage interface
func (m *Manager) ConversationStorage() interfaces.ConversationStorage {
	return m.conversation
}

// InsightStorage returns the Insight storage interface
func (m *Manager) InsightStorage() interfaces.InsightStorage {
	return m.insight
}

// OptionStorage returns the Option storage interface
func (m *Manager) OptionStorage() interfaces.OptionStorage {
	return m.option
}

// ReportStorage returns the Report storage interface
func (m *Manager) ReportStorage() interfaces.ReportStorage {
	return m.report
}

// FactCheckStorage returns the FactCheck storage interface
func (m *Manager) FactCheckStorage() interfaces.FactCheckStorage {
	return m.factCheck
}

// MarketStorage returns the Market storage interface
func (m *Manager) MarketStorage() interfaces.MarketStorage {
	return m.market
}

// DB returns the underlying connection for stores that share it
func (m *Manager) DB() *BadgerDB {
	return m.db
}

// DeleteSessionCascade removes a session and all of its children.
// Children are removed first so a failure never leaves orphans behind a deleted session.
func (m *Manager) DeleteSessionCascade(ctx context.Context, sessionID string) error {
	if _, err := m.session.GetSession(ctx, sessionID); err != nil {
		return err
	}

	steps := []struct {
		name string
		fn   func(context.Context, string) error
	}{
		{"conversations", m.conversation.DeleteConversationsBySession},
		{"fact_checks", m.factCheck.DeleteFactChecksBySession},
		{"insights", m.insight.DeleteInsightsBySession},
		{"options", m.option.DeleteOptionsBySession},
		{"reports", m.report.DeleteReportsBySession},
		{"market_data", m.market.DeleteMarketDataBySession},
	}

	for _, step := range steps {
		if err := step.fn(ctx, sessionID); err != nil {
			return fmt.Errorf("cascade delete %s: %w", step.name, err)
		}
	}

	if err := m.session.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	m.logger.Debug().Str("session_id", sessionID).Msg("Session deleted with all child records")
	return nil
}

// Close closes all storage connections
func (m *Manager) Close() error {
	return m.db.Close()
}
