package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/ternarybob/arbor"
)

// maxUpdateAttempts bounds optimistic-lock retries in modify
const maxUpdateAttempts = 5

// ProgressStore keeps strategy records in Redis so several API instances share progress.
//
// Layout:
//
//	<prefix><id>               JSON strategy record, expires after TTL
//	<prefix>session:<session>  set of strategy IDs for the session
//	<prefix>all                set of every strategy ID
type ProgressStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger arbor.ILogger
}

// NewClient creates a redis client from configuration
func NewClient(cfg common.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// NewProgressStore wraps a client. The connection is verified with a ping.
func NewProgressStore(ctx context.Context, client *redis.Client, cfg common.RedisConfig, logger arbor.ILogger) (*ProgressStore, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	store := &ProgressStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    common.ParseDuration(cfg.TTL, 24*time.Hour),
		logger: logger,
	}

	logger.Debug().
		Str("prefix", store.prefix).
		Dur("ttl", store.ttl).
		Msg("Redis progress store initialized")

	return store, nil
}

func (s *ProgressStore) recordKey(id string) string {
	return s.prefix + id
}

func (s *ProgressStore) sessionKey(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

func (s *ProgressStore) allKey() string {
	return s.prefix + "all"
}

func (s *ProgressStore) Save(ctx context.Context, record *models.StrategyRecord) error {
	if record == nil || record.Strategy == nil || record.Strategy.ID == "" {
		return fmt.Errorf("strategy record with ID is required")
	}

	record.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal strategy record: %w", err)
	}

	id := record.Strategy.ID
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(id), data, s.ttl)
		pipe.SAdd(ctx, s.sessionKey(record.Strategy.SessionID), id)
		pipe.Expire(ctx, s.sessionKey(record.Strategy.SessionID), s.ttl)
		pipe.SAdd(ctx, s.allKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save strategy %s: %w", id, err)
	}
	return nil
}

func (s *ProgressStore) Get(ctx context.Context, strategyID string) (*models.StrategyRecord, error) {
	data, err := s.client.Get(ctx, s.recordKey(strategyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("strategy %s: %w", strategyID, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get strategy: %w", err)
	}
	return decodeRecord(data)
}

func decodeRecord(data []byte) (*models.StrategyRecord, error) {
	var record models.StrategyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strategy record: %w", err)
	}
	return &record, nil
}

func (s *ProgressStore) ListBySession(ctx context.Context, sessionID string) ([]*models.StrategyRecord, error) {
	return s.listSet(ctx, s.sessionKey(sessionID))
}

func (s *ProgressStore) List(ctx context.Context) ([]*models.StrategyRecord, error) {
	return s.listSet(ctx, s.allKey())
}

// listSet loads every record named in an index set, pruning IDs whose record expired
func (s *ProgressStore) listSet(ctx context.Context, setKey string) ([]*models.StrategyRecord, error) {
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	if len(ids) == 0 {
		return []*models.StrategyRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load strategies: %w", err)
	}

	records := make([]*models.StrategyRecord, 0, len(values))
	var expired []interface{}
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		record, err := decodeRecord([]byte(raw))
		if err != nil {
			s.logger.Warn().Err(err).Str("strategy_id", ids[i]).Msg("Skipping unreadable strategy record")
			continue
		}
		records = append(records, record)
	}

	if len(expired) > 0 {
		if err := s.client.SRem(ctx, setKey, expired...).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to prune expired strategy IDs")
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Strategy.CreatedAt.After(records[j].Strategy.CreatedAt)
	})
	return records, nil
}

// modify runs a read-modify-write of one record under WATCH, retrying when
// another writer touches the key first. mutate reports whether to write back.
func (s *ProgressStore) modify(ctx context.Context, strategyID string, mutate func(*models.StrategyRecord) (bool, error)) (*models.StrategyRecord, error) {
	key := s.recordKey(strategyID)
	var result *models.StrategyRecord

	update := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return fmt.Errorf("strategy %s: %w", strategyID, interfaces.ErrNotFound)
			}
			return err
		}

		record, err := decodeRecord(data)
		if err != nil {
			return err
		}
		changed, err := mutate(record)
		if err != nil {
			return err
		}
		result = record
		if !changed {
			return nil
		}

		record.UpdatedAt = time.Now().UTC()
		updated, err := json.Marshal(record)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, update, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to update strategy %s: too much contention", strategyID)
}

// UpdateProgress uses WATCH so concurrent writers cannot move progress backwards
func (s *ProgressStore) UpdateProgress(ctx context.Context, strategyID string, phase models.AnalysisPhase, percentage float64) error {
	_, err := s.modify(ctx, strategyID, func(record *models.StrategyRecord) (bool, error) {
		if percentage < record.Progress {
			return false, nil
		}
		record.Progress = percentage
		record.Strategy.ProgressPercentage = percentage
		if phase != "" {
			record.CurrentPhase = phase
		}
		return true, nil
	})
	return err
}

// TransitionStatus is the cross-instance start guard: of several API
// instances racing on the same record, only one sees the expected status
// inside its WATCH transaction.
func (s *ProgressStore) TransitionStatus(ctx context.Context, strategyID string, from, to models.StrategyStatus, at time.Time) (*models.StrategyRecord, error) {
	return s.modify(ctx, strategyID, func(record *models.StrategyRecord) (bool, error) {
		current := record.Strategy.Status
		if !record.Transition(from, to, at) {
			return false, fmt.Errorf("strategy %s is %s, not %s: %w", strategyID, current, from, interfaces.ErrInvalidState)
		}
		return true, nil
	})
}

func (s *ProgressStore) Delete(ctx context.Context, strategyID string) error {
	record, err := s.Get(ctx, strategyID)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.recordKey(strategyID))
		pipe.SRem(ctx, s.sessionKey(record.Strategy.SessionID), strategyID)
		pipe.SRem(ctx, s.allKey(), strategyID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete strategy %s: %w", strategyID, err)
	}
	return nil
}

// Close closes the Redis connection
func (s *ProgressStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
