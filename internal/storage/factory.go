package storage

import (
	"context"
	"fmt"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/storage/badger"
	"github.com/bjacksonJaxSun/ideasmatter/internal/storage/memory"
	redisstore "github.com/bjacksonJaxSun/ideasmatter/internal/storage/redis"
	"github.com/ternarybob/arbor"
)

// NewStorageManager creates the entity storage manager. Entities always live in Badger.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	return badger.NewManager(logger, &config.Storage.Badger)
}

// NewProgressStore creates the strategy progress store selected by progress.backend.
// The badger backend shares the entity database, so it needs the manager.
func NewProgressStore(ctx context.Context, logger arbor.ILogger, config *common.Config, manager interfaces.StorageManager) (interfaces.ProgressStore, error) {
	switch config.Progress.Backend {
	case "", "memory":
		return memory.NewProgressStore(logger), nil
	case "badger":
		bm, ok := manager.(*badger.Manager)
		if !ok {
			return nil, fmt.Errorf("badger progress backend requires the badger storage manager")
		}
		return badger.NewProgressStore(bm.DB(), logger), nil
	case "redis":
		client := redisstore.NewClient(config.Progress.Redis)
		store, err := redisstore.NewProgressStore(ctx, client, config.Progress.Redis, logger)
		if err != nil {
			client.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported progress backend: %s", config.Progress.Backend)
	}
}
