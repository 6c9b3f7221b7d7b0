package storage

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestNewProgressStore_Backends(t *testing.T) {
	logger := arbor.NewLogger()
	ctx := context.Background()

	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = filepath.Join(t.TempDir(), "db")

	manager, err := NewStorageManager(logger, config)
	require.NoError(t, err)
	defer manager.Close()

	config.Progress.Backend = "memory"
	store, err := NewProgressStore(ctx, logger, config, manager)
	require.NoError(t, err)
	assert.NotNil(t, store)

	config.Progress.Backend = "badger"
	store, err = NewProgressStore(ctx, logger, config, manager)
	require.NoError(t, err)
	assert.NotNil(t, store)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	config.Progress.Backend = "redis"
	config.Progress.Redis.Host = mr.Host()
	config.Progress.Redis.Port = mustPort(t, mr.Port())
	store, err = NewProgressStore(ctx, logger, config, manager)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	config.Progress.Backend = "etcd"
	_, err = NewProgressStore(ctx, logger, config, manager)
	assert.Error(t, err)
}

func mustPort(t *testing.T, port string) int {
	t.Helper()
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return p
}
