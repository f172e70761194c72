package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/breeze-mail/breeze/pkg/types"
)

func TestConfigManagerFromBytes(t *testing.T) {
	yaml := []byte(`
prettyLogs: true
database:
  redis:
    mode: single
    addrs:
      - localhost:6379
  postgres:
    host: localhost
    port: 5432
    connMaxLifetime: 10m
gateway:
  http:
    port: 1994
  shutdownTimeout: 30s
sync:
  messageWindowMonths: 6
  chunkDelay: 250ms
`)

	cm, err := NewConfigManagerFromBytes[types.AppConfig](yaml)
	assert.NoError(t, err)

	config := cm.GetConfig()
	assert.True(t, config.PrettyLogs)
	assert.Equal(t, types.RedisModeSingle, config.Database.Redis.Mode)
	assert.Equal(t, []string{"localhost:6379"}, config.Database.Redis.Addrs)
	assert.Equal(t, 5432, config.Database.Postgres.Port)
	assert.Equal(t, 10*time.Minute, config.Database.Postgres.ConnMaxLifetime)
	assert.Equal(t, 1994, config.Gateway.HTTP.Port)
	assert.Equal(t, 30*time.Second, config.Gateway.ShutdownTimeout)
	assert.Equal(t, 6, config.Sync.MessageWindowMonths)
	assert.Equal(t, 250*time.Millisecond, config.Sync.ChunkDelay)
}

func TestSyncConfigDefaults(t *testing.T) {
	config := types.SyncConfig{}.WithDefaults()
	assert.Equal(t, 3, config.MessageWindowMonths)
	assert.Equal(t, 500, config.MaxMessages)
	assert.Equal(t, 50, config.ChunkSize)
	assert.Equal(t, 100*time.Millisecond, config.ChunkDelay)
	assert.Equal(t, 1000, config.MaxContacts)

	// Explicit values survive
	config = types.SyncConfig{MaxMessages: 200}.WithDefaults()
	assert.Equal(t, 200, config.MaxMessages)
}
