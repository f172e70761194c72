package common

import "fmt"

var (
	// Sync keys
	syncQueue       string = "breeze:sync:queue"
	syncAccountLock string = "breeze:sync:lock:%d" // accountId
)

var Keys = &redisKeys{}

type redisKeys struct{}

// Sync keys
func (rk *redisKeys) SyncQueue() string {
	return syncQueue
}

func (rk *redisKeys) SyncAccountLock(accountId uint) string {
	return fmt.Sprintf(syncAccountLock, accountId)
}
