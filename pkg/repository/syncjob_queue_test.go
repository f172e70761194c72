package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/breeze-mail/breeze/pkg/types"
)

func TestRedisSyncJobQueue_PushPop(t *testing.T) {
	rdb, err := NewRedisClientForTest()
	assert.NoError(t, err)

	queue := NewRedisSyncJobQueue(rdb)
	ctx := context.Background()

	job := &types.SyncJob{UserId: 1, AccountId: 2}
	err = queue.Push(ctx, job)
	assert.NoError(t, err)
	assert.NotEmpty(t, job.ExternalId, "push assigns an external id")
	assert.False(t, job.EnqueuedAt.IsZero())

	n, err := queue.Len(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	popped, err := queue.Pop(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, popped)
	assert.Equal(t, job.ExternalId, popped.ExternalId)
	assert.Equal(t, uint(1), popped.UserId)
	assert.Equal(t, uint(2), popped.AccountId)

	n, err = queue.Len(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestRedisSyncJobQueue_FIFO(t *testing.T) {
	rdb, err := NewRedisClientForTest()
	assert.NoError(t, err)

	queue := NewRedisSyncJobQueue(rdb)
	ctx := context.Background()

	first := &types.SyncJob{UserId: 1, AccountId: 1}
	second := &types.SyncJob{UserId: 1, AccountId: 2}
	assert.NoError(t, queue.Push(ctx, first))
	assert.NoError(t, queue.Push(ctx, second))

	popped, err := queue.Pop(ctx)
	assert.NoError(t, err)
	assert.Equal(t, first.ExternalId, popped.ExternalId)

	popped, err = queue.Pop(ctx)
	assert.NoError(t, err)
	assert.Equal(t, second.ExternalId, popped.ExternalId)
}
