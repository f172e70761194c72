package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/breeze-mail/breeze/pkg/common"
	"github.com/breeze-mail/breeze/pkg/types"
)

const (
	// Default timeout for blocking pop
	defaultPopTimeout = 5 * time.Second

	// Job payloads linger for debugging after enqueue
	jobRecordTTL = 24 * time.Hour

	syncJobRecordKey = "breeze:sync:job:%s" // externalId
)

// RedisSyncJobQueue implements SyncJobQueue using Redis
type RedisSyncJobQueue struct {
	rdb *common.RedisClient
}

// NewRedisSyncJobQueue creates a new Redis-based sync job queue
func NewRedisSyncJobQueue(rdb *common.RedisClient) *RedisSyncJobQueue {
	return &RedisSyncJobQueue{rdb: rdb}
}

var _ SyncJobQueue = (*RedisSyncJobQueue)(nil)

// Push adds a sync job to the queue
func (q *RedisSyncJobQueue) Push(ctx context.Context, job *types.SyncJob) error {
	if job.ExternalId == "" {
		job.ExternalId = common.GenerateSyncJobID()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal sync job: %w", err)
	}

	// Store job record and push to queue atomically via pipeline
	pipe := q.rdb.Pipeline()
	pipe.Set(ctx, fmt.Sprintf(syncJobRecordKey, job.ExternalId), data, jobRecordTTL)
	pipe.LPush(ctx, common.Keys.SyncQueue(), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push sync job: %w", err)
	}

	return nil
}

// Pop blocks until a job is available. A nil job with a nil error means
// the wait timed out; callers loop.
func (q *RedisSyncJobQueue) Pop(ctx context.Context) (*types.SyncJob, error) {
	result, err := q.rdb.BRPop(ctx, defaultPopTimeout, common.Keys.SyncQueue()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop sync job: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var job types.SyncJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sync job: %w", err)
	}

	return &job, nil
}

// Len returns the number of queued jobs
func (q *RedisSyncJobQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, common.Keys.SyncQueue()).Result()
}
