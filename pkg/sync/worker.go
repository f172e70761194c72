package sync

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/rs/zerolog/log"

	"github.com/breeze-mail/breeze/pkg/common"
	"github.com/breeze-mail/breeze/pkg/repository"
)

const (
	accountLockTTL   = 10 * time.Minute
	lockRefreshEvery = 1 * time.Minute
)

// Worker consumes sync jobs from the queue and runs the orchestrator,
// holding a per-account lock so concurrent jobs for the same account
// never interleave.
type Worker struct {
	queue        repository.SyncJobQueue
	locker       *redislock.Client
	orchestrator *Orchestrator
}

func NewWorker(queue repository.SyncJobQueue, rdb *common.RedisClient, orchestrator *Orchestrator) *Worker {
	return &Worker{
		queue:        queue,
		locker:       redislock.New(rdb),
		orchestrator: orchestrator,
	}
}

// Run blocks consuming jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	log.Info().Msg("sync worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sync worker stopping")
			return ctx.Err()
		default:
		}

		job, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Error().Err(err).Msg("failed to pop sync job")
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		w.process(ctx, job.UserId, job.AccountId, job.ExternalId)
	}
}

func (w *Worker) process(ctx context.Context, userId, accountId uint, jobId string) {
	lock, err := w.locker.Obtain(ctx, common.Keys.SyncAccountLock(accountId), accountLockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		log.Warn().Uint("account_id", accountId).Str("job_id", jobId).Msg("sync already running for account, dropping job")
		return
	}
	if err != nil {
		log.Error().Err(err).Uint("account_id", accountId).Msg("failed to obtain sync lock")
		return
	}
	defer lock.Release(context.WithoutCancel(ctx))

	// Keep the lock alive while the sync runs.
	stopRefresh := make(chan struct{})
	defer close(stopRefresh)
	go func() {
		ticker := time.NewTicker(lockRefreshEvery)
		defer ticker.Stop()
		for {
			select {
			case <-stopRefresh:
				return
			case <-ticker.C:
				if err := lock.Refresh(ctx, accountLockTTL, nil); err != nil {
					log.Warn().Err(err).Uint("account_id", accountId).Msg("failed to refresh sync lock")
					return
				}
			}
		}
	}()

	log.Info().Str("job_id", jobId).Uint("account_id", accountId).Msg("processing sync job")

	if err := w.orchestrator.Run(ctx, userId, accountId); err != nil {
		log.Error().Err(err).Str("job_id", jobId).Uint("account_id", accountId).Msg("sync job failed")
		return
	}

	log.Info().Str("job_id", jobId).Uint("account_id", accountId).Msg("sync job complete")
}
