package sync

import (
	"fmt"

	"github.com/breeze-mail/breeze/pkg/common"
	"github.com/breeze-mail/breeze/pkg/gmail"
	"github.com/breeze-mail/breeze/pkg/oauth"
	"github.com/breeze-mail/breeze/pkg/people"
	"github.com/breeze-mail/breeze/pkg/repository"
	"github.com/breeze-mail/breeze/pkg/types"
)

// NewWorkerFromConfig wires up a worker with its own Redis and Postgres
// connections. Used by the worker entrypoint.
func NewWorkerFromConfig(config types.AppConfig) (*Worker, error) {
	redisClient, err := common.NewRedisClient(config.Database.Redis, common.WithClientName("BreezeWorker"))
	if err != nil {
		return nil, err
	}

	backendRepo, err := repository.NewPostgresBackend(config.Database.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	googleOAuth := oauth.NewGoogleClient(config.OAuth.Google)
	orchestrator := NewOrchestrator(
		backendRepo,
		oauth.NewTokenManager(googleOAuth, backendRepo),
		gmail.NewClient(),
		people.NewClient(),
		config.Sync,
	)

	queue := repository.NewRedisSyncJobQueue(redisClient)
	return NewWorker(queue, redisClient, orchestrator), nil
}
