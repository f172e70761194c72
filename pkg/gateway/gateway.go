package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	apiv1 "github.com/breeze-mail/breeze/pkg/api/v1"
	"github.com/breeze-mail/breeze/pkg/auth"
	"github.com/breeze-mail/breeze/pkg/common"
	"github.com/breeze-mail/breeze/pkg/filters"
	"github.com/breeze-mail/breeze/pkg/gmail"
	"github.com/breeze-mail/breeze/pkg/oauth"
	"github.com/breeze-mail/breeze/pkg/openai"
	"github.com/breeze-mail/breeze/pkg/people"
	"github.com/breeze-mail/breeze/pkg/repository"
	"github.com/breeze-mail/breeze/pkg/storage"
	"github.com/breeze-mail/breeze/pkg/types"
)

type Gateway struct {
	Config      types.AppConfig
	RedisClient *common.RedisClient
	BackendRepo *repository.PostgresBackend
	httpServer  *http.Server
	echo        *echo.Echo
	ctx         context.Context
	cancelFunc  context.CancelFunc

	baseRouteGroup *echo.Group

	googleOAuth  *oauth.GoogleClient
	stateSigner  *oauth.StateSigner
	tokenManager *oauth.TokenManager
	gmailClient  *gmail.Client
	peopleClient *people.Client
	syncQueue    repository.SyncJobQueue

	// Optional components, nil when unconfigured
	attachments  *storage.AttachmentStore
	filterEngine *filters.Engine
}

func NewGateway() (*Gateway, error) {
	configManager, err := common.NewConfigManager[types.AppConfig]()
	if err != nil {
		return nil, err
	}
	config := configManager.GetConfig()

	// Setup logging
	if config.PrettyLogs {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	redisClient, err := common.NewRedisClient(config.Database.Redis, common.WithClientName("BreezeGateway"))
	if err != nil {
		return nil, err
	}

	backendRepo, err := repository.NewPostgresBackend(config.Database.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := backendRepo.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run postgres migrations: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	googleOAuth := oauth.NewGoogleClient(config.OAuth.Google)
	gateway := &Gateway{
		Config:       config,
		RedisClient:  redisClient,
		BackendRepo:  backendRepo,
		ctx:          ctx,
		cancelFunc:   cancel,
		googleOAuth:  googleOAuth,
		stateSigner:  oauth.NewStateSigner(config.OAuth.StateSecret, config.OAuth.StateTTL),
		tokenManager: oauth.NewTokenManager(googleOAuth, backendRepo),
		gmailClient:  gmail.NewClient(),
		peopleClient: people.NewClient(),
		syncQueue:    repository.NewRedisSyncJobQueue(redisClient),
	}

	// Attachment storage is optional; send requests with attachment refs
	// fail cleanly when no bucket is configured.
	if config.Storage.S3.IsConfigured() {
		attachments, err := storage.NewAttachmentStore(ctx, config.Storage.S3)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize attachment storage - attachments will not be available")
		} else {
			gateway.attachments = attachments
		}
	}

	var classifier openai.Classifier
	if config.OpenAI.IsConfigured() {
		classifier = openai.NewClient(config.OpenAI)
	}
	gateway.filterEngine = filters.NewEngine(backendRepo, classifier)

	return gateway, nil
}

func (g *Gateway) initHTTP() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())

	// Configure logging middleware
	if g.Config.Gateway.HTTP.EnablePrettyLogs {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human}\n",
		}))
	}

	// CORS
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: g.Config.Gateway.HTTP.CORS.AllowedOrigins,
		AllowHeaders: g.Config.Gateway.HTTP.CORS.AllowedHeaders,
		AllowMethods: g.Config.Gateway.HTTP.CORS.AllowedMethods,
	}))

	e.Use(middleware.Recover())

	validator := auth.NewCompositeValidator(g.Config.Gateway.AdminToken, g.BackendRepo)
	e.Use(auth.HTTPMiddleware(validator))

	g.echo = e
	g.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", g.Config.Gateway.HTTP.Host, g.Config.Gateway.HTTP.Port),
		Handler: e,
	}

	g.baseRouteGroup = e.Group(apiv1.HttpServerBaseRoute)

	return nil
}

func (g *Gateway) registerServices() error {
	apiv1.NewHealthGroup(g.baseRouteGroup.Group("/health"), g.RedisClient, g.BackendRepo)

	apiv1.NewUsersGroup(g.baseRouteGroup.Group("/users"), g.BackendRepo)
	apiv1.NewTokensGroup(g.baseRouteGroup.Group("/tokens"), g.BackendRepo)

	apiv1.NewGmailGroup(g.baseRouteGroup.Group("/gmail"), g.BackendRepo, g.tokenManager, g.gmailClient, g.attachments)
	apiv1.NewSyncGroup(g.baseRouteGroup.Group("/sync"), g.BackendRepo, g.syncQueue)
	apiv1.NewMessagesGroup(g.baseRouteGroup.Group("/messages"), g.BackendRepo)
	apiv1.NewFiltersGroup(g.baseRouteGroup.Group("/filters"), g.BackendRepo, g.filterEngine)
	apiv1.NewTagsGroup(g.baseRouteGroup.Group("/tags"), g.BackendRepo)

	if g.googleOAuth.IsConfigured() {
		apiv1.NewOAuthGroup(g.baseRouteGroup.Group("/oauth"), g.googleOAuth, g.stateSigner, g.BackendRepo, g.syncQueue)
		log.Info().Msg("oauth API registered at /api/v1/oauth")
	} else {
		log.Warn().Msg("google oauth not configured - gmail connect flow disabled")
	}

	return nil
}

// StartAsync starts the gateway server without blocking.
// Use this when embedding the gateway in another process (e.g., CLI).
func (g *Gateway) StartAsync() error {
	err := g.initHTTP()
	if err != nil {
		return fmt.Errorf("failed to initialize http server: %w", err)
	}

	err = g.registerServices()
	if err != nil {
		return fmt.Errorf("failed to register services: %w", err)
	}

	// Start HTTP server
	go func() {
		addr := fmt.Sprintf("%s:%d", g.Config.Gateway.HTTP.Host, g.Config.Gateway.HTTP.Port)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			log.Error().Err(err).Msg("failed to listen on http")
			return
		}

		if err := g.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	log.Info().
		Str("host", g.Config.Gateway.HTTP.Host).
		Int("port", g.Config.Gateway.HTTP.Port).
		Msg("gateway http server running")

	return nil
}

// Shutdown gracefully shuts down the gateway (exported for external use)
func (g *Gateway) Shutdown() {
	g.shutdown()
}

func (g *Gateway) Start() error {
	if err := g.StartAsync(); err != nil {
		return err
	}

	terminationSignal := make(chan os.Signal, 1)
	signal.Notify(terminationSignal, os.Interrupt, syscall.SIGTERM)
	<-terminationSignal

	log.Info().Msg("termination signal received. shutting down...")
	g.shutdown()

	return nil
}

func (g *Gateway) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), g.Config.Gateway.ShutdownTimeout)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return g.httpServer.Shutdown(ctx)
	})

	if err := eg.Wait(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}

	g.cancelFunc()

	if g.BackendRepo != nil {
		if err := g.BackendRepo.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close postgres")
		}
	}
	if g.RedisClient != nil {
		if err := g.RedisClient.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis")
		}
	}

	log.Info().Msg("gateway shutdown complete")
}
