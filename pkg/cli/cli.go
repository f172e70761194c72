package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/breeze-mail/breeze/pkg/common"
	"github.com/breeze-mail/breeze/pkg/gateway"
	"github.com/breeze-mail/breeze/pkg/repository"
	"github.com/breeze-mail/breeze/pkg/sync"
	"github.com/breeze-mail/breeze/pkg/types"
)

// Build information (injected at compile time via ldflags)
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "breeze",
	Short:   "Gmail mirror gateway",
	Version: Version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := gateway.NewGateway()
		if err != nil {
			return err
		}
		return gw.Start()
	},
}

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Run the sync worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		w, err := sync.NewWorkerFromConfig(config)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		backendRepo, err := repository.NewPostgresBackend(config.Database.Postgres)
		if err != nil {
			return err
		}
		defer backendRepo.Close()

		if err := backendRepo.RunMigrations(); err != nil {
			return err
		}

		log.Info().Msg("migrations complete")
		return nil
	},
}

func loadConfig() (types.AppConfig, error) {
	configManager, err := common.NewConfigManager[types.AppConfig]()
	if err != nil {
		return types.AppConfig{}, err
	}
	config := configManager.GetConfig()

	if config.PrettyLogs {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	return config, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workCmd)
	rootCmd.AddCommand(migrateCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
